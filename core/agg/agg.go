// Package agg turns raw sale events into dense per-product demand series.
package agg

import (
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/stockcast/schema"
)

// BucketStats counts what happened to each event during bucketing.
type BucketStats struct {
	Accepted       int `json:"accepted"`
	OutsideWindow  int `json:"outside_window"`
	Ineligible     int `json:"ineligible"`
	UnknownProduct int `json:"unknown_product"`
	Invalid        int `json:"invalid"`
}

// Dropped returns the number of events that did not land in any bucket.
func (s BucketStats) Dropped() int {
	return s.OutsideWindow + s.Ineligible + s.UnknownProduct + s.Invalid
}

// Filter narrows the events that count as demand. A nil field accepts everything.
type Filter struct {
	Statuses []schema.SaleStatus
	Products map[string]struct{}
}

// NewWindow builds the calendar-aligned lookback window of a run. The window
// closes at the end of the day (weekly) or month (monthly) containing asOf in
// loc, so every bucket is a full calendar unit.
func NewWindow(asOf time.Time, period schema.Period, loc *time.Location) (schema.Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	if asOf.IsZero() {
		return schema.Window{}, fmt.Errorf("as-of instant is required")
	}
	local := asOf.In(loc)
	size := schema.GetLookback(period)

	switch period {
	case schema.WeeklyPeriod:
		end := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
		return schema.Window{
			Granularity: schema.DayGranularity,
			Start:       end.AddDate(0, 0, -size),
			End:         end,
			Size:        size,
		}, nil
	case schema.MonthlyPeriod:
		end := time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, loc)
		return schema.Window{
			Granularity: schema.MonthGranularity,
			Start:       end.AddDate(0, -size, 0),
			End:         end,
			Size:        size,
		}, nil
	default:
		return schema.Window{}, fmt.Errorf("unsupported period '%s'", period)
	}
}

// Span returns the smallest window start and largest window end among the given
// windows, which is the range a single read must cover.
func Span(windows ...schema.Window) (time.Time, time.Time) {
	var start, end time.Time
	for _, w := range windows {
		if start.IsZero() || w.Start.Before(start) {
			start = w.Start
		}
		if w.End.After(end) {
			end = w.End
		}
	}
	return start, end
}

// EmptySeries returns an all-zero series for a product with no sales in the window.
func EmptySeries(productID string, window schema.Window) *schema.BucketedSeries {
	return &schema.BucketedSeries{
		ProductID:   productID,
		Granularity: window.Granularity,
		Start:       window.Start,
		Values:      make([]float64, window.Size),
		Observed:    make([]bool, window.Size),
	}
}

// Bucketize sums event quantities into the buckets of the window, one dense
// series per product that had at least one event inside it. Events outside
// [start, end) are dropped silently.
func Bucketize(events []schema.SaleEvent, window schema.Window) map[string]*schema.BucketedSeries {
	series, _ := BucketizeFiltered(events, window, Filter{})
	return series
}

// BucketizeFiltered is Bucketize restricted to eligible statuses and known products.
// It reports how many events were dropped and why.
func BucketizeFiltered(events []schema.SaleEvent, window schema.Window, filter Filter) (map[string]*schema.BucketedSeries, BucketStats) {
	var stats BucketStats
	series := make(map[string]*schema.BucketedSeries)

	for _, ev := range events {
		// 1. Reject malformed and ineligible events
		if ev.ProductID == "" || ev.Quantity < 0 {
			stats.Invalid++
			continue
		}
		if filter.Statuses != nil && ev.Status != "" && !slices.Contains(filter.Statuses, ev.Status) {
			stats.Ineligible++
			continue
		}
		if filter.Products != nil {
			if _, ok := filter.Products[ev.ProductID]; !ok {
				stats.UnknownProduct++
				continue
			}
		}

		// 2. Locate the bucket
		idx, ok := window.Index(ev.Timestamp)
		if !ok {
			stats.OutsideWindow++
			continue
		}

		// 3. Accumulate
		s, ok := series[ev.ProductID]
		if !ok {
			s = EmptySeries(ev.ProductID, window)
			series[ev.ProductID] = s
		}
		s.Values[idx] += float64(ev.Quantity)
		s.Observed[idx] = true
		stats.Accepted++
	}

	return series, stats
}

// SeriesFor returns the series of a product, or an all-zero series when the
// product had no sales in the window.
func SeriesFor(series map[string]*schema.BucketedSeries, productID string, window schema.Window) *schema.BucketedSeries {
	if s, ok := series[productID]; ok {
		return s
	}
	return EmptySeries(productID, window)
}

// ProductSet builds the lookup set used by Filter.Products.
func ProductSet(products []schema.Product) map[string]struct{} {
	set := make(map[string]struct{}, len(products))
	for _, p := range products {
		set[p.ID] = struct{}{}
	}
	return set
}
