package agg

import (
	"testing"
	"time"

	"github.com/huangsam/stockcast/schema"
)

// FuzzBucketize checks that every accepted event lands inside the window and
// that bucketed totals match the accepted quantities.
func FuzzBucketize(f *testing.F) {
	f.Add(int64(1711800000), int64(0), 3, true)
	f.Add(int64(1711800000), int64(-86400*29), 10, false)
	f.Add(int64(1711800000), int64(86400), 1, true)
	f.Add(int64(0), int64(-1), 0, false)

	f.Fuzz(func(t *testing.T, asOfUnix, offset int64, qty int, monthly bool) {
		if qty < 0 || qty > 1_000_000 {
			return
		}
		if asOfUnix < 0 || asOfUnix > 1<<34 || offset < -1<<31 || offset > 1<<31 {
			return
		}
		period := schema.WeeklyPeriod
		if monthly {
			period = schema.MonthlyPeriod
		}
		w, err := NewWindow(time.Unix(asOfUnix, 0), period, time.UTC)
		if err != nil {
			t.Fatalf("window: %v", err)
		}

		ts := time.Unix(asOfUnix+offset, 0)
		series, stats := BucketizeFiltered([]schema.SaleEvent{{ProductID: "p", Quantity: qty, Timestamp: ts}}, w, Filter{})

		if stats.Accepted+stats.Dropped() != 1 {
			t.Fatalf("event not accounted for: %+v", stats)
		}
		if stats.Accepted == 1 {
			if !w.Contains(ts) {
				t.Fatalf("accepted event %v outside [%v, %v)", ts, w.Start, w.End)
			}
			total := 0.0
			for _, v := range series["p"].Values {
				total += v
			}
			if total != float64(qty) {
				t.Fatalf("expected total %d, got %v", qty, total)
			}
		}
	})
}
