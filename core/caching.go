package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// currentCacheVersion defines the version of the cached report layout
const currentCacheVersion = 2

// cachedReport is the cached form of a report. Non-finite stock-out horizons
// do not survive JSON, so they travel as a separate marker.
type cachedReport struct {
	Report schema.ForecastReport `json:"report"`
	Days   []cachedDays          `json:"days"`
}

// cachedDays holds the horizon of one result by position.
type cachedDays struct {
	Value    float64 `json:"value"`
	Infinite bool    `json:"infinite,omitempty"`
	Unknown  bool    `json:"unknown,omitempty"`
}

// checkCacheHit attempts to retrieve and validate a cached report
func checkCacheHit(cache contract.ReportCache, key string, ttl time.Duration) *schema.ForecastReport {
	data, version, ts, err := cache.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		return nil
	}
	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	if time.Since(time.Unix(ts, 0)) > ttl {
		return nil
	}

	report, err := decodeReport(data)
	if err != nil {
		return nil
	}
	return report // Cache hit
}

// storeReport writes the report to the cache. Failures are logged, not returned.
func storeReport(cache contract.ReportCache, key string, report *schema.ForecastReport) {
	data, err := encodeReport(report)
	if err != nil {
		contract.LogWarn("Failed to encode report for caching", err)
		return
	}
	if err := cache.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to store report in cache", err)
	}
}

// encodeReport serializes a report with its stock-out horizons intact.
func encodeReport(report *schema.ForecastReport) ([]byte, error) {
	out := cachedReport{Report: *report, Days: make([]cachedDays, len(report.Results))}
	for i, r := range report.Results {
		switch {
		case r.NeverStocksOut():
			out.Days[i] = cachedDays{Infinite: true}
		case math.IsNaN(r.DaysUntilStockout):
			out.Days[i] = cachedDays{Unknown: true}
		default:
			out.Days[i] = cachedDays{Value: r.DaysUntilStockout}
		}
	}
	return json.Marshal(out)
}

// decodeReport restores a report written by encodeReport.
func decodeReport(data []byte) (*schema.ForecastReport, error) {
	var in cachedReport
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if len(in.Days) != len(in.Report.Results) {
		return nil, fmt.Errorf("cached report has %d results but %d horizons", len(in.Report.Results), len(in.Days))
	}
	report := in.Report
	for i, d := range in.Days {
		switch {
		case d.Infinite:
			report.Results[i].DaysUntilStockout = math.Inf(1)
		case d.Unknown:
			report.Results[i].DaysUntilStockout = math.NaN()
		default:
			report.Results[i].DaysUntilStockout = d.Value
		}
	}
	return &report, nil
}

// generateCacheKey creates a unique key based on the forecast parameters.
// The as-of instant is truncated to the hour so repeated runs share an entry.
func generateCacheKey(cfg *contract.Config, asOf time.Time, window schema.Window) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%s:%d:%d:%d:%+v:%+v:%s:%t",
		cfg.SourceBackend,
		cfg.SourceConnect,
		cfg.Period,
		cfg.Strategy,
		cfg.RiskBasis,
		asOf.Truncate(time.Hour).Unix(),
		window.Start.Unix(),
		window.End.Unix(),
		cfg.Weights,
		cfg.Thresholds,
		strings.Join(schema.StatusStrings(cfg.Statuses), ","),
		cfg.Detail,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
