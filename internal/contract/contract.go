// Package contract provides interfaces and shared utilities for the internal architecture of stockcast.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/stockcast/schema"
)

// SalesReader defines the read operations the forecast needs from the system of record.
// This allows the core forecast logic to be tested without a live database.
type SalesReader interface {
	// ListEligibleSales returns one event per sale line item whose timestamp falls in
	// the window and whose sale status is one of statuses.
	ListEligibleSales(ctx context.Context, window schema.Window, statuses []schema.SaleStatus) ([]schema.SaleEvent, error)

	// ListProducts returns every inventory item with its current stock.
	ListProducts(ctx context.Context) ([]schema.Product, error)

	// Close releases the underlying connection.
	Close() error
}

// StoreManager defines the interface for reaching the optional stores.
// Either getter may return nil when the store is not configured.
type StoreManager interface {
	GetReportCache() ReportCache
	GetHistoryStore() HistoryStore
}

// ReportCache defines the interface for storing rendered forecast reports.
type ReportCache interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking forecast runs and their per-product results.
type HistoryStore interface {
	// BeginRun records the start of a forecast run
	BeginRun(run schema.ForecastRunRecord, configParams map[string]any) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalProducts int) error

	// RecordResult stores the outcome of one product in a run
	RecordResult(runID string, result schema.ForecastResult) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.ForecastRunRecord, error)

	// GetAllProductForecasts returns every recorded product result
	GetAllProductForecasts() ([]schema.ProductForecastRecord, error)

	// Close closes the underlying connection
	Close() error
}
