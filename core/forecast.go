package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/huangsam/stockcast/core/agg"
	"github.com/huangsam/stockcast/core/algo"
	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// salesHistory is the raw input of a run, read once from the source.
type salesHistory struct {
	products []schema.Product
	events   []schema.SaleEvent
}

// GetForecastReport runs one forecast: it reads the sales history, projects every
// product, ranks the results and records the run. The report cache and the history
// store are used when mgr provides them.
func GetForecastReport(ctx context.Context, cfg *contract.Config, reader contract.SalesReader, mgr contract.StoreManager) (*schema.ForecastReport, error) {
	// --- 0. Fix the as-of instant and the windows ---
	asOf := cfg.ResolveAsOf(time.Now())
	window, daily, err := buildWindows(cfg, asOf)
	if err != nil {
		return nil, err
	}
	strategy, err := algo.Lookup(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	if !shouldSuppressHeader(ctx) {
		contract.LogInfo("Forecasting demand", map[string]any{
			"period":     cfg.Period,
			"strategy":   cfg.Strategy,
			"risk_basis": cfg.RiskBasis,
			"as_of":      asOf.Format(contract.DateTimeFormat),
		})
	}

	// --- 1. Report cache ---
	var cache contract.ReportCache
	if mgr != nil {
		cache = mgr.GetReportCache()
	}
	key := generateCacheKey(cfg, asOf, window)
	if cache != nil {
		if report := checkCacheHit(cache, key, cfg.CacheTTL); report != nil {
			report.Results = algo.RankResults(report.Results, cfg.ResultLimit)
			return report, nil
		}
	}

	// --- 2. Read products and sales concurrently ---
	history, err := readSalesHistory(ctx, cfg, reader, window, daily)
	if err != nil {
		return nil, err
	}

	// --- 3. Bucketize ---
	input := &ForecastInput{window: window, daily: daily, strategy: strategy}
	filter := agg.Filter{Statuses: cfg.Statuses, Products: agg.ProductSet(history.products)}
	var stats agg.BucketStats
	input.series, stats = agg.BucketizeFiltered(history.events, window, filter)
	if cfg.Period == schema.WeeklyPeriod {
		input.dailyMap = input.series
	} else {
		input.dailyMap, _ = agg.BucketizeFiltered(history.events, daily, filter)
	}
	if stats.UnknownProduct > 0 || stats.Invalid > 0 {
		contract.LogInfo("Dropped sale events", map[string]any{
			"unknown_product": stats.UnknownProduct,
			"invalid":         stats.Invalid,
			"ineligible":      stats.Ineligible,
		})
	}

	// --- 4. Per-product forecasts ---
	start := time.Now()
	runID := uuid.NewString()
	ctx = contextWithStoreManager(withRunID(ctx, runID), mgr)
	results := forecastProducts(cfg, input, history.products)
	ranked := algo.RankResults(results, 0)

	report := &schema.ForecastReport{
		RunID:       runID,
		Period:      cfg.Period,
		Strategy:    cfg.Strategy,
		RiskBasis:   cfg.RiskBasis,
		AsOf:        asOf,
		Window:      window,
		Horizon:     schema.GetHorizon(cfg.Period),
		GeneratedAt: time.Now(),
		Results:     ranked,
	}

	// --- 5. Record and cache the full report ---
	recordRun(ctx, cfg, report, start)
	if cache != nil {
		storeReport(cache, key, report)
	}

	report.Results = algo.RankResults(ranked, cfg.ResultLimit)
	return report, nil
}

// buildWindows builds the lookback of the requested period and the daily lookback.
// For weekly runs the two are the same window.
func buildWindows(cfg *contract.Config, asOf time.Time) (schema.Window, schema.Window, error) {
	window, err := agg.NewWindow(asOf, cfg.Period, cfg.GetLocation())
	if err != nil {
		return schema.Window{}, schema.Window{}, err
	}
	daily, err := agg.NewWindow(asOf, schema.WeeklyPeriod, cfg.GetLocation())
	if err != nil {
		return schema.Window{}, schema.Window{}, err
	}
	return window, daily, nil
}

// readSalesHistory reads products and eligible sales concurrently. Either failure
// cancels the other read and fails the run.
func readSalesHistory(ctx context.Context, cfg *contract.Config, reader contract.SalesReader, windows ...schema.Window) (*salesHistory, error) {
	start, end := agg.Span(windows...)
	span := schema.Window{Granularity: schema.DayGranularity, Start: start, End: end}

	var history salesHistory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := reader.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("%w: list products: %w", contract.ErrDataSourceUnavailable, err)
		}
		history.products = products
		return nil
	})
	g.Go(func() error {
		events, err := reader.ListEligibleSales(gctx, span, cfg.Statuses)
		if err != nil {
			return fmt.Errorf("%w: list sales: %w", contract.ErrDataSourceUnavailable, err)
		}
		history.events = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &history, nil
}

// forecastProducts processes all products in parallel using a worker pool.
// Results keep the order of products, which the ranker relies on for ties.
func forecastProducts(cfg *contract.Config, input *ForecastInput, products []schema.Product) []schema.ForecastResult {
	jobs := make(chan int, len(products))
	results := make([]schema.ForecastResult, len(products))
	var wg sync.WaitGroup

	// Start worker pool
	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for idx := range jobs {
				// Each worker writes to a unique index
				results[idx] = forecastProduct(cfg, input, products[idx])
			}
		})
	}

	for i := range products {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// forecastProduct runs the builder chain for one product. A panic inside the
// chain marks only this product as failed.
func forecastProduct(cfg *contract.Config, input *ForecastInput, product schema.Product) (result schema.ForecastResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failedResult(product, fmt.Sprintf("forecast failed: %v", r))
		}
	}()

	return NewForecastResultBuilder(cfg, input, product).
		BuildSeries().  // Dense series in both windows
		FitTrend().     // Period trend and daily moving averages
		Project().      // Strategy projection over the horizon
		ClassifyRisk(). // Days of stock and risk tier
		Build()
}

// failedResult is the result of a product whose forecast could not be computed.
func failedResult(product schema.Product, reason string) schema.ForecastResult {
	return schema.ForecastResult{
		ProductID:         product.ID,
		Name:              product.Name,
		CurrentStock:      product.CurrentStock,
		Prediction:        schema.Prediction{Status: schema.PredictionError, Reason: reason},
		DaysUntilStockout: math.NaN(),
		RiskLevel:         schema.UnknownRisk,
		TrendDirection:    schema.TrendStable,
	}
}

// recordRun writes the run and its results to the history store. Tracking
// failures are logged and never fail the run.
func recordRun(ctx context.Context, cfg *contract.Config, report *schema.ForecastReport, start time.Time) {
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}

	run := schema.ForecastRunRecord{
		RunID:     runID,
		StartTime: start,
		Period:    string(report.Period),
		Strategy:  string(report.Strategy),
		AsOf:      report.AsOf,
	}
	configParams := map[string]any{
		"period":     string(cfg.Period),
		"strategy":   string(cfg.Strategy),
		"risk_basis": string(cfg.RiskBasis),
		"statuses":   schema.StatusStrings(cfg.Statuses),
		"weights":    cfg.Weights,
		"thresholds": cfg.Thresholds,
		"limit":      cfg.ResultLimit,
		"workers":    cfg.Workers,
	}
	if err := store.BeginRun(run, configParams); err != nil {
		contract.LogWarn("Forecast tracking initialization failed", err)
		return
	}

	for _, r := range report.Results {
		if err := store.RecordResult(runID, r); err != nil {
			contract.LogWarn(fmt.Sprintf("Forecast tracking failed for product %s", r.ProductID), err)
		}
	}

	if err := store.EndRun(runID, time.Now(), len(report.Results)); err != nil {
		contract.LogWarn("Failed to finalize forecast tracking", err)
	}
}
