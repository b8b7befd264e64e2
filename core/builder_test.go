package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/stockcast/core/agg"
	"github.com/huangsam/stockcast/core/algo"
	"github.com/huangsam/stockcast/schema"
)

// panicStrategy fails every projection.
type panicStrategy struct{}

func (panicStrategy) Name() schema.StrategyName { return "panic" }

func (panicStrategy) Project(algo.ProjectionInput) algo.Projection { panic("boom") }

func blendedForTest() algo.Strategy {
	s, _ := algo.Lookup(schema.BlendedStrategy)
	return s
}

// newTestInput bucketizes events over both windows of cfg at testAsOf.
func newTestInput(t *testing.T, period schema.Period, strategy schema.StrategyName, events []schema.SaleEvent) *ForecastInput {
	t.Helper()
	cfg := testConfig()
	cfg.Period = period
	window, daily, err := buildWindows(cfg, testAsOf)
	require.NoError(t, err)
	s, err := algo.Lookup(strategy)
	require.NoError(t, err)
	return &ForecastInput{
		window:   window,
		daily:    daily,
		series:   agg.Bucketize(events, window),
		dailyMap: agg.Bucketize(events, daily),
		strategy: s,
	}
}

func rampSales(productID string) []schema.SaleEvent {
	var events []schema.SaleEvent
	for day := 1; day <= 30; day++ {
		events = append(events, schema.SaleEvent{
			ProductID: productID,
			Quantity:  day,
			Timestamp: time.Date(2024, 3, day, 8, 0, 0, 0, time.UTC),
			Status:    schema.SuccessfulSale,
		})
	}
	return events
}

func TestForecastResultBuilder_BasicChaining(t *testing.T) {
	cfg := testConfig()
	input := newTestInput(t, schema.WeeklyPeriod, schema.BlendedStrategy, rampSales("p1"))
	product := schema.Product{ID: "p1", Name: "Widget", CurrentStock: 100}

	builder := NewForecastResultBuilder(cfg, input, product)

	// Test that builder returns itself for chaining
	assert.Equal(t, builder, builder.BuildSeries())
	assert.Equal(t, builder, builder.FitTrend())
	assert.Equal(t, builder, builder.Project())
	assert.Equal(t, builder, builder.ClassifyRisk())

	result := builder.Build()
	assert.Equal(t, "p1", result.ProductID)
	assert.Equal(t, "Widget", result.Name)
	assert.Equal(t, 100, result.CurrentStock)
	assert.InDelta(t, 1.0, result.Trend.Slope, 1e-9)
	assert.InDelta(t, 1.0, result.Trend.Intercept, 1e-9)
	assert.Equal(t, schema.TrendIncreasing, result.TrendDirection)
	assert.InDelta(t, 27.0, result.DailyMovingAverage7, 1e-9)
	assert.InDelta(t, 23.5, result.DailyMovingAverage14, 1e-9)
	assert.Equal(t, []int{28, 28, 28, 28, 29, 29, 29}, result.Prediction.Steps)
	assert.Equal(t, 199, result.Prediction.Total)
	assert.Equal(t, 199, result.WeeklyDemand)
	assert.InDelta(t, 100/(199.0/7), result.DaysUntilStockout, 1e-9)
	assert.Equal(t, schema.HighRisk, result.RiskLevel)
}

func TestForecastResultBuilder_NoSales(t *testing.T) {
	cfg := testConfig()
	input := newTestInput(t, schema.WeeklyPeriod, schema.BlendedStrategy, nil)

	result := NewForecastResultBuilder(cfg, input, schema.Product{ID: "p1", CurrentStock: 0}).
		BuildSeries().FitTrend().Project().ClassifyRisk().Build()

	assert.Equal(t, schema.PredictionOK, result.Prediction.Status)
	assert.Equal(t, 0, result.Prediction.Total)
	assert.True(t, math.IsInf(result.DaysUntilStockout, 1))
	assert.Equal(t, schema.LowRisk, result.RiskLevel)
	assert.Equal(t, schema.TrendStable, result.TrendDirection)
}

func TestForecastResultBuilder_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		risk  schema.RiskLevel
	}{
		{"below high", 69, schema.HighRisk},
		{"exactly seven days", 70, schema.MediumRisk},
		{"below medium", 139, schema.MediumRisk},
		{"exactly fourteen days", 140, schema.LowRisk},
	}

	input := newTestInput(t, schema.WeeklyPeriod, schema.BlendedStrategy, dailySales("p1", 10))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewForecastResultBuilder(testConfig(), input, schema.Product{ID: "p1", CurrentStock: tt.stock}).
				BuildSeries().FitTrend().Project().ClassifyRisk().Build()
			assert.Equal(t, tt.risk, result.RiskLevel)
		})
	}
}

func TestForecastResultBuilder_InsufficientRegression(t *testing.T) {
	cfg := testConfig()
	cfg.Strategy = schema.RegressionStrategy
	events := []schema.SaleEvent{{ProductID: "p1", Quantity: 9, Timestamp: testAsOf, Status: schema.SuccessfulSale}}
	input := newTestInput(t, schema.WeeklyPeriod, schema.RegressionStrategy, events)

	result := NewForecastResultBuilder(cfg, input, schema.Product{ID: "p1", CurrentStock: 5}).
		BuildSeries().FitTrend().Project().ClassifyRisk().Build()

	assert.Equal(t, schema.PredictionInsufficient, result.Prediction.Status)
	assert.Contains(t, result.Prediction.Reason, "have 1")
	assert.Equal(t, schema.UnknownRisk, result.RiskLevel)
	assert.True(t, math.IsNaN(result.DaysUntilStockout))
	assert.Equal(t, 0, result.WeeklyDemand)
	// The full-window fit still describes the history
	assert.Greater(t, result.Trend.Slope, 0.0)
}

func TestForecastResultBuilder_MonthlyBlended(t *testing.T) {
	cfg := testConfig()
	cfg.Period = schema.MonthlyPeriod
	events := []schema.SaleEvent{
		{ProductID: "p1", Quantity: 100, Timestamp: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), Status: schema.SuccessfulSale},
		{ProductID: "p1", Quantity: 200, Timestamp: time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC), Status: schema.SuccessfulSale},
		{ProductID: "p1", Quantity: 300, Timestamp: time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC), Status: schema.SuccessfulSale},
	}
	input := newTestInput(t, schema.MonthlyPeriod, schema.BlendedStrategy, events)

	result := NewForecastResultBuilder(cfg, input, schema.Product{ID: "p1", CurrentStock: 100}).
		BuildSeries().FitTrend().Project().ClassifyRisk().Build()

	assert.Equal(t, []int{100}, result.Prediction.Steps)
	assert.Equal(t, 100, result.Prediction.Total)
	assert.Equal(t, 241, result.WeeklyDemand)
	assert.InDelta(t, 30.0, result.DaysUntilStockout, 1e-9)
	assert.Equal(t, schema.LowRisk, result.RiskLevel)
}

// monthlySales records quantity on the 10th of every month of the monthly window.
func monthlySales(productID string, quantity int) []schema.SaleEvent {
	var events []schema.SaleEvent
	for i := range schema.MonthlyLookbackMonths {
		events = append(events, schema.SaleEvent{
			ProductID: productID,
			Quantity:  quantity,
			Timestamp: time.Date(2024, time.March-time.Month(i), 10, 9, 0, 0, 0, time.UTC),
			Status:    schema.SuccessfulSale,
		})
	}
	return events
}

func TestForecastResultBuilder_MonthlyBlendedFlatSeries(t *testing.T) {
	cfg := testConfig()
	cfg.Period = schema.MonthlyPeriod
	input := newTestInput(t, schema.MonthlyPeriod, schema.BlendedStrategy, monthlySales("p1", 10))

	b := NewForecastResultBuilder(cfg, input, schema.Product{ID: "p1", CurrentStock: 10}).BuildSeries()
	require.Len(t, b.series.Values, schema.MonthlyLookbackMonths)
	for _, v := range b.series.Values {
		require.Equal(t, 10.0, v)
	}

	// Both moving averages are defined, so every weight contributes
	result := b.FitTrend().Project().ClassifyRisk().Build()
	assert.Equal(t, []int{10}, result.Prediction.Steps)
	assert.Equal(t, 10, result.Prediction.Total)
	assert.InDelta(t, 30.0, result.DaysUntilStockout, 1e-9)
	assert.Equal(t, schema.TrendStable, result.TrendDirection)
}

func TestForecastResultBuilder_MonthlyReportsDailyAverages(t *testing.T) {
	cfg := testConfig()
	cfg.Period = schema.MonthlyPeriod
	events := append(monthlySales("p1", 300), dailySales("p1", 4)...)
	input := newTestInput(t, schema.MonthlyPeriod, schema.BlendedStrategy, events)

	result := NewForecastResultBuilder(cfg, input, schema.Product{ID: "p1"}).
		BuildSeries().FitTrend().Build()

	// March 10 carries the monthly sale on top of the daily one
	assert.InDelta(t, 4.0, result.DailyMovingAverage7, 1e-9)
	assert.InDelta(t, 4.0, result.DailyMovingAverage14, 1e-9)
}

func TestForecastResultBuilder_DetailSeries(t *testing.T) {
	cfg := testConfig()
	cfg.Detail = true
	input := newTestInput(t, schema.WeeklyPeriod, schema.BlendedStrategy, rampSales("p1"))

	result := NewForecastResultBuilder(cfg, input, schema.Product{ID: "p1"}).BuildSeries().Build()
	require.Len(t, result.Series, 30)
	assert.Equal(t, 1.0, result.Series[0])
	assert.Equal(t, 30.0, result.Series[29])

	// The copy does not alias the shared input
	result.Series[0] = 99
	assert.Equal(t, 1.0, input.series["p1"].Values[0])
}
