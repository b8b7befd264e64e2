package core

import (
	"math"

	"github.com/huangsam/stockcast/core/agg"
	"github.com/huangsam/stockcast/core/algo"
	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// ForecastInput is the shared, read-only state every product of a run works from.
type ForecastInput struct {
	window   schema.Window // lookback of the requested period
	daily    schema.Window // daily lookback used for moving averages and weekly risk
	series   map[string]*schema.BucketedSeries
	dailyMap map[string]*schema.BucketedSeries
	strategy algo.Strategy
}

// ForecastResultBuilder builds the forecast of one product from its bucketed history.
type ForecastResultBuilder struct {
	cfg     *contract.Config
	input   *ForecastInput
	product schema.Product
	result  *schema.ForecastResult

	// Internal data collected during the build process
	series     *schema.BucketedSeries
	daily      *schema.BucketedSeries
	projection algo.Projection
}

// NewForecastResultBuilder is the starting point for building a product forecast.
func NewForecastResultBuilder(cfg *contract.Config, input *ForecastInput, product schema.Product) *ForecastResultBuilder {
	return &ForecastResultBuilder{
		cfg:     cfg,
		input:   input,
		product: product,
		result: &schema.ForecastResult{
			ProductID:    product.ID,
			Name:         product.Name,
			CurrentStock: product.CurrentStock,
		},
	}
}

// BuildSeries looks up the dense series of the product in both windows.
// Products without sales get all-zero series.
func (b *ForecastResultBuilder) BuildSeries() *ForecastResultBuilder {
	b.series = agg.SeriesFor(b.input.series, b.product.ID, b.input.window)
	b.daily = agg.SeriesFor(b.input.dailyMap, b.product.ID, b.input.daily)

	if b.cfg.Detail {
		b.result.Series = append([]float64(nil), b.series.Values...)
	}
	return b
}

// FitTrend fits the period trend and the daily moving averages.
func (b *ForecastResultBuilder) FitTrend() *ForecastResultBuilder {
	b.result.Trend = algo.FitTrend(b.series.Values)
	b.result.DailyMovingAverage7, _ = algo.MovingAverage(b.daily.Values, schema.ShortAverageSpan)
	b.result.DailyMovingAverage14, _ = algo.MovingAverage(b.daily.Values, schema.LongAverageSpan)
	return b
}

// Project runs the configured strategy over the period series.
func (b *ForecastResultBuilder) Project() *ForecastResultBuilder {
	b.projection = b.input.strategy.Project(algo.ProjectionInput{
		Series:  b.series,
		Horizon: schema.GetHorizon(b.cfg.Period),
		Weights: b.cfg.Weights,
	})
	b.result.Prediction = b.projection.Prediction

	// Keep the fitted line of the strategy when it produced one
	if b.projection.Prediction.Status != schema.PredictionInsufficient {
		b.result.Trend = b.projection.Trend
	}
	b.result.TrendDirection = algo.TrendDirectionOf(b.result.Trend.Slope)
	return b
}

// ClassifyRisk turns the projected demand into days of stock and a risk tier.
func (b *ForecastResultBuilder) ClassifyRisk() *ForecastResultBuilder {
	if !b.result.Prediction.OK() {
		b.result.DaysUntilStockout = math.NaN()
		b.result.RiskLevel = schema.UnknownRisk
		return b
	}

	b.result.WeeklyDemand = b.result.Prediction.Total
	if b.cfg.Period != schema.WeeklyPeriod {
		b.result.WeeklyDemand, _ = b.blendedWeeklyDemand()
	}

	var days float64
	switch b.cfg.RiskBasis {
	case schema.WeeklyRiskBasis:
		days = math.NaN()
		if weekly, ok := b.blendedWeeklyDemand(); ok {
			days = algo.DaysUntilStockout(b.product.CurrentStock, float64(weekly), schema.DaysPerWeek)
		}
	default:
		days = algo.DaysUntilStockout(b.product.CurrentStock, float64(b.result.Prediction.Total), schema.GetPeriodDays(b.cfg.Period))
	}

	b.result.DaysUntilStockout = days
	b.result.RiskLevel = algo.ClassifyRisk(days, b.cfg.Thresholds)
	return b
}

// blendedWeeklyDemand returns the blended projection of the next seven days
// over the daily window. A blended weekly run has already computed it.
func (b *ForecastResultBuilder) blendedWeeklyDemand() (int, bool) {
	if b.cfg.Period == schema.WeeklyPeriod && b.input.strategy.Name() == schema.BlendedStrategy {
		return b.result.Prediction.Total, true
	}
	weekly := algo.BlendedStrategy{}.Project(algo.ProjectionInput{
		Series:  b.daily,
		Horizon: schema.WeeklyHorizonSteps,
		Weights: b.cfg.Weights,
	})
	if !weekly.Prediction.OK() {
		return 0, false
	}
	return weekly.Prediction.Total, true
}

// Build returns the final result.
func (b *ForecastResultBuilder) Build() schema.ForecastResult {
	return *b.result
}
