package algo

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/stockcast/schema"
)

// ProjectionInput is everything a strategy needs to project one product.
type ProjectionInput struct {
	Series  *schema.BucketedSeries
	Horizon int
	Weights schema.BlendWeights
}

// Projection is the outcome of a strategy: the prediction and the line it was derived from.
type Projection struct {
	Prediction schema.Prediction
	Trend      schema.TrendModel
}

// Strategy projects future demand from a bucketed series.
type Strategy interface {
	Name() schema.StrategyName
	Project(in ProjectionInput) Projection
}

// strategies is the registry of every projection strategy by name.
var strategies = map[schema.StrategyName]Strategy{
	schema.BlendedStrategy:    BlendedStrategy{},
	schema.RegressionStrategy: RegressionStrategy{},
}

// Lookup returns the registered strategy with the given name.
func Lookup(name schema.StrategyName) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy '%s'", name)
	}
	return s, nil
}

// StrategyNames returns the registered strategy names in sorted order.
func StrategyNames() []schema.StrategyName {
	names := make([]schema.StrategyName, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// BlendedStrategy mixes a regression projection with short and long moving averages
// and emits one clamped, rounded value per future bucket.
type BlendedStrategy struct{}

// Name implements Strategy.
func (BlendedStrategy) Name() schema.StrategyName { return schema.BlendedStrategy }

// Project implements Strategy.
func (BlendedStrategy) Project(in ProjectionInput) Projection {
	values := in.Series.Values
	n := len(values)
	trend := FitTrend(values)

	short, _ := MovingAverage(values, schema.ShortAverageSpan)
	long, _ := MovingAverage(values, schema.LongAverageSpan)
	avg := in.Weights.ShortAverage*short + in.Weights.LongAverage*long

	steps := make([]int, in.Horizon)
	total := 0
	for i := 1; i <= in.Horizon; i++ {
		trendPrediction := trend.Predict(float64(n + i))
		blended := in.Weights.Trend*trendPrediction + in.Weights.Average*avg
		if math.IsNaN(blended) || math.IsInf(blended, 0) {
			return Projection{
				Prediction: errorPrediction(fmt.Sprintf("non-finite projection at step %d", i)),
				Trend:      trend,
			}
		}
		step := int(math.Max(0, math.Round(blended)))
		steps[i-1] = step
		total += step
	}

	return Projection{
		Prediction: schema.Prediction{Status: schema.PredictionOK, Steps: steps, Total: total},
		Trend:      trend,
	}
}

// RegressionStrategy fits a line over the periods that had sales, numbered 1..m,
// and sums the clamped projections of the next horizon periods.
type RegressionStrategy struct{}

// Name implements Strategy.
func (RegressionStrategy) Name() schema.StrategyName { return schema.RegressionStrategy }

// Project implements Strategy.
func (RegressionStrategy) Project(in ProjectionInput) Projection {
	ys := in.Series.ObservedValues()
	m := len(ys)
	if m < 2 {
		return Projection{Prediction: schema.Prediction{
			Status: schema.PredictionInsufficient,
			Reason: fmt.Sprintf("need at least 2 periods with sales, have %d", m),
		}}
	}

	xs := make([]float64, m)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	trend := FitPoints(xs, ys)

	sum := 0.0
	for i := 1; i <= in.Horizon; i++ {
		sum += math.Max(0, trend.Predict(float64(m+i)))
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Projection{Prediction: errorPrediction("non-finite projection"), Trend: trend}
	}

	return Projection{
		Prediction: schema.Prediction{Status: schema.PredictionOK, Total: int(math.Round(sum))},
		Trend:      trend,
	}
}

// errorPrediction marks a per-product failure.
func errorPrediction(reason string) schema.Prediction {
	return schema.Prediction{Status: schema.PredictionError, Reason: reason}
}
