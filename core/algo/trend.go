// Package algo has the numerical core of stockcast: trend fitting, projection strategies,
// risk classification and ranking.
package algo

import (
	"math"

	"github.com/huangsam/stockcast/schema"
)

// slopeEpsilon is the magnitude below which a slope is treated as flat.
const slopeEpsilon = 1e-9

// FitTrend fits an ordinary least squares line over y with x = 0..n-1.
func FitTrend(y []float64) schema.TrendModel {
	xs := make([]float64, len(y))
	for i := range xs {
		xs[i] = float64(i)
	}
	return FitPoints(xs, y)
}

// FitPoints fits an ordinary least squares line over paired samples.
// With fewer than two samples the slope is 0 and the intercept is the lone
// value (or 0). A vanishing denominator also yields slope 0 with the mean as intercept.
func FitPoints(xs, ys []float64) schema.TrendModel {
	n := min(len(xs), len(ys))
	switch n {
	case 0:
		return schema.TrendModel{}
	case 1:
		return schema.TrendModel{Intercept: ys[0]}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range n {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	fn := float64(n)
	denom := fn*sumX2 - sumX*sumX
	if math.Abs(denom) < 1e-10 {
		return schema.TrendModel{Intercept: sumY / fn}
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return schema.TrendModel{Slope: slope, Intercept: intercept}
}

// MovingAverage returns the mean of the most recent k entries of an
// oldest-first series. It reports false when the series is shorter than k.
func MovingAverage(y []float64, k int) (float64, bool) {
	if k <= 0 || len(y) < k {
		return 0, false
	}
	sum := 0.0
	for _, v := range y[len(y)-k:] {
		sum += v
	}
	return sum / float64(k), true
}

// TrendDirectionOf maps the sign of a slope to a direction.
func TrendDirectionOf(slope float64) schema.TrendDirection {
	switch {
	case slope > slopeEpsilon:
		return schema.TrendIncreasing
	case slope < -slopeEpsilon:
		return schema.TrendDecreasing
	default:
		return schema.TrendStable
	}
}
