package algo

import (
	"math"

	"github.com/huangsam/stockcast/schema"
)

// DaysUntilStockout converts demand over periodDays into days of remaining stock.
// Zero or negative demand never depletes stock and yields +Inf.
func DaysUntilStockout(stock int, demand, periodDays float64) float64 {
	if demand <= 0 || periodDays <= 0 {
		return math.Inf(1)
	}
	daily := demand / periodDays
	return float64(max(stock, 0)) / daily
}

// ClassifyRisk assigns a tier using exclusive upper bounds: days below
// High is high risk, below Medium is medium risk, anything else is low.
func ClassifyRisk(days float64, thresholds schema.RiskThresholds) schema.RiskLevel {
	switch {
	case math.IsNaN(days):
		return schema.UnknownRisk
	case days < thresholds.High:
		return schema.HighRisk
	case days < thresholds.Medium:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}
