package schema

// Default blending weights for the blended strategy. These values reproduce the
// production dashboard and must not drift without a deliberate model change.
const (
	DefaultShortAverageWeight = 0.6 // weight of the 7-bucket moving average
	DefaultLongAverageWeight  = 0.4 // weight of the 14-bucket moving average
	DefaultTrendWeight        = 0.3 // weight of the regression projection
	DefaultAverageWeight      = 0.7 // weight of the blended moving average
)

// Moving average spans used by the blended strategy.
const (
	ShortAverageSpan = 7
	LongAverageSpan  = 14
)

// Default risk tier boundaries in days of remaining stock (exclusive).
const (
	DefaultHighRiskDays   = 7.0
	DefaultMediumRiskDays = 14.0
)

// Lookback sizes and horizons per period.
const (
	WeeklyLookbackDays    = 30
	WeeklyHorizonSteps    = 7
	MonthlyLookbackMonths = 14 // 13 full months plus the current one, so MA14 is defined
	MonthlyHorizonSteps   = 1
	DaysPerWeek           = 7.0
	DaysPerMonth          = 30.0
)

// BlendWeights holds the coefficients of the blended strategy.
type BlendWeights struct {
	ShortAverage float64 `json:"short_average"`
	LongAverage  float64 `json:"long_average"`
	Trend        float64 `json:"trend"`
	Average      float64 `json:"average"`
}

// RiskThresholds holds the exclusive upper bounds of the high and medium tiers.
type RiskThresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

// DefaultBlendWeights returns the production blending coefficients.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{
		ShortAverage: DefaultShortAverageWeight,
		LongAverage:  DefaultLongAverageWeight,
		Trend:        DefaultTrendWeight,
		Average:      DefaultAverageWeight,
	}
}

// DefaultRiskThresholds returns the production tier boundaries.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{High: DefaultHighRiskDays, Medium: DefaultMediumRiskDays}
}

// GetGranularity returns the bucket granularity used for a period.
func GetGranularity(period Period) Granularity {
	if period == MonthlyPeriod {
		return MonthGranularity
	}
	return DayGranularity
}

// GetLookback returns the number of buckets in the lookback window of a period.
func GetLookback(period Period) int {
	if period == MonthlyPeriod {
		return MonthlyLookbackMonths
	}
	return WeeklyLookbackDays
}

// GetHorizon returns the number of future buckets projected for a period.
func GetHorizon(period Period) int {
	if period == MonthlyPeriod {
		return MonthlyHorizonSteps
	}
	return WeeklyHorizonSteps
}

// GetPeriodDays returns the number of days a single horizon covers.
func GetPeriodDays(period Period) float64 {
	if period == MonthlyPeriod {
		return DaysPerMonth
	}
	return DaysPerWeek
}
