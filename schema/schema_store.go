package schema

import "time"

// ForecastRunRecord represents a row from the stockcast_forecast_runs table.
type ForecastRunRecord struct {
	RunID         string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Period        string
	Strategy      string
	AsOf          time.Time
	TotalProducts int32
	ConfigParams  *string
}

// ProductForecastRecord represents a row from the stockcast_product_forecasts table.
type ProductForecastRecord struct {
	RunID             string
	ProductID         string
	ProductName       string
	CurrentStock      int32
	PredictionStatus  string
	PredictedDemand   *int32
	WeeklyDemand      int32
	DaysUntilStockout *float64
	RiskLevel         string
	TrendDirection    string
	Slope             float64
	Intercept         float64
}
