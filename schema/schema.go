// Package schema has the models, enumerations and model defaults shared by all parts of stockcast.
package schema

import (
	"encoding/json"
	"math"
	"time"
)

// SaleEvent is one line item of a sale: a quantity of one product sold at an instant.
type SaleEvent struct {
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Timestamp time.Time  `json:"timestamp"`
	Status    SaleStatus `json:"status"`
}

// Product is an inventory item with its on-hand stock.
type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
}

// Window is the calendar-aligned lookback of one run. Bucket i covers
// [Start + i units, Start + (i+1) units) and End is exclusive.
type Window struct {
	Granularity Granularity `json:"granularity"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Size        int         `json:"size"`
}

// BucketedSeries is the dense per-product demand series of a window, oldest first.
type BucketedSeries struct {
	ProductID   string      `json:"product_id"`
	Granularity Granularity `json:"granularity"`
	Start       time.Time   `json:"start"`
	Values      []float64   `json:"values"`
	Observed    []bool      `json:"-"` // bucket had at least one eligible event
}

// ObservedValues returns the values of buckets that had at least one event, oldest first.
func (s *BucketedSeries) ObservedValues() []float64 {
	var out []float64
	for i, v := range s.Values {
		if i < len(s.Observed) && s.Observed[i] {
			out = append(out, v)
		}
	}
	return out
}

// TrendModel is a fitted straight line y = Intercept + Slope*x.
type TrendModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Predict evaluates the line at x.
func (m TrendModel) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// Prediction is the projected demand over a horizon. Steps and Total are only
// meaningful when Status is PredictionOK.
type Prediction struct {
	Status PredictionStatus `json:"status"`
	Steps  []int            `json:"steps,omitempty"`
	Total  int              `json:"total"`
	Reason string           `json:"reason,omitempty"`
}

// OK reports whether the prediction carries a usable demand value.
func (p Prediction) OK() bool {
	return p.Status == PredictionOK
}

// MarshalJSON renders the total as null when the prediction is not usable.
func (p Prediction) MarshalJSON() ([]byte, error) {
	type jsonPrediction struct {
		Status PredictionStatus `json:"status"`
		Steps  []int            `json:"steps,omitempty"`
		Total  *int             `json:"total"`
		Reason string           `json:"reason,omitempty"`
	}
	out := jsonPrediction{Status: p.Status, Steps: p.Steps, Reason: p.Reason}
	if p.OK() {
		total := p.Total
		out.Total = &total
	}
	return json.Marshal(out)
}

// ForecastResult is the per-product outcome of a forecast run.
type ForecastResult struct {
	ProductID            string         `json:"product_id"`
	Name                 string         `json:"name"`
	CurrentStock         int            `json:"current_stock"`
	Series               []float64      `json:"series,omitempty"`
	Trend                TrendModel     `json:"trend"`
	DailyMovingAverage7  float64        `json:"daily_moving_average_7"`
	DailyMovingAverage14 float64        `json:"daily_moving_average_14"`
	Prediction           Prediction     `json:"prediction"`
	WeeklyDemand         int            `json:"weekly_demand"`
	DaysUntilStockout    float64        `json:"days_until_stockout"` // +Inf when demand is zero
	RiskLevel            RiskLevel      `json:"risk_level"`
	TrendDirection       TrendDirection `json:"trend_direction"`
}

// NeverStocksOut reports whether the product has no projected demand.
func (r ForecastResult) NeverStocksOut() bool {
	return math.IsInf(r.DaysUntilStockout, 1)
}

// MarshalJSON renders an infinite or undefined stock-out horizon as null.
func (r ForecastResult) MarshalJSON() ([]byte, error) {
	type alias ForecastResult
	out := struct {
		alias
		DaysUntilStockout *float64 `json:"days_until_stockout"`
	}{alias: alias(r)}
	if !math.IsInf(r.DaysUntilStockout, 0) && !math.IsNaN(r.DaysUntilStockout) {
		days := r.DaysUntilStockout
		out.DaysUntilStockout = &days
	}
	return json.Marshal(out)
}

// ForecastReport is the ranked outcome of one forecast run.
type ForecastReport struct {
	RunID       string           `json:"run_id"`
	Period      Period           `json:"period"`
	Strategy    StrategyName     `json:"strategy"`
	RiskBasis   RiskBasis        `json:"risk_basis"`
	AsOf        time.Time        `json:"as_of"`
	Window      Window           `json:"window"`
	Horizon     int              `json:"horizon"`
	GeneratedAt time.Time        `json:"generated_at"`
	Results     []ForecastResult `json:"results"`
}

// ProductDetail is the diagnostic view of a single product with labelled buckets.
type ProductDetail struct {
	Result ForecastResult `json:"result"`
	Labels []string       `json:"labels"`
	Window Window         `json:"window"`
}
