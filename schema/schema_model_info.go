package schema

// StrategyInfo describes a projection strategy for display purposes.
type StrategyInfo struct {
	Name    StrategyName `json:"name"`
	Purpose string       `json:"purpose"`
	Formula string       `json:"formula"`
	Active  bool         `json:"active"`
}

// ModelRenderModel contains all processed data needed for displaying the forecast model.
type ModelRenderModel struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Period      Period         `json:"period"`
	RiskBasis   RiskBasis      `json:"risk_basis"`
	Lookback    int            `json:"lookback"`
	Horizon     int            `json:"horizon"`
	Granularity Granularity    `json:"granularity"`
	Strategies  []StrategyInfo `json:"strategies"`
	Weights     BlendWeights   `json:"weights"`
	Thresholds  RiskThresholds `json:"thresholds"`
	RiskRules   []string       `json:"risk_rules"`
}
