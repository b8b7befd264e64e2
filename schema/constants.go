package schema

// Custom string types for type safety.
type (
	// Period represents the forecast period requested by the caller.
	Period string

	// Granularity represents the width of a single bucket.
	Granularity string

	// StrategyName represents a forecast projection strategy.
	StrategyName string

	// RiskLevel represents the stock-out risk tier of a product.
	RiskLevel string

	// TrendDirection represents the sign of the fitted slope.
	TrendDirection string

	// PredictionStatus represents whether a prediction carries a usable value.
	PredictionStatus string

	// RiskBasis represents which demand figure drives risk classification.
	RiskBasis string

	// SaleStatus represents the lifecycle status of a sale record.
	SaleStatus string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// SourceBackend represents where sales history is read from.
	SourceBackend string
)

// All forecast periods supported.
const (
	WeeklyPeriod  Period = "weekly" // default
	MonthlyPeriod Period = "monthly"
)

// All bucket granularities supported.
const (
	DayGranularity   Granularity = "day"
	MonthGranularity Granularity = "month"
)

// All projection strategies supported.
const (
	BlendedStrategy    StrategyName = "blended" // default
	RegressionStrategy StrategyName = "regression"
)

// All risk levels supported, from most to least severe.
const (
	HighRisk    RiskLevel = "high"
	MediumRisk  RiskLevel = "medium"
	LowRisk     RiskLevel = "low"
	UnknownRisk RiskLevel = "unknown" // prediction was not usable
)

// All trend directions supported.
const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// All prediction states supported.
const (
	PredictionOK           PredictionStatus = "ok"
	PredictionInsufficient PredictionStatus = "insufficient_data"
	PredictionError        PredictionStatus = "error"
)

// All risk bases supported.
const (
	PeriodRiskBasis RiskBasis = "period" // default
	WeeklyRiskBasis RiskBasis = "weekly"
)

// Sale statuses that count as realized demand.
const (
	SuccessfulSale SaleStatus = "successful"
	CompletedSale  SaleStatus = "completed"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // report cache only
	NoneBackend       DatabaseBackend = "none"  // default
)

// All sales history sources supported.
const (
	MongoSource      SourceBackend = "mongodb"
	SQLiteSource     SourceBackend = "sqlite"
	MySQLSource      SourceBackend = "mysql"
	PostgreSQLSource SourceBackend = "postgresql"
	JSONSource       SourceBackend = "json" // default
)

// DefaultSaleStatuses are the statuses treated as eligible demand.
var DefaultSaleStatuses = []SaleStatus{SuccessfulSale, CompletedSale}

// AllPeriods returns a list of all supported periods.
var AllPeriods = []Period{WeeklyPeriod, MonthlyPeriod}

// AllStrategies returns a list of all supported strategies.
var AllStrategies = []StrategyName{BlendedStrategy, RegressionStrategy}

// ValidPeriods lists all valid forecast periods.
var ValidPeriods = map[Period]struct{}{
	WeeklyPeriod:  {},
	MonthlyPeriod: {},
}

// ValidStrategies lists all valid projection strategies.
var ValidStrategies = map[StrategyName]struct{}{
	BlendedStrategy:    {},
	RegressionStrategy: {},
}

// ValidRiskBases lists all valid risk bases.
var ValidRiskBases = map[RiskBasis]struct{}{
	PeriodRiskBasis: {},
	WeeklyRiskBasis: {},
}

// ValidSaleStatuses lists all sale statuses that may be configured as eligible.
var ValidSaleStatuses = map[SaleStatus]struct{}{
	SuccessfulSale: {},
	CompletedSale:  {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid SQL backends for history tracking.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidCacheBackends lists all valid report cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidSourceBackends lists all valid sales history sources.
var ValidSourceBackends = map[SourceBackend]struct{}{
	MongoSource:      {},
	SQLiteSource:     {},
	MySQLSource:      {},
	PostgreSQLSource: {},
	JSONSource:       {},
}
