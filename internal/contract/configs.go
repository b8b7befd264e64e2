package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/stockcast/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 0 // all products
	MaxResultLimit     = 10000
	DefaultPrecision   = 1
	DefaultCacheTTL    = 24 * time.Hour
	DefaultTimezone    = "UTC"
	DefaultMongoDB     = "inventory"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds the blending coefficients from the YAML config file.
// Use float64 pointers for optional fields.
type WeightsRawInput struct {
	ShortAverage *float64 `mapstructure:"short_average"`
	LongAverage  *float64 `mapstructure:"long_average"`
	Trend        *float64 `mapstructure:"trend"`
	Average      *float64 `mapstructure:"average"`
}

// ThresholdsRawInput holds risk tier boundaries (in days) from the YAML config file.
type ThresholdsRawInput struct {
	High   *float64 `mapstructure:"high"`
	Medium *float64 `mapstructure:"medium"`
}

// Config holds the runtime configuration for a forecast.
// This struct remains the "final, validated" config.
type Config struct {
	Period      schema.Period
	Strategy    schema.StrategyName
	RiskBasis   schema.RiskBasis
	AsOf        time.Time // zero means the clock at run time
	Location    *time.Location
	Statuses    []schema.SaleStatus
	ResultLimit int // 0 keeps every product
	Workers     int
	ProductID   string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	Detail     bool
	UseColors  bool
	UseEmojis  bool

	SourceBackend  schema.SourceBackend
	SourceConnect  string // Please use env var as this is plaintext
	SourceDatabase string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Weights    schema.BlendWeights
	Thresholds schema.RiskThresholds
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ProductID string

	// --- Fields from rootCmd.PersistentFlags() ---
	Period           string `mapstructure:"period"`
	Strategy         string `mapstructure:"strategy"`
	RiskBasis        string `mapstructure:"risk-basis"`
	AsOf             string `mapstructure:"as-of"`
	Timezone         string `mapstructure:"timezone"`
	Statuses         string `mapstructure:"statuses"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Detail           bool   `mapstructure:"detail"`
	Color            string `mapstructure:"color"`
	Emoji            string `mapstructure:"emoji"`
	SourceBackend    string `mapstructure:"source-backend"`
	SourceConnect    string `mapstructure:"source-connect"`
	SourceDatabase   string `mapstructure:"source-database"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Blending weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`

	// --- Risk thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Statuses != nil {
		clone.Statuses = make([]schema.SaleStatus, len(c.Statuses))
		copy(clone.Statuses, c.Statuses)
	}
	return &clone
}

// ResolveAsOf returns the configured as-of instant, or now when none was given.
func (c *Config) ResolveAsOf(now time.Time) time.Time {
	if c.AsOf.IsZero() {
		return now
	}
	return c.AsOf
}

// GetLocation returns the calendar location used for bucket boundaries.
func (c *Config) GetLocation() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processForecastInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeInputs(cfg, input); err != nil {
		return err
	}
	if err := validateSourceConfig(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processBlendWeights(cfg, input); err != nil {
		return err
	}
	if err := processRiskThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and worker fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.ProductID = strings.TrimSpace(input.ProductID)

	colors, err := parseBoolOrDefault(input.Color, true)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	emojis, err := parseBoolOrDefault(input.Emoji, false)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// --- 1. ResultLimit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// parseBoolOrDefault parses s with ParseBoolString, falling back to def when s is empty.
func parseBoolOrDefault(s string, def bool) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseBoolString(s)
}

// processForecastInputs validates the period, strategy, risk basis and statuses.
func processForecastInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Period = schema.Period(strings.ToLower(strings.TrimSpace(input.Period)))
	if _, ok := schema.ValidPeriods[cfg.Period]; !ok {
		return fmt.Errorf("invalid period '%s'. must be weekly, monthly", input.Period)
	}

	cfg.Strategy = schema.StrategyName(strings.ToLower(strings.TrimSpace(input.Strategy)))
	if _, ok := schema.ValidStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be blended, regression", input.Strategy)
	}

	cfg.RiskBasis = schema.RiskBasis(strings.ToLower(strings.TrimSpace(input.RiskBasis)))
	if cfg.RiskBasis == "" {
		cfg.RiskBasis = schema.PeriodRiskBasis
	}
	if _, ok := schema.ValidRiskBases[cfg.RiskBasis]; !ok {
		return fmt.Errorf("invalid risk basis '%s'. must be period, weekly", input.RiskBasis)
	}

	statuses, err := schema.ParseSaleStatuses(input.Statuses)
	if err != nil {
		return err
	}
	cfg.Statuses = statuses

	return nil
}

// processTimeInputs resolves the timezone and the optional as-of instant.
func processTimeInputs(cfg *Config, input *ConfigRawInput) error {
	tz := strings.TrimSpace(input.Timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", input.Timezone, err)
	}
	cfg.Location = loc

	cfg.AsOf = time.Time{}
	if s := strings.TrimSpace(input.AsOf); s != "" {
		t, err := ParseAsOf(s, loc, time.Now())
		if err != nil {
			return err
		}
		cfg.AsOf = t
	}

	cfg.CacheTTL = DefaultCacheTTL
	if s := strings.TrimSpace(input.CacheTTL); s != "" {
		ttl, err := ParseTTL(s)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		cfg.CacheTTL = ttl
	}

	return nil
}

// validateSourceConfig validates the sales history source.
func validateSourceConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.SourceBackend = schema.SourceBackend(strings.ToLower(strings.TrimSpace(input.SourceBackend)))
	if cfg.SourceBackend == "" {
		cfg.SourceBackend = schema.JSONSource
	}
	if _, ok := schema.ValidSourceBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be mongodb, sqlite, mysql, postgresql, json", input.SourceBackend)
	}
	cfg.SourceConnect = input.SourceConnect
	cfg.SourceDatabase = input.SourceDatabase

	switch cfg.SourceBackend {
	case schema.MongoSource:
		if cfg.SourceConnect != "" && !strings.HasPrefix(cfg.SourceConnect, "mongodb://") && !strings.HasPrefix(cfg.SourceConnect, "mongodb+srv://") {
			return fmt.Errorf("MongoDB connection string must start with 'mongodb://' or 'mongodb+srv://'")
		}
		if cfg.SourceDatabase == "" {
			cfg.SourceDatabase = DefaultMongoDB
		}
	case schema.MySQLSource, schema.PostgreSQLSource:
		if cfg.SourceConnect != "" {
			return ValidateDatabaseConnectionString(schema.DatabaseBackend(cfg.SourceBackend), cfg.SourceConnect)
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Validate that cache and history use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// ProcessWeightsRawInput overlays the raw weights on the defaults and validates
// that each pair of coefficients sums to 1.0.
func ProcessWeightsRawInput(weights WeightsRawInput) (schema.BlendWeights, error) {
	result := schema.DefaultBlendWeights()
	if weights.ShortAverage != nil {
		result.ShortAverage = *weights.ShortAverage
	}
	if weights.LongAverage != nil {
		result.LongAverage = *weights.LongAverage
	}
	if weights.Trend != nil {
		result.Trend = *weights.Trend
	}
	if weights.Average != nil {
		result.Average = *weights.Average
	}

	for name, w := range map[string]float64{
		"short_average": result.ShortAverage,
		"long_average":  result.LongAverage,
		"trend":         result.Trend,
		"average":       result.Average,
	} {
		if w < 0 || w > 1 {
			return schema.BlendWeights{}, fmt.Errorf("weight %s must be between 0.0 and 1.0, got %.3f", name, w)
		}
	}
	if sum := result.ShortAverage + result.LongAverage; sum < 0.999 || sum > 1.001 {
		return schema.BlendWeights{}, fmt.Errorf("short_average and long_average weights must sum to 1.0, got %.3f", sum)
	}
	if sum := result.Trend + result.Average; sum < 0.999 || sum > 1.001 {
		return schema.BlendWeights{}, fmt.Errorf("trend and average weights must sum to 1.0, got %.3f", sum)
	}
	return result, nil
}

// processBlendWeights converts the raw input into the final cfg.Weights.
func processBlendWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.Weights = weights
	return nil
}

// processRiskThresholds converts the raw threshold input into the final cfg.Thresholds.
// If no thresholds are provided in the config, the production defaults (7 and 14 days) are used.
func processRiskThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := schema.DefaultRiskThresholds()
	if input.Thresholds.High != nil {
		thresholds.High = *input.Thresholds.High
	}
	if input.Thresholds.Medium != nil {
		thresholds.Medium = *input.Thresholds.Medium
	}

	if thresholds.High <= 0 {
		return fmt.Errorf("high risk threshold must be greater than 0 days (received %.2f)", thresholds.High)
	}
	if thresholds.Medium < thresholds.High {
		return fmt.Errorf("medium risk threshold (%.2f) cannot be below the high threshold (%.2f)", thresholds.Medium, thresholds.High)
	}

	cfg.Thresholds = thresholds
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateForecast applies per-request overrides on a cloned config, as sent
// by the MCP tools and the HTTP layer. Empty values keep the configured ones.
func RevalidateForecast(cfg *Config, period, strategy string, limit int) error {
	if period != "" {
		cfg.Period = schema.Period(strings.ToLower(strings.TrimSpace(period)))
		if _, ok := schema.ValidPeriods[cfg.Period]; !ok {
			return fmt.Errorf("invalid period '%s'. must be weekly, monthly", period)
		}
	}
	if strategy != "" {
		cfg.Strategy = schema.StrategyName(strings.ToLower(strings.TrimSpace(strategy)))
		if _, ok := schema.ValidStrategies[cfg.Strategy]; !ok {
			return fmt.Errorf("invalid strategy '%s'. must be blended, regression", strategy)
		}
	}
	if limit < 0 || limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, limit)
	}
	if limit > 0 {
		cfg.ResultLimit = limit
	}
	return nil
}
