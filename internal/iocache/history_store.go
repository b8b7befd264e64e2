package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// Table names for run history.
const (
	forecastRunsTable     = "stockcast_forecast_runs"
	productForecastsTable = "stockcast_product_forecasts"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openSQLDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{forecastRunsTable, getCreateForecastRunsQuery(backend)},
		{productForecastsTable, getCreateProductForecastsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateForecastRunsQuery returns the CREATE TABLE query for stockcast_forecast_runs.
func getCreateForecastRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(forecastRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				period VARCHAR(16) NOT NULL,
				strategy VARCHAR(16) NOT NULL,
				as_of DATETIME(6) NOT NULL,
				total_products INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				period TEXT NOT NULL,
				strategy TEXT NOT NULL,
				as_of TIMESTAMPTZ NOT NULL,
				total_products INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				period TEXT NOT NULL,
				strategy TEXT NOT NULL,
				as_of TEXT NOT NULL,
				total_products INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateProductForecastsQuery returns the CREATE TABLE query for stockcast_product_forecasts.
func getCreateProductForecastsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(productForecastsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				product_id VARCHAR(128) NOT NULL,
				product_name VARCHAR(255) NOT NULL,
				current_stock INT NOT NULL,
				prediction_status VARCHAR(32) NOT NULL,
				predicted_demand INT,
				weekly_demand INT NOT NULL,
				days_until_stockout DOUBLE,
				risk_level VARCHAR(16) NOT NULL,
				trend_direction VARCHAR(16) NOT NULL,
				slope DOUBLE NOT NULL,
				intercept DOUBLE NOT NULL,
				PRIMARY KEY (run_id, product_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				product_id TEXT NOT NULL,
				product_name TEXT NOT NULL,
				current_stock INT NOT NULL,
				prediction_status TEXT NOT NULL,
				predicted_demand INT,
				weekly_demand INT NOT NULL,
				days_until_stockout DOUBLE PRECISION,
				risk_level TEXT NOT NULL,
				trend_direction TEXT NOT NULL,
				slope DOUBLE PRECISION NOT NULL,
				intercept DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, product_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				product_id TEXT NOT NULL,
				product_name TEXT NOT NULL,
				current_stock INTEGER NOT NULL,
				prediction_status TEXT NOT NULL,
				predicted_demand INTEGER,
				weekly_demand INTEGER NOT NULL,
				days_until_stockout REAL,
				risk_level TEXT NOT NULL,
				trend_direction TEXT NOT NULL,
				slope REAL NOT NULL,
				intercept REAL NOT NULL,
				PRIMARY KEY (run_id, product_id)
			);
		`, quotedTableName)
	}
}

// BeginRun records the start of a forecast run.
func (hs *HistoryStoreImpl) BeginRun(run schema.ForecastRunRecord, configParams map[string]any) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}
	if run.RunID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, period, strategy, as_of, config_params) VALUES (%s)`,
		quoteTableName(forecastRunsTable, hs.backend), placeholders(hs.backend, 6))
	_, err = hs.db.Exec(query,
		run.RunID,
		formatTime(run.StartTime, hs.backend),
		run.Period,
		run.Strategy,
		formatTime(run.AsOf, hs.backend),
		string(configJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert forecast run: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, totalProducts int) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(forecastRunsTable, hs.backend)

	var rawStart any
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(&rawStart); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := parseDBTime(rawStart)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	if hs.backend == schema.PostgreSQLBackend {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_products = $3 WHERE run_id = $4`, quotedTableName)
	} else {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_products = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalProducts, runID); err != nil {
		return fmt.Errorf("failed to update forecast run: %w", err)
	}
	return nil
}

// RecordResult stores the outcome of one product in a run.
func (hs *HistoryStoreImpl) RecordResult(runID string, result schema.ForecastResult) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	var predicted sql.NullInt32
	if result.Prediction.OK() {
		predicted = sql.NullInt32{Int32: int32(result.Prediction.Total), Valid: true}
	}
	var days sql.NullFloat64
	if !math.IsInf(result.DaysUntilStockout, 0) && !math.IsNaN(result.DaysUntilStockout) {
		days = sql.NullFloat64{Float64: result.DaysUntilStockout, Valid: true}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, product_id, product_name, current_stock, prediction_status,
		                predicted_demand, weekly_demand, days_until_stockout, risk_level,
		                trend_direction, slope, intercept)
		VALUES (%s)
	`, quoteTableName(productForecastsTable, hs.backend), placeholders(hs.backend, 12))

	_, err := hs.db.Exec(query,
		runID, result.ProductID, result.Name, result.CurrentStock, string(result.Prediction.Status),
		predicted, result.WeeklyDemand, days, string(result.RiskLevel),
		string(result.TrendDirection), result.Trend.Slope, result.Trend.Intercept,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product forecast: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(forecastRunsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var rawLast any
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &rawLast); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastRunTime, err := parseDBTime(rawLast)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		var rawOldest any
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(oldestRunQuery).Scan(&rawOldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestRunTime, err := parseDBTime(rawOldest)
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	for _, table := range []string{forecastRunsTable, productForecastsTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalForecasts = int(status.TableSizes[productForecastsTable])

	return status, nil
}

// GetAllRuns retrieves all forecast runs from the store, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ForecastRunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, period, strategy, as_of,
		total_products, config_params FROM %s ORDER BY start_time, run_id`, quoteTableName(forecastRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ForecastRunRecord
	for rows.Next() {
		var record schema.ForecastRunRecord
		var rawStart, rawEnd, rawAsOf any
		var duration sql.NullInt32
		var params sql.NullString

		if err := rows.Scan(&record.RunID, &rawStart, &rawEnd, &duration, &record.Period, &record.Strategy,
			&rawAsOf, &record.TotalProducts, &params); err != nil {
			return nil, fmt.Errorf("failed to scan forecast run: %w", err)
		}
		if record.StartTime, err = parseDBTime(rawStart); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if record.EndTime, err = parseNullableDBTime(rawEnd); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		if record.AsOf, err = parseDBTime(rawAsOf); err != nil {
			return nil, fmt.Errorf("failed to parse as_of: %w", err)
		}
		if duration.Valid {
			ms := duration.Int32
			record.RunDurationMs = &ms
		}
		if params.Valid {
			p := params.String
			record.ConfigParams = &p
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecast runs: %w", err)
	}
	return results, nil
}

// GetAllProductForecasts retrieves every recorded product result.
func (hs *HistoryStoreImpl) GetAllProductForecasts() ([]schema.ProductForecastRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, product_id, product_name, current_stock, prediction_status,
		predicted_demand, weekly_demand, days_until_stockout, risk_level, trend_direction, slope, intercept
		FROM %s ORDER BY run_id, product_id`, quoteTableName(productForecastsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product forecasts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ProductForecastRecord
	for rows.Next() {
		var record schema.ProductForecastRecord
		var predicted sql.NullInt32
		var days sql.NullFloat64

		if err := rows.Scan(&record.RunID, &record.ProductID, &record.ProductName, &record.CurrentStock,
			&record.PredictionStatus, &predicted, &record.WeeklyDemand, &days, &record.RiskLevel,
			&record.TrendDirection, &record.Slope, &record.Intercept); err != nil {
			return nil, fmt.Errorf("failed to scan product forecast: %w", err)
		}
		if predicted.Valid {
			v := predicted.Int32
			record.PredictedDemand = &v
		}
		if days.Valid {
			v := days.Float64
			record.DaysUntilStockout = &v
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product forecasts: %w", err)
	}
	return results, nil
}
