// Package parquet provides data structures and functions for exporting stockcast
// forecasts and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/huangsam/stockcast/schema"
	"github.com/parquet-go/parquet-go"
)

// ForecastRun represents a single forecast run with metadata.
// This struct maps to the stockcast_forecast_runs database table.
type ForecastRun struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	Period   string    `parquet:"period,snappy"`
	Strategy string    `parquet:"strategy,snappy"`
	AsOf     time.Time `parquet:"as_of,snappy"`

	// TotalProducts is the number of products forecast in this run
	TotalProducts int32 `parquet:"total_products,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ProductForecast represents the stored outcome for one product in a run.
// This struct maps to the stockcast_product_forecasts database table.
type ProductForecast struct {
	RunID            string `parquet:"run_id,snappy"`
	ProductID        string `parquet:"product_id,snappy"`
	ProductName      string `parquet:"product_name,snappy"`
	CurrentStock     int32  `parquet:"current_stock,snappy"`
	PredictionStatus string `parquet:"prediction_status,snappy"`

	// PredictedDemand is null when the prediction is not usable
	PredictedDemand *int32 `parquet:"predicted_demand,optional,snappy"`
	WeeklyDemand    int32  `parquet:"weekly_demand,snappy"`

	// DaysUntilStockout is null when demand is zero or the prediction failed
	DaysUntilStockout *float64 `parquet:"days_until_stockout,optional,snappy"`
	RiskLevel         string   `parquet:"risk_level,snappy"`
	TrendDirection    string   `parquet:"trend_direction,snappy"`
	Slope             float64  `parquet:"slope,snappy"`
	Intercept         float64  `parquet:"intercept,snappy"`
}

// ForecastRow is one ranked line of a forecast report.
type ForecastRow struct {
	Rank              int32     `parquet:"rank,snappy"`
	ProductID         string    `parquet:"product_id,snappy"`
	Name              string    `parquet:"name,snappy"`
	CurrentStock      int32     `parquet:"current_stock,snappy"`
	PredictionStatus  string    `parquet:"prediction_status,snappy"`
	PredictedDemand   *int32    `parquet:"predicted_demand,optional,snappy"`
	Steps             []int32   `parquet:"steps,list"`
	WeeklyDemand      int32     `parquet:"weekly_demand,snappy"`
	AverageDailySales float64   `parquet:"average_daily_sales,snappy"`
	DaysUntilStockout *float64  `parquet:"days_until_stockout,optional,snappy"`
	RiskLevel         string    `parquet:"risk_level,snappy"`
	TrendDirection    string    `parquet:"trend_direction,snappy"`
	Slope             float64   `parquet:"slope,snappy"`
	Period            string    `parquet:"period,snappy"`
	Strategy          string    `parquet:"strategy,snappy"`
	AsOf              time.Time `parquet:"as_of,snappy"`
}

// writeRows writes a slice of rows to a Parquet file whose schema is inferred from T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteForecastRunsParquet writes a slice of ForecastRun structs to a Parquet file.
func WriteForecastRunsParquet(data []ForecastRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteProductForecastsParquet writes a slice of ProductForecast structs to a Parquet file.
func WriteProductForecastsParquet(data []ProductForecast, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteForecastReportParquet writes the ranked rows of a report to a Parquet file.
func WriteForecastReportParquet(report *schema.ForecastReport, outputPath string) error {
	return writeRows(ConvertForecastReport(report), outputPath)
}

// ConvertForecastRunRecords converts schema.ForecastRunRecord to ForecastRun for Parquet export.
func ConvertForecastRunRecords(records []schema.ForecastRunRecord) []ForecastRun {
	result := make([]ForecastRun, len(records))
	for i, record := range records {
		result[i] = ForecastRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Period:        record.Period,
			Strategy:      record.Strategy,
			AsOf:          record.AsOf,
			TotalProducts: record.TotalProducts,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertProductForecastRecords converts schema.ProductForecastRecord to ProductForecast for Parquet export.
func ConvertProductForecastRecords(records []schema.ProductForecastRecord) []ProductForecast {
	result := make([]ProductForecast, len(records))
	for i, record := range records {
		result[i] = ProductForecast{
			RunID:             record.RunID,
			ProductID:         record.ProductID,
			ProductName:       record.ProductName,
			CurrentStock:      record.CurrentStock,
			PredictionStatus:  record.PredictionStatus,
			PredictedDemand:   record.PredictedDemand,
			WeeklyDemand:      record.WeeklyDemand,
			DaysUntilStockout: record.DaysUntilStockout,
			RiskLevel:         record.RiskLevel,
			TrendDirection:    record.TrendDirection,
			Slope:             record.Slope,
			Intercept:         record.Intercept,
		}
	}
	return result
}

// ConvertForecastReport flattens a report into ranked rows.
func ConvertForecastReport(report *schema.ForecastReport) []ForecastRow {
	rows := make([]ForecastRow, len(report.Results))
	for i, r := range report.Results {
		row := ForecastRow{
			Rank:              int32(i + 1),
			ProductID:         r.ProductID,
			Name:              r.Name,
			CurrentStock:      int32(r.CurrentStock),
			PredictionStatus:  string(r.Prediction.Status),
			WeeklyDemand:      int32(r.WeeklyDemand),
			AverageDailySales: r.DailyMovingAverage7,
			DaysUntilStockout: FiniteOrNil(r.DaysUntilStockout),
			RiskLevel:         string(r.RiskLevel),
			TrendDirection:    string(r.TrendDirection),
			Slope:             r.Trend.Slope,
			Period:            string(report.Period),
			Strategy:          string(report.Strategy),
			AsOf:              report.AsOf,
		}
		if r.Prediction.OK() {
			total := int32(r.Prediction.Total)
			row.PredictedDemand = &total
			row.Steps = make([]int32, len(r.Prediction.Steps))
			for j, s := range r.Prediction.Steps {
				row.Steps[j] = int32(s)
			}
		}
		rows[i] = row
	}
	return rows
}

// FiniteOrNil returns nil for infinite or NaN values.
func FiniteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
