package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/parquet"
	"github.com/huangsam/stockcast/schema"
)

// PrintForecastReport outputs a ranked forecast, dispatching based on the output format configured.
func PrintForecastReport(report *schema.ForecastReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeForecastCSV(w, report, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteForecastReportParquet(report, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeForecastTable(w, report, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeForecastTable generates and writes the human-readable table.
func writeForecastTable(w io.Writer, report *schema.ForecastReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"Rank", "Product", "Name", "Stock", "Demand", "Weekly", "Days Left", "Risk", "Trend"}
	if cfg.Detail {
		headers = append(headers, "MA7", "MA14", "Slope", "Steps")
	}
	table.Header(headers)

	// 2. Configure alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, r := range report.Results {
		row := []string{
			strconv.Itoa(i + 1),
			r.ProductID,
			contract.TruncateName(r.Name, nameWidth),
			fmt.Sprintf(intFmt, r.CurrentStock),
			formatDemand(r.Prediction, intFmt),
			fmt.Sprintf(intFmt, r.WeeklyDemand),
			formatDays(r.DaysUntilStockout, fmtFloat),
			riskLabel(r.RiskLevel, cfg.UseColors),
			contract.GetTrendArrow(r.TrendDirection),
		}
		if cfg.Detail {
			row = append(row,
				fmtFloat(r.DailyMovingAverage7),
				fmtFloat(r.DailyMovingAverage14),
				fmtFloat(r.Trend.Slope),
				schema.FormatSteps(r.Prediction.Steps),
			)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// 5. Summary
	counts := countRiskLevels(report.Results)
	if _, err := fmt.Fprintf(w, "Showing %d products (high: %d, medium: %d, low: %d, unknown: %d)\n",
		len(report.Results), counts[schema.HighRisk], counts[schema.MediumRisk], counts[schema.LowRisk], counts[schema.UnknownRisk]); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %s forecast as of %s over %s..%s. Run %s\n",
		report.Period, report.Strategy, report.AsOf.Format(contract.DateTimeFormat),
		report.Window.Label(0), report.Window.Label(report.Window.Size-1), report.RunID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Forecast completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeForecastCSV writes one CSV row per ranked product.
func writeForecastCSV(w io.Writer, report *schema.ForecastReport, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"product_id",
		"name",
		"current_stock",
		"prediction_status",
		"predicted_demand",
		"steps",
		"weekly_demand",
		"days_until_stockout",
		"risk_level",
		"trend_direction",
		"slope",
		"intercept",
		"daily_moving_average_7",
		"daily_moving_average_14",
	}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range report.Results {
			demand := ""
			if r.Prediction.OK() {
				demand = fmt.Sprintf(intFmt, r.Prediction.Total)
			}
			record := []string{
				strconv.Itoa(i + 1),
				r.ProductID,
				r.Name,
				fmt.Sprintf(intFmt, r.CurrentStock),
				string(r.Prediction.Status),
				demand,
				schema.FormatSteps(r.Prediction.Steps),
				fmt.Sprintf(intFmt, r.WeeklyDemand),
				formatDays(r.DaysUntilStockout, fmtFloat),
				contract.GetPlainLabel(r.RiskLevel),
				string(r.TrendDirection),
				fmtFloat(r.Trend.Slope),
				fmtFloat(r.Trend.Intercept),
				fmtFloat(r.DailyMovingAverage7),
				fmtFloat(r.DailyMovingAverage14),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// riskLabel returns the colored or plain label of a risk level.
func riskLabel(level schema.RiskLevel, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(level)
	}
	return contract.GetPlainLabel(level)
}

// countRiskLevels tallies results per risk tier.
func countRiskLevels(results []schema.ForecastResult) map[schema.RiskLevel]int {
	counts := make(map[schema.RiskLevel]int, 4)
	for _, r := range results {
		counts[r.RiskLevel]++
	}
	return counts
}
