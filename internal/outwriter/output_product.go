package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// PrintProductDetail outputs the forecast of one product with its labelled series.
func PrintProductDetail(detail *schema.ProductDetail, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, detail)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProductSeriesCSV(w, detail, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only supported for forecast reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProductText(w, detail, cfg, fmtFloat, intFmt, duration)
		}, "Wrote text")
	}
}

// writeProductText prints a summary block followed by the bucket table.
func writeProductText(w io.Writer, detail *schema.ProductDetail, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	r := detail.Result
	lines := []string{
		fmt.Sprintf("📦 %s (%s)", r.Name, r.ProductID),
		fmt.Sprintf("   Current stock:   "+intFmt, r.CurrentStock),
		fmt.Sprintf("   Prediction:      %s", formatDemand(r.Prediction, intFmt)),
		fmt.Sprintf("   Steps:           %s", schema.FormatSteps(r.Prediction.Steps)),
		fmt.Sprintf("   Weekly demand:   "+intFmt, r.WeeklyDemand),
		fmt.Sprintf("   Days left:       %s", formatDays(r.DaysUntilStockout, fmtFloat)),
		fmt.Sprintf("   Risk:            %s", riskLabel(r.RiskLevel, cfg.UseColors)),
		fmt.Sprintf("   Trend:           %s %s (slope %s, intercept %s)", contract.GetTrendArrow(r.TrendDirection), r.TrendDirection, fmtFloat(r.Trend.Slope), fmtFloat(r.Trend.Intercept)),
		fmt.Sprintf("   Avg daily sales: %s (MA7), %s (MA14)", fmtFloat(r.DailyMovingAverage7), fmtFloat(r.DailyMovingAverage14)),
	}
	if r.Prediction.Reason != "" {
		lines = append(lines, fmt.Sprintf("   Reason:          %s", r.Prediction.Reason))
	}
	if !cfg.UseEmojis {
		lines[0] = fmt.Sprintf("%s (%s)", r.Name, r.ProductID)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Bucket", "Units"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, 0, len(detail.Labels))
	for i, label := range detail.Labels {
		value := 0.0
		if i < len(r.Series) {
			value = r.Series[i]
		}
		data = append(data, []string{label, fmtFloat(value)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Forecast completed in %v\n", duration)
	return err
}

// writeProductSeriesCSV writes one row per bucket of the product series.
func writeProductSeriesCSV(w io.Writer, detail *schema.ProductDetail, fmtFloat func(float64) string) error {
	header := []string{"product_id", "bucket", "units"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, label := range detail.Labels {
			value := 0.0
			if i < len(detail.Result.Series) {
				value = detail.Result.Series[i]
			}
			if err := cw.Write([]string{detail.Result.ProductID, label, fmtFloat(value)}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
