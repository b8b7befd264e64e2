package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// getDisplayNameForStrategy returns the display name with emoji for a given strategy.
func getDisplayNameForStrategy(name schema.StrategyName) string {
	switch name {
	case schema.BlendedStrategy:
		return "🧪 BLENDED"
	case schema.RegressionStrategy:
		return "📈 REGRESSION"
	default:
		return strings.ToUpper(string(name))
	}
}

// formatBlendFormula renders the blended step formula with the active weights.
func formatBlendFormula(w schema.BlendWeights) string {
	return fmt.Sprintf("step = max(0, round(%.2f*trend(n+i) + %.2f*(%.2f*MA%d + %.2f*MA%d)))",
		w.Trend, w.Average, w.ShortAverage, schema.ShortAverageSpan, w.LongAverage, schema.LongAverageSpan)
}

// buildModelRenderModel constructs the complete render model with all processed data.
func buildModelRenderModel(cfg *contract.Config) *schema.ModelRenderModel {
	strategies := []schema.StrategyInfo{
		{
			Name:    schema.BlendedStrategy,
			Purpose: "Per-step forecast mixing the trend line with short and long moving averages",
			Formula: formatBlendFormula(cfg.Weights),
		},
		{
			Name:    schema.RegressionStrategy,
			Purpose: "Horizon total from a regression over periods that had sales (needs 2 or more)",
			Formula: "total = round(sum max(0, predict(m+i)) for i in 1..H)",
		},
	}
	for i := range strategies {
		strategies[i].Active = strategies[i].Name == cfg.Strategy
	}

	basis := fmt.Sprintf("demand over %.0f days", schema.GetPeriodDays(cfg.Period))
	if cfg.RiskBasis == schema.WeeklyRiskBasis {
		basis = fmt.Sprintf("blended demand of the next %.0f days", schema.DaysPerWeek)
	}

	return &schema.ModelRenderModel{
		Title:       "Stockcast Forecast Model",
		Description: "Days until stock-out = current stock / daily demand",
		Period:      cfg.Period,
		RiskBasis:   cfg.RiskBasis,
		Lookback:    schema.GetLookback(cfg.Period),
		Horizon:     schema.GetHorizon(cfg.Period),
		Granularity: schema.GetGranularity(cfg.Period),
		Strategies:  strategies,
		Weights:     cfg.Weights,
		Thresholds:  cfg.Thresholds,
		RiskRules: []string{
			fmt.Sprintf("daily demand = %s", basis),
			fmt.Sprintf("high: days < %g", cfg.Thresholds.High),
			fmt.Sprintf("medium: days < %g", cfg.Thresholds.Medium),
			"low: everything else, including zero demand",
			"unknown: prediction was insufficient or failed",
		},
	}
}

// PrintModelDefinition displays the formulas and parameters of the forecast model.
// This is a static display that does not read any sales.
func PrintModelDefinition(cfg *contract.Config) error {
	renderModel := buildModelRenderModel(cfg)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeModelCSV(w, renderModel)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeModelText(w, renderModel, cfg)
		}, "Wrote text")
	}
}

// writeModelText displays the model in human-readable text format.
func writeModelText(w io.Writer, m *schema.ModelRenderModel, cfg *contract.Config) error {
	title := m.Title
	if cfg.UseEmojis {
		title = "📦 " + title
	}
	lines := []string{
		title,
		strings.Repeat("=", len(m.Title)+3),
		"",
		fmt.Sprintf("Period: %s (%d %s buckets, horizon %d)", m.Period, m.Lookback, m.Granularity, m.Horizon),
		"",
	}
	for _, s := range m.Strategies {
		name := strings.ToUpper(string(s.Name))
		if cfg.UseEmojis {
			name = getDisplayNameForStrategy(s.Name)
		}
		if s.Active {
			name += " (active)"
		}
		lines = append(lines,
			fmt.Sprintf("%s: %s", name, s.Purpose),
			fmt.Sprintf("   Formula: %s", s.Formula),
			"",
		)
	}
	lines = append(lines, fmt.Sprintf("Risk (%s basis)", m.RiskBasis), m.Description)
	for _, rule := range m.RiskRules {
		lines = append(lines, "   "+rule)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeModelCSV writes one row per strategy.
func writeModelCSV(w io.Writer, m *schema.ModelRenderModel) error {
	header := []string{"strategy", "purpose", "formula", "active"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range m.Strategies {
			if err := cw.Write([]string{string(s.Name), s.Purpose, s.Formula, fmt.Sprint(s.Active)}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
