// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteForecast prints a forecast report using the configured output format.
func (ow *OutWriter) WriteForecast(report *schema.ForecastReport, cfg *contract.Config, duration time.Duration) error {
	return PrintForecastReport(report, cfg, duration)
}

// WriteProduct prints the detail of one product using the configured output format.
func (ow *OutWriter) WriteProduct(detail *schema.ProductDetail, cfg *contract.Config, duration time.Duration) error {
	return PrintProductDetail(detail, cfg, duration)
}

// WriteModel prints the forecast model definition using the configured output format.
func (ow *OutWriter) WriteModel(cfg *contract.Config) error {
	return PrintModelDefinition(cfg)
}

// GetMaxTableNameWidth calculates the maximum width for product names in table output
// based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + ID + Stock + Demand + Days + Risk + Trend with borders/padding
	baseWidth := 70

	// Add detail columns with formatting
	if cfg.Detail {
		baseWidth += 40 // MA7 + MA14 + Slope + Steps
	}

	// Reserve space for table borders, separators, and padding
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 50 {
		return 50
	}
	return available
}
