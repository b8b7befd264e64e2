package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/stockcast/core"
	"github.com/huangsam/stockcast/internal/contract"
)

// forecastCmd ranks every product by stock-out risk.
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast demand and rank products by stock-out risk",
	Long: `Forecast demand for every product and rank them by how soon they run out.

Sales are bucketed per day over the last 30 days (weekly) or per calendar month
over the last 13 months (monthly), then projected forward with the selected strategy.

Strategies:
  blended    - trend line mixed with 7 and 14 step moving averages (default)
  regression - least squares fit over periods that had sales

Risk levels (days until stock-out):
  high   - less than 7 days
  medium - less than 14 days
  low    - everything else, including products with no demand

Examples:
  # Weekly forecast from a JSON snapshot
  stockcast forecast --source-connect inventory.json

  # Top 10 at-risk products for the month using regression
  stockcast forecast --period monthly --strategy regression --limit 10

  # Forecast as of a past date and export to JSON
  stockcast forecast --as-of 2024-03-30 --output json --output-file forecast.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteForecast(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run forecast", err)
		}
	},
}
