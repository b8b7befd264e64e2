package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/stockcast/core"
	"github.com/huangsam/stockcast/internal/contract"
)

// productCmd forecasts a single product with its sales series.
var productCmd = &cobra.Command{
	Use:   "product <product-id>",
	Short: "Forecast one product and show its sales series",
	Long: `Forecast a single product and print the bucketed sales that fed the projection.

The series lines up with the bucket labels of the selected period, so it can be
charted directly. The report cache and run history are not used.

Examples:
  # Daily sales and forecast for one product
  stockcast product 64f1c2 --source-connect inventory.json

  # Monthly series as CSV
  stockcast product 64f1c2 --period monthly --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProduct(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot forecast product", err)
		}
	},
}
