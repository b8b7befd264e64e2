package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/stockcast/core"
	"github.com/huangsam/stockcast/internal/contract"
)

// modelCmd prints the formulas behind the forecast.
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Display forecast formulas and active parameters",
	Long: `Show how demand is projected and how risk is classified.

The output reflects the active blend weights and risk thresholds, including
overrides from the config file.

Examples:
  # Show the model for the monthly regression strategy
  stockcast model --period monthly --strategy regression`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModel(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display model", err)
		}
	},
}
