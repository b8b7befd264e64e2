package cmd

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huangsam/stockcast/core/algo"
	"github.com/huangsam/stockcast/schema"
)

// strategyList joins the registered forecast strategies for display.
func strategyList() string {
	names := algo.StrategyNames()
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = string(name)
	}
	return strings.Join(out, ", ")
}

// versionCmd prints build details and the forecast models compiled into the binary.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stockcast.",
	Long: `Display the release, commit and build timestamp of stockcast,
along with the Go runtime and the forecast strategies it ships with.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("stockcast CLI\n")
		cmd.Printf("  Version:    %s\n", version)
		cmd.Printf("  Commit:     %s\n", commit)
		cmd.Printf("  Built:      %s\n", date)
		cmd.Printf("  Runtime:    %s\n", runtime.Version())
		cmd.Printf("  Strategies: %s\n", strategyList())
		cmd.Printf("  Periods:    %s, %s\n", schema.WeeklyPeriod, schema.MonthlyPeriod)
	},
}
