// Package cmd defines the command-line interface for stockcast.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/server"
	"github.com/huangsam/stockcast/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sourceCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Add the source subcommands to the parent source command
	sourceCmd.AddCommand(sourceSeedCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("as-of", "", "Reference time in RFC3339 or YYYY-MM-DD (default: now)")
	rootCmd.PersistentFlags().Bool("detail", false, "Include the bucketed sales series of each product")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display (0 = all)")
	rootCmd.PersistentFlags().StringP("period", "p", string(schema.WeeklyPeriod), "Forecast period: weekly or monthly")
	rootCmd.PersistentFlags().StringP("strategy", "s", string(schema.BlendedStrategy), "Projection strategy: blended or regression")
	rootCmd.PersistentFlags().String("risk-basis", string(schema.PeriodRiskBasis), "Daily demand basis for risk: period or weekly")
	rootCmd.PersistentFlags().String("statuses", "", "Comma-separated sale statuses that count as demand (default: successful,completed)")
	rootCmd.PersistentFlags().String("timezone", contract.DefaultTimezone, "IANA timezone used to align period buckets")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in text output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("source-backend", string(schema.JSONSource), "Sales source: json or mongodb or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("source-connect", "", "Snapshot path or connection string of the sales source")
	rootCmd.PersistentFlags().String("source-database", contract.DefaultMongoDB, "Database name for the mongodb source")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Report cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for the report cache (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long a cached report stays fresh")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", server.DefaultAddr, "Address for the HTTP server to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}

	// Bind all flags of sourceSeedCmd to Viper
	sourceSeedCmd.Flags().String("file", "", "Snapshot file to load into the sales source")
	if err := viper.BindPFlags(sourceSeedCmd.Flags()); err != nil {
		contract.LogFatal("Error binding source seed flags", err)
	}
}
