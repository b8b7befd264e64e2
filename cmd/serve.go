package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/server"
)

// serveCmd exposes the forecast over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve forecasts over HTTP",
	Long: `Start an HTTP server that answers forecast requests with JSON.

Endpoints:
  GET /api/predict             - ranked forecast for every product
  GET /api/predict/:productId  - forecast and sales series for one product

Both endpoints accept the period, strategy and limit query parameters.
Every other setting comes from flags, environment and the config file.

Examples:
  # Serve a MongoDB-backed forecast on port 8080
  stockcast serve --addr :8080 --source-backend mongodb --source-connect mongodb://localhost:27017

  # Query it
  curl 'localhost:8080/api/predict?period=monthly&limit=5'`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.Start(ctx, cfg, storeManager, viper.GetString("addr")); err != nil {
			contract.LogFatal("Cannot run server", err)
		}
	},
}
