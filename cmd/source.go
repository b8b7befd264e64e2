package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/source"
)

// sourceCmd groups sales source maintenance.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the sales history source",
	Long: `Manage the database that stockcast reads sales and inventory from.

Subcommands:
  seed - Load a JSON snapshot into a MongoDB or SQL source

Examples:
  # Seed a local SQLite source and forecast from it
  stockcast source seed --file inventory.json --source-backend sqlite --source-connect sales.db
  stockcast forecast --source-backend sqlite --source-connect sales.db`,
}

// sourceSeedCmd loads a snapshot into a writable source.
var sourceSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a JSON snapshot into the configured sales source",
	Long: `Create the products and sales collections or tables and insert a snapshot.

The snapshot uses the same format as the json source backend. JSON sources
are read-only and cannot be seeded.

Examples:
  # Seed MongoDB
  stockcast source seed --file inventory.json --source-backend mongodb --source-connect mongodb://localhost:27017

  # Seed PostgreSQL (set connection string via env variable)
  STOCKCAST_SOURCE_CONNECT="postgres://..." stockcast source seed --file inventory.json --source-backend postgresql`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := seedSource(viper.GetString("file")); err != nil {
			contract.LogFatal("Failed to seed source", err)
		}
	},
}

// seedSource loads the snapshot at path into the configured source.
func seedSource(path string) error {
	if path == "" {
		return errors.New("--file is required for seed command")
	}
	snap, err := source.LoadSnapshot(path)
	if err != nil {
		return err
	}

	target, err := source.NewSeedTarget(rootCtx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = target.Close() }()

	if err := target.Seed(rootCtx, snap); err != nil {
		return err
	}
	fmt.Printf("Seeded %d products and %d sales into %s source.\n", len(snap.Products), len(snap.Sales), cfg.SourceBackend)
	return nil
}
