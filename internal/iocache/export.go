package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/parquet"
)

// ExecuteHistoryExport writes the run history to a pair of Parquet files.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no forecast history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total forecast runs: %d\n", status.TotalRuns)
	fmt.Printf("Total product forecasts: %d\n", status.TotalForecasts)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve forecast runs: %w", err)
	}

	products, err := store.GetAllProductForecasts()
	if err != nil {
		return fmt.Errorf("failed to retrieve product forecasts: %w", err)
	}

	runsFile := outputFile + ".forecast_runs.parquet"
	if err := parquet.WriteForecastRunsParquet(parquet.ConvertForecastRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write forecast runs: %w", err)
	}
	fmt.Printf("Exported %d forecast runs to: %s\n", len(runs), runsFile)

	productsFile := outputFile + ".product_forecasts.parquet"
	if err := parquet.WriteProductForecastsParquet(parquet.ConvertProductForecastRecords(products), productsFile); err != nil {
		return fmt.Errorf("failed to write product forecasts: %w", err)
	}
	fmt.Printf("Exported %d product forecasts to: %s\n", len(products), productsFile)

	return nil
}
