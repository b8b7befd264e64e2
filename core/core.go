// Package core has core logic for forecasting, risk classification and ranking.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/outwriter"
	"github.com/huangsam/stockcast/internal/source"
	"github.com/huangsam/stockcast/schema"
)

// ExecutorFunc defines the function signature for executing different forecast commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// readerFactory opens the sales source of a run. Tests replace it.
var readerFactory = source.NewReader

// ExecuteForecast runs the forecast over every product and prints the ranked report.
// It serves as the main entry point for the 'forecast' command.
func ExecuteForecast(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	report, err := GetForecast(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteForecast(report, cfg, time.Since(start))
}

// ExecuteProduct forecasts the product in cfg.ProductID and prints its detail.
// It serves as the main entry point for the 'product' command.
func ExecuteProduct(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	if cfg.ProductID == "" {
		return fmt.Errorf("product ID is required")
	}

	start := time.Now()
	detail, err := GetProduct(ctx, cfg, cfg.ProductID)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteProduct(detail, cfg, time.Since(start))
}

// ExecuteModel displays the formulas and parameters of the forecast model.
// This is a static display that does not read any sales.
func ExecuteModel(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.NewOutWriter().WriteModel(cfg)
}

// GetForecast opens the configured source and runs one forecast over it.
// It is shared by the CLI, the MCP tools and the HTTP layer.
func GetForecast(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.ForecastReport, error) {
	reader, err := openReader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	return GetForecastReport(ctx, cfg, reader, mgr)
}

// GetProduct opens the configured source and forecasts a single product.
func GetProduct(ctx context.Context, cfg *contract.Config, productID string) (*schema.ProductDetail, error) {
	reader, err := openReader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	return GetProductDetail(ctx, cfg, reader, productID)
}

// openReader connects to the configured sales source.
func openReader(ctx context.Context, cfg *contract.Config) (contract.SalesReader, error) {
	reader, err := readerFactory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrDataSourceUnavailable, err)
	}
	return reader, nil
}
