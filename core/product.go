package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/stockcast/core/agg"
	"github.com/huangsam/stockcast/core/algo"
	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// GetProductDetail forecasts a single product and returns it with the labelled
// buckets of its series. It bypasses the report cache and the history store.
func GetProductDetail(ctx context.Context, cfg *contract.Config, reader contract.SalesReader, productID string) (*schema.ProductDetail, error) {
	asOf := cfg.ResolveAsOf(time.Now())
	window, daily, err := buildWindows(cfg, asOf)
	if err != nil {
		return nil, err
	}
	strategy, err := algo.Lookup(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	history, err := readSalesHistory(ctx, cfg, reader, window, daily)
	if err != nil {
		return nil, err
	}

	var product *schema.Product
	for i := range history.products {
		if history.products[i].ID == productID {
			product = &history.products[i]
			break
		}
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", contract.ErrProductNotFound, productID)
	}

	filter := agg.Filter{Statuses: cfg.Statuses, Products: map[string]struct{}{productID: {}}}
	input := &ForecastInput{window: window, daily: daily, strategy: strategy}
	input.series, _ = agg.BucketizeFiltered(history.events, window, filter)
	input.dailyMap, _ = agg.BucketizeFiltered(history.events, daily, filter)

	detailCfg := cfg.Clone()
	detailCfg.Detail = true
	result := forecastProduct(detailCfg, input, *product)

	return &schema.ProductDetail{
		Result: result,
		Labels: window.Labels(),
		Window: window,
	}, nil
}
