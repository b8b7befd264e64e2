package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// useReader replaces the source of every Execute call for the duration of a test.
func useReader(t *testing.T, reader contract.SalesReader, err error) {
	t.Helper()
	original := readerFactory
	readerFactory = func(context.Context, *contract.Config) (contract.SalesReader, error) {
		if err != nil {
			return nil, err
		}
		return reader, nil
	}
	t.Cleanup(func() { readerFactory = original })
}

// TestExecuteForecast tests the main forecast entry point.
func TestExecuteForecast(t *testing.T) {
	reader := newTestReader(testProducts(), testEvents())
	reader.On("Close").Return(nil)
	useReader(t, reader, nil)

	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "forecast.json")

	err := ExecuteForecast(WithSuppressHeader(context.Background()), cfg, newEmptyManager())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var decoded struct {
		Results []struct {
			ProductID         string   `json:"product_id"`
			DaysUntilStockout *float64 `json:"days_until_stockout"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "p1", decoded.Results[0].ProductID)
	assert.Nil(t, decoded.Results[2].DaysUntilStockout, "never stocks out renders as null")

	reader.AssertCalled(t, "Close")
}

// TestExecuteForecastSourceUnavailable tests that a source that cannot be opened fails the run.
func TestExecuteForecastSourceUnavailable(t *testing.T) {
	useReader(t, nil, errors.New("dial tcp: connection refused"))

	err := ExecuteForecast(context.Background(), testConfig(), newEmptyManager())
	assert.ErrorIs(t, err, contract.ErrDataSourceUnavailable)
}

// TestExecuteProduct tests the single product entry point.
func TestExecuteProduct(t *testing.T) {
	reader := newTestReader(testProducts(), testEvents())
	reader.On("Close").Return(nil)
	useReader(t, reader, nil)

	cfg := testConfig()
	cfg.ProductID = "p2"
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "product.csv")

	require.NoError(t, ExecuteProduct(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "product_id,bucket,units")
	assert.Contains(t, string(data), "p2,2024-03-30,1.0")
}

// TestExecuteProductErrors tests the failure modes of the single product entry point.
func TestExecuteProductErrors(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		err := ExecuteProduct(context.Background(), testConfig(), nil)
		assert.ErrorContains(t, err, "product ID is required")
	})

	t.Run("unknown product", func(t *testing.T) {
		reader := newTestReader(testProducts(), testEvents())
		reader.On("Close").Return(nil)
		useReader(t, reader, nil)

		cfg := testConfig()
		cfg.ProductID = "ghost"
		err := ExecuteProduct(context.Background(), cfg, nil)
		assert.ErrorIs(t, err, contract.ErrProductNotFound)
	})
}

// TestExecuteModel tests the static model display.
func TestExecuteModel(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, ExecuteModel(context.Background(), cfg, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"regression"`)
}
