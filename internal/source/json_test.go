package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/stockcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONReader(t *testing.T) {
	ctx := context.Background()
	r, err := NewJSONReader(filepath.Join("testdata", "snapshot.json"))
	require.NoError(t, err)

	products, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, schema.Product{ID: "p1", Name: "Arabica Beans 1kg", CurrentStock: 70}, products[0])

	events, err := r.ListEligibleSales(ctx, testWindow(), schema.DefaultSaleStatuses)
	require.NoError(t, err)

	// s3 is pending and s4 is outside the window
	require.Len(t, events, 3)
	total := 0
	for _, ev := range events {
		if ev.ProductID == "p1" {
			total += ev.Quantity
		}
	}
	assert.Equal(t, 10, total)
}

func TestJSONReaderStatusFilter(t *testing.T) {
	r, err := NewJSONReader(filepath.Join("testdata", "snapshot.json"))
	require.NoError(t, err)

	events, err := r.ListEligibleSales(context.Background(), testWindow(), []schema.SaleStatus{schema.CompletedSale})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 6, events[0].Quantity)
	assert.Equal(t, schema.CompletedSale, events[0].Status)
}

func TestJSONReaderErrors(t *testing.T) {
	_, err := NewJSONReader(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = NewJSONReader(bad)
	assert.Error(t, err)

	r := NewSnapshotReader(Snapshot{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONReaderClampsNegativeStock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	data := `{"products": [{"id": "p1", "name": "Widget", "quantity": -4}], "sales": []}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	r, err := NewJSONReader(path)
	require.NoError(t, err)
	products, err := r.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 0, products[0].CurrentStock)
}
