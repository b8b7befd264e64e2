package source

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/huangsam/stockcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSnapshot(t *testing.T) Snapshot {
	t.Helper()
	snap, err := LoadSnapshot(filepath.Join("testdata", "snapshot.json"))
	require.NoError(t, err)
	return snap
}

func newSeededSQLite(t *testing.T) *SQLReader {
	t.Helper()
	ctx := context.Background()
	r, err := NewSQLReader(ctx, schema.SQLiteSource, filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Seed(ctx, loadSnapshot(t)))
	return r
}

func TestSQLReaderSQLite(t *testing.T) {
	ctx := context.Background()
	r := newSeededSQLite(t)

	products, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p2", products[1].ID)
	assert.Equal(t, 0, products[1].CurrentStock)

	events, err := r.ListEligibleSales(ctx, testWindow(), schema.DefaultSaleStatuses)
	require.NoError(t, err)
	require.Len(t, events, 3)

	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	assert.Equal(t, time.Date(2024, 3, 30, 10, 30, 0, 0, time.UTC), events[2].Timestamp.UTC())
	assert.Equal(t, 6, events[2].Quantity)
	assert.Equal(t, schema.CompletedSale, events[2].Status)
}

func TestSQLReaderWindowBoundaries(t *testing.T) {
	ctx := context.Background()
	r := newSeededSQLite(t)

	// a window ending exactly at the completed sale excludes it
	end := time.Date(2024, 3, 30, 10, 30, 0, 0, time.UTC)
	w := schema.Window{Start: end.AddDate(0, 0, -2), End: end, Size: 2}
	events, err := r.ListEligibleSales(ctx, w, schema.DefaultSaleStatuses)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = r.ListEligibleSales(ctx, w, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSQLReaderPlaceholders(t *testing.T) {
	pg := &SQLReader{backend: schema.PostgreSQLSource}
	assert.Equal(t, "$3", pg.placeholder(3))
	assert.Contains(t, pg.salesQuery(2), "IN ($3, $4)")

	my := &SQLReader{backend: schema.MySQLSource}
	assert.Equal(t, "?", my.placeholder(3))
	assert.Contains(t, my.salesQuery(1), "s.created_at >= ?")

	lite := &SQLReader{backend: schema.SQLiteSource}
	assert.Contains(t, lite.salesQuery(1), "julianday(s.created_at) >= julianday(?)")
}

func TestParseTimeValue(t *testing.T) {
	want := time.Date(2024, 3, 30, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value any
	}{
		{"time", want},
		{"rfc3339", "2024-03-30T10:30:00Z"},
		{"mysql bytes", []byte("2024-03-30 10:30:00")},
		{"unix", want.Unix()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeValue(tt.value)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	_, err := parseTimeValue("last tuesday")
	assert.Error(t, err)
	_, err = parseTimeValue(3.5)
	assert.Error(t, err)
}

func TestSQLReaderNormalizesQuantities(t *testing.T) {
	ctx := context.Background()
	r := newSeededSQLite(t)

	_, err := r.db.ExecContext(ctx, "UPDATE products SET quantity = -4 WHERE id = 'p1'")
	require.NoError(t, err)
	_, err = r.db.ExecContext(ctx, "UPDATE products SET quantity = 12.6 WHERE id = 'p3'")
	require.NoError(t, err)
	_, err = r.db.ExecContext(ctx, "UPDATE sale_items SET qty = 2.5 WHERE sale_id = 's2'")
	require.NoError(t, err)

	products, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, 0, products[0].CurrentStock, "negative stock is clamped")
	assert.Equal(t, 13, products[2].CurrentStock)

	events, err := r.ListEligibleSales(ctx, testWindow(), []schema.SaleStatus{schema.CompletedSale})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Quantity, "rounded the same way as the MongoDB reader")
}
