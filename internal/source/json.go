package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// Snapshot is an exported copy of the point-of-sale database.
type Snapshot struct {
	Products []SnapshotProduct `json:"products"`
	Sales    []SnapshotSale    `json:"sales"`
}

// SnapshotProduct is one inventory item.
type SnapshotProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// SnapshotSale is one sale or order with its line items.
type SnapshotSale struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Items     []SnapshotItem `json:"items"`
}

// SnapshotItem is one line item of a sale.
type SnapshotItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

// JSONReader serves sales and inventory from a snapshot held in memory.
type JSONReader struct {
	snapshot Snapshot
}

var _ contract.SalesReader = &JSONReader{} // Compile-time check

// NewJSONReader loads a snapshot file.
func NewJSONReader(path string) (*JSONReader, error) {
	if path == "" {
		return nil, fmt.Errorf("source-connect must point to a snapshot file when using json source")
	}
	snap, err := LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return NewSnapshotReader(snap), nil
}

// LoadSnapshot reads and parses a snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// NewSnapshotReader serves an in-memory snapshot.
func NewSnapshotReader(snap Snapshot) *JSONReader {
	return &JSONReader{snapshot: snap}
}

// ListEligibleSales implements contract.SalesReader.
func (r *JSONReader) ListEligibleSales(ctx context.Context, window schema.Window, statuses []schema.SaleStatus) ([]schema.SaleEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var events []schema.SaleEvent
	for _, sale := range r.snapshot.Sales {
		if !window.Contains(sale.CreatedAt) || !statusAllowed(sale.Status, statuses) {
			continue
		}
		for _, item := range sale.Items {
			events = append(events, schema.SaleEvent{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Timestamp: sale.CreatedAt,
				Status:    schema.SaleStatus(sale.Status),
			})
		}
	}
	return events, nil
}

// ListProducts implements contract.SalesReader.
func (r *JSONReader) ListProducts(ctx context.Context) ([]schema.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products := make([]schema.Product, 0, len(r.snapshot.Products))
	for _, p := range r.snapshot.Products {
		products = append(products, schema.Product{ID: p.ID, Name: p.Name, CurrentStock: max(0, p.Quantity)})
	}
	return products, nil
}

// Close implements contract.SalesReader.
func (r *JSONReader) Close() error {
	return nil
}
