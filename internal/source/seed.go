package source

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// Seeder loads a snapshot into a writable source. It backs the seed command and
// the integration tests.
type Seeder interface {
	Seed(ctx context.Context, snap Snapshot) error
}

var (
	_ SeedTarget = &SQLReader{}
	_ SeedTarget = &MongoReader{}
)

// SeedTarget is a source that can also be written to.
type SeedTarget interface {
	contract.SalesReader
	Seeder
}

// NewSeedTarget opens the writable source selected by the configuration.
// JSON snapshots are read-only.
func NewSeedTarget(ctx context.Context, cfg *contract.Config) (SeedTarget, error) {
	switch cfg.SourceBackend {
	case schema.MongoSource:
		uri := cfg.SourceConnect
		if uri == "" {
			uri = DefaultMongoURI
		}
		return NewMongoReader(ctx, uri, cfg.SourceDatabase)
	case schema.SQLiteSource, schema.MySQLSource, schema.PostgreSQLSource:
		return NewSQLReader(ctx, cfg.SourceBackend, cfg.SourceConnect)
	default:
		return nil, fmt.Errorf("source backend %s cannot be seeded. Must be mongodb, sqlite, mysql, or postgresql", cfg.SourceBackend)
	}
}

// createTableQueries returns the DDL of the point-of-sale schema for a backend.
func (r *SQLReader) createTableQueries() []string {
	timestampType := "TIMESTAMP"
	switch r.backend {
	case schema.SQLiteSource:
		timestampType = "TEXT"
	case schema.MySQLSource:
		timestampType = "DATETIME(6)"
	}
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 0
		)`, ProductsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			status VARCHAR(32) NOT NULL,
			created_at %s NOT NULL
		)`, SalesTable, timestampType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sale_id VARCHAR(64) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			qty INTEGER NOT NULL
		)`, SaleItemsTable),
	}
}

// Seed creates the point-of-sale tables when missing and inserts the snapshot
// in a single transaction.
func (r *SQLReader) Seed(ctx context.Context, snap Snapshot) error {
	for _, q := range r.createTableQueries() {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create source schema: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p1, p2, p3 := r.placeholder(1), r.placeholder(2), r.placeholder(3)
	insertProduct := fmt.Sprintf("INSERT INTO %s (id, name, quantity) VALUES (%s, %s, %s)", ProductsTable, p1, p2, p3)
	insertSale := fmt.Sprintf("INSERT INTO %s (id, status, created_at) VALUES (%s, %s, %s)", SalesTable, p1, p2, p3)
	insertItem := fmt.Sprintf("INSERT INTO %s (sale_id, product_id, qty) VALUES (%s, %s, %s)", SaleItemsTable, p1, p2, p3)

	for _, p := range snap.Products {
		if _, err := tx.ExecContext(ctx, insertProduct, p.ID, p.Name, p.Quantity); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
	}
	for _, s := range snap.Sales {
		if _, err := tx.ExecContext(ctx, insertSale, s.ID, s.Status, r.timeArg(s.CreatedAt)); err != nil {
			return fmt.Errorf("failed to insert sale %s: %w", s.ID, err)
		}
		for _, item := range s.Items {
			if _, err := tx.ExecContext(ctx, insertItem, s.ID, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to insert item of sale %s: %w", s.ID, err)
			}
		}
	}

	return tx.Commit()
}

// Seed inserts the snapshot into the Inventory collection and routes each sale
// to Orders when completed and to Sales otherwise.
func (r *MongoReader) Seed(ctx context.Context, snap Snapshot) error {
	if len(snap.Products) > 0 {
		docs := make([]any, 0, len(snap.Products))
		for _, p := range snap.Products {
			docs = append(docs, bson.M{"_id": p.ID, "name": p.Name, "quantity": p.Quantity})
		}
		if _, err := r.db.Collection(InventoryCollection).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("failed to seed %s: %w", InventoryCollection, err)
		}
	}

	byCollection := make(map[string][]any)
	for _, s := range snap.Sales {
		items := make(bson.A, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, bson.M{"productId": item.ProductID, "qty": item.Quantity})
		}
		name := SalesCollection
		if s.Status == string(schema.CompletedSale) {
			name = OrdersCollection
		}
		byCollection[name] = append(byCollection[name], bson.M{
			"_id":       s.ID,
			"status":    s.Status,
			"createdAt": s.CreatedAt,
			"items":     items,
		})
	}
	for name, docs := range byCollection {
		if _, err := r.db.Collection(name).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("failed to seed %s: %w", name, err)
		}
	}
	return nil
}
