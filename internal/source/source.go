// Package source reads sales history and inventory from the system of record.
package source

import (
	"context"
	"fmt"
	"math"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// DefaultMongoURI is used when no MongoDB connection string is configured.
const DefaultMongoURI = "mongodb://localhost:27017"

// NewReader opens the sales reader selected by the configuration.
func NewReader(ctx context.Context, cfg *contract.Config) (contract.SalesReader, error) {
	switch cfg.SourceBackend {
	case schema.MongoSource:
		uri := cfg.SourceConnect
		if uri == "" {
			uri = DefaultMongoURI
		}
		return NewMongoReader(ctx, uri, cfg.SourceDatabase)
	case schema.SQLiteSource, schema.MySQLSource, schema.PostgreSQLSource:
		return NewSQLReader(ctx, cfg.SourceBackend, cfg.SourceConnect)
	case schema.JSONSource, "":
		return NewJSONReader(cfg.SourceConnect)
	default:
		return nil, fmt.Errorf("unsupported source backend: %s. Must be mongodb, sqlite, mysql, postgresql, or json", cfg.SourceBackend)
	}
}

// quantityOf rounds a stored quantity to whole units.
func quantityOf(q float64) int {
	return int(math.Round(q))
}

// stockLevel rounds a stored stock level and clamps it at 0.
func stockLevel(q float64) int {
	return max(0, quantityOf(q))
}

// statusAllowed reports whether status is one of the eligible statuses.
func statusAllowed(status string, statuses []schema.SaleStatus) bool {
	for _, s := range statuses {
		if string(s) == status {
			return true
		}
	}
	return false
}
