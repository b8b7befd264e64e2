package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// Collection names of the point-of-sale database.
const (
	SalesCollection     = "Sales"
	OrdersCollection    = "Orders"
	InventoryCollection = "Inventory"
)

// connectTimeout bounds the initial connect and ping.
const connectTimeout = 10 * time.Second

// MongoReader reads sales from the Sales and Orders collections and stock from Inventory.
type MongoReader struct {
	client      *mongo.Client
	db          *mongo.Database
	collections []string
}

var _ contract.SalesReader = &MongoReader{} // Compile-time check

// saleLineDoc is one unwound sale item as projected by salesPipeline.
type saleLineDoc struct {
	ProductID string    `bson:"productId"`
	Quantity  float64   `bson:"qty"`
	CreatedAt time.Time `bson:"createdAt"`
	Status    string    `bson:"status"`
}

// inventoryDoc is one inventory item as projected by inventoryPipeline.
type inventoryDoc struct {
	ID       string  `bson:"_id"`
	Name     string  `bson:"name"`
	Quantity float64 `bson:"quantity"`
}

// NewMongoReader connects to MongoDB and verifies the connection.
func NewMongoReader(ctx context.Context, uri, database string) (*MongoReader, error) {
	if database == "" {
		database = contract.DefaultMongoDB
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB. Check that the server is running and the URI is valid: %w", err)
	}

	return &MongoReader{
		client:      client,
		db:          client.Database(database),
		collections: []string{SalesCollection, OrdersCollection},
	}, nil
}

// salesPipeline matches eligible sales in the window and emits one document per line item.
// Product IDs are normalized to strings so ObjectIDs and plain IDs compare equal.
func salesPipeline(window schema.Window, statuses []schema.SaleStatus) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": window.Start, "$lt": window.End},
			"status":    bson.M{"$in": schema.StatusStrings(statuses)},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$project", Value: bson.M{
			"_id":       0,
			"createdAt": 1,
			"status":    1,
			"productId": bson.M{"$toString": bson.M{"$ifNull": bson.A{"$items.productId", "$items._id"}}},
			"qty":       bson.M{"$toDouble": bson.M{"$ifNull": bson.A{"$items.qty", 0}}},
		}}},
	}
}

// inventoryPipeline projects every inventory item with a string ID and numeric stock.
func inventoryPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"_id":      bson.M{"$toString": "$_id"},
			"name":     1,
			"quantity": bson.M{"$toDouble": bson.M{"$ifNull": bson.A{"$quantity", 0}}},
		}}},
	}
}

// ListEligibleSales implements contract.SalesReader.
func (r *MongoReader) ListEligibleSales(ctx context.Context, window schema.Window, statuses []schema.SaleStatus) ([]schema.SaleEvent, error) {
	var events []schema.SaleEvent
	for _, name := range r.collections {
		cursor, err := r.db.Collection(name).Aggregate(ctx, salesPipeline(window, statuses))
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %s: %w", name, err)
		}
		var docs []saleLineDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		for _, d := range docs {
			events = append(events, schema.SaleEvent{
				ProductID: d.ProductID,
				Quantity:  quantityOf(d.Quantity),
				Timestamp: d.CreatedAt,
				Status:    schema.SaleStatus(d.Status),
			})
		}
	}
	return events, nil
}

// ListProducts implements contract.SalesReader.
func (r *MongoReader) ListProducts(ctx context.Context) ([]schema.Product, error) {
	cursor, err := r.db.Collection(InventoryCollection).Aggregate(ctx, inventoryPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", InventoryCollection, err)
	}
	var docs []inventoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", InventoryCollection, err)
	}
	products := make([]schema.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, schema.Product{
			ID:           d.ID,
			Name:         d.Name,
			CurrentStock: stockLevel(d.Quantity),
		})
	}
	return products, nil
}

// Database returns the underlying database handle.
func (r *MongoReader) Database() *mongo.Database {
	return r.db
}

// Close implements contract.SalesReader.
func (r *MongoReader) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}
