package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
)

// Table names of the relational point-of-sale schema.
const (
	SalesTable     = "sales"
	SaleItemsTable = "sale_items"
	ProductsTable  = "products"
)

// SQLReader reads sales and inventory from a relational point-of-sale schema:
// sales(id, status, created_at), sale_items(sale_id, product_id, qty) and
// products(id, name, quantity).
type SQLReader struct {
	db      *sql.DB
	backend schema.SourceBackend
}

var _ contract.SalesReader = &SQLReader{} // Compile-time check

// NewSQLReader opens and pings the database behind the given backend.
func NewSQLReader(ctx context.Context, backend schema.SourceBackend, connStr string) (*SQLReader, error) {
	if connStr == "" {
		return nil, fmt.Errorf("source-connect is required when using %s source", backend)
	}

	var driverName string
	switch backend {
	case schema.SQLiteSource:
		driverName = "sqlite"
	case schema.MySQLSource:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
	case schema.PostgreSQLSource:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported SQL source: %s", backend)
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", backend, err)
	}
	if backend == schema.SQLiteSource {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s source. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return &SQLReader{db: db, backend: backend}, nil
}

// NewSQLReaderFromDB wraps an existing handle, mainly for tests and seeding.
func NewSQLReaderFromDB(db *sql.DB, backend schema.SourceBackend) *SQLReader {
	return &SQLReader{db: db, backend: backend}
}

// placeholder returns the bind parameter syntax for the nth argument (1-based).
func (r *SQLReader) placeholder(n int) string {
	if r.backend == schema.PostgreSQLSource {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// timeArg converts a window boundary into a bind argument the backend can compare.
func (r *SQLReader) timeArg(t time.Time) any {
	if r.backend == schema.SQLiteSource {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

// salesQuery builds the line-item query for a window and a set of statuses.
func (r *SQLReader) salesQuery(statusCount int) string {
	createdAt := "s.created_at"
	lower, upper := r.placeholder(1), r.placeholder(2)
	if r.backend == schema.SQLiteSource {
		// julianday parses every ISO-8601 variant, so offsets and precision do not matter
		createdAt = "julianday(s.created_at)"
		lower, upper = "julianday("+lower+")", "julianday("+upper+")"
	}

	marks := make([]string, statusCount)
	for i := range marks {
		marks[i] = r.placeholder(i + 3)
	}

	return fmt.Sprintf(`
		SELECT si.product_id, si.qty, s.created_at, s.status
		FROM %s s
		JOIN %s si ON si.sale_id = s.id
		WHERE %s >= %s AND %s < %s AND s.status IN (%s)
	`, SalesTable, SaleItemsTable, createdAt, lower, createdAt, upper, strings.Join(marks, ", "))
}

// ListEligibleSales implements contract.SalesReader.
func (r *SQLReader) ListEligibleSales(ctx context.Context, window schema.Window, statuses []schema.SaleStatus) ([]schema.SaleEvent, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	args := []any{r.timeArg(window.Start), r.timeArg(window.End)}
	for _, s := range statuses {
		args = append(args, string(s))
	}

	rows, err := r.db.QueryContext(ctx, r.salesQuery(len(statuses)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []schema.SaleEvent
	for rows.Next() {
		var (
			productID string
			qty       float64
			createdAt any
			status    string
		)
		if err := rows.Scan(&productID, &qty, &createdAt, &status); err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		ts, err := parseTimeValue(createdAt)
		if err != nil {
			return nil, err
		}
		events = append(events, schema.SaleEvent{
			ProductID: productID,
			Quantity:  quantityOf(qty),
			Timestamp: ts,
			Status:    schema.SaleStatus(status),
		})
	}
	return events, rows.Err()
}

// ListProducts implements contract.SalesReader.
func (r *SQLReader) ListProducts(ctx context.Context) ([]schema.Product, error) {
	query := fmt.Sprintf("SELECT id, name, quantity FROM %s ORDER BY id", ProductsTable)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []schema.Product
	for rows.Next() {
		var (
			p     schema.Product
			name  sql.NullString
			stock sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &name, &stock); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		p.Name = name.String
		p.CurrentStock = stockLevel(stock.Float64)
		products = append(products, p)
	}
	return products, rows.Err()
}

// Close implements contract.SalesReader.
func (r *SQLReader) Close() error {
	return r.db.Close()
}

// timeLayouts are the textual timestamp formats drivers hand back.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	schema.DayLabelLayout,
}

// parseTimeValue normalizes a scanned timestamp column.
func parseTimeValue(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	case int64:
		return time.Unix(t, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp value %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
