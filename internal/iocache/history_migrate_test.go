package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/huangsam/stockcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, dbPath, table string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrateHistoryNoneBackend(t *testing.T) {
	err := MigrateHistory(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateHistorySQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	// Latest version creates both tables
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	assert.True(t, tableExists(t, dbPath, forecastRunsTable))
	assert.True(t, tableExists(t, dbPath, productForecastsTable))

	// Running again is a no-op
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))

	// Step back to version 1 drops the product table only
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 1))
	assert.True(t, tableExists(t, dbPath, forecastRunsTable))
	assert.False(t, tableExists(t, dbPath, productForecastsTable))

	// Roll back everything
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))
	assert.False(t, tableExists(t, dbPath, forecastRunsTable))

	// And up again
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 2))
	assert.True(t, tableExists(t, dbPath, productForecastsTable))
}

func TestMigratedSchemaMatchesStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shared.db")
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))

	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.RecordResult("run", sampleResults()[0]))
	products, err := store.GetAllProductForecasts()
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, backend)
	}
}
