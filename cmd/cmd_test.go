package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/huangsam/stockcast/schema"
)

func TestStoreBackend(t *testing.T) {
	assert.Equal(t, schema.DatabaseBackend(""), storeBackend(schema.NoneBackend))
	assert.Equal(t, schema.SQLiteBackend, storeBackend(schema.SQLiteBackend))
	assert.Equal(t, schema.RedisBackend, storeBackend(schema.RedisBackend))
}

func TestResolveBackend(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("cache-backend", "")
	assert.Equal(t, schema.NoneBackend, resolveBackend("cache-backend"))

	viper.Set("cache-backend", "SQLite")
	assert.Equal(t, schema.SQLiteBackend, resolveBackend("cache-backend"))
}

func TestSQLiteFilePath(t *testing.T) {
	assert.Equal(t, "/tmp/cache.db", sqliteFilePath("/tmp/cache.db", "/home/me/.stockcast_cache.db"))
	assert.Equal(t, "/home/me/.stockcast_cache.db", sqliteFilePath("", "/home/me/.stockcast_cache.db"))
}

func TestSeedSourceRequiresFile(t *testing.T) {
	err := seedSource("")
	assert.ErrorContains(t, err, "--file is required")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"forecast", "product", "model", "serve", "mcp", "version", "cache", "history", "source"} {
		assert.True(t, names[name], name)
	}
}

func TestStrategyList(t *testing.T) {
	assert.Equal(t, "blended, regression", strategyList())
}
