package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/internal/iocache"
	"github.com/huangsam/stockcast/schema"
)

// resolveBackend reads a backend flag, treating an empty value as NoneBackend.
func resolveBackend(key string) schema.DatabaseBackend {
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString(key)))
	if backend == "" {
		return schema.NoneBackend
	}
	return backend
}

// sqliteFilePath returns the SQLite file behind connStr, or fallback when it is empty.
func sqliteFilePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := resolveBackend("cache-backend")
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, viper.GetDuration("cache-ttl"), "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on report cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by forecast commands. This avoids source validation
// and complex config processing for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the forecast report cache",
	Long: `Manage the cache of ranked forecast reports.

Stockcast stores each ranked report under a key built from the source, the
period, the strategy, the risk settings and the as-of hour. Repeated runs within
the same hour are served without reading the sales source.

Supported backends: SQLite, MySQL, PostgreSQL, Redis, or None (default)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached reports

Examples:
  # Check cache status
  stockcast cache status --cache-backend sqlite

  # Clear the Redis cache
  stockcast cache clear --cache-backend redis --cache-db-connect redis://localhost:6379/0`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached forecast reports",
	Long: `Delete all cached forecast reports from the configured backend.

Use this after correcting sales data or inventory counts within the current hour.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes the report keys

Examples:
  # Clear SQLite cache
  stockcast cache clear --cache-backend sqlite

  # Clear MySQL cache (set connection string via env variable)
  STOCKCAST_CACHE_BACKEND=mysql STOCKCAST_CACHE_DB_CONNECT="..." stockcast cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the open handle before the file or table goes away
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, sqliteFilePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the forecast report cache.

Displays:
- Backend type and connection status
- Total number of cached reports
- Last and oldest cache entry timestamps
- Cache size

Examples:
  # Check cache status
  stockcast cache status --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cache := iocache.Manager.GetReportCache()
		if cache == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("report cache is not configured"))
		}
		status, err := cache.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
