//go:build database

package integration

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts a container and returns host:port for the exposed port.
func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// forecastTwice seeds the source, runs the forecast twice and checks the
// report cache and run history through their status commands.
func forecastTwice(t *testing.T, env map[string]string) {
	t.Helper()
	dir := t.TempDir()
	snapshot := writeSnapshot(t, dir)

	_, err := runStockcastCommand(t, env, "source", "seed", "--file", snapshot)
	require.NoError(t, err)

	outFile := filepath.Join(dir, "forecast.json")
	for range 2 {
		_, err = runStockcastCommand(t, env, "forecast", "--as-of", "2024-03-30", "--output", "json", "--output-file", outFile)
		require.NoError(t, err)
		forecast := readForecast(t, outFile)
		require.Len(t, forecast.Results, 3)
		assert.Equal(t, "p1", forecast.Results[0].ProductID)
	}

	out, err := runStockcastCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")

	if env["STOCKCAST_HISTORY_BACKEND"] != "" {
		out, err = runStockcastCommand(t, env, "history", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Total Runs: 1")

		_, err = runStockcastCommand(t, env, "history", "clear")
		require.NoError(t, err)
	}

	_, err = runStockcastCommand(t, env, "cache", "clear")
	require.NoError(t, err)
}

// TestStockcastWithMySQL uses MySQL as the sales source, report cache and run history.
func TestStockcastWithMySQL(t *testing.T) {
	ctx := context.Background()
	addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "stockcast",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s)/stockcast?parseTime=true", addr)
	forecastTwice(t, map[string]string{
		"STOCKCAST_SOURCE_BACKEND":     "mysql",
		"STOCKCAST_SOURCE_CONNECT":     connStr,
		"STOCKCAST_CACHE_BACKEND":      "mysql",
		"STOCKCAST_CACHE_DB_CONNECT":   connStr,
		"STOCKCAST_HISTORY_BACKEND":    "mysql",
		"STOCKCAST_HISTORY_DB_CONNECT": connStr,
	})
}

// TestStockcastWithPostgres uses PostgreSQL as the sales source, report cache and run history.
func TestStockcastWithPostgres(t *testing.T) {
	ctx := context.Background()
	addr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432")

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port)
	forecastTwice(t, map[string]string{
		"STOCKCAST_SOURCE_BACKEND":     "postgresql",
		"STOCKCAST_SOURCE_CONNECT":     connStr,
		"STOCKCAST_CACHE_BACKEND":      "postgresql",
		"STOCKCAST_CACHE_DB_CONNECT":   connStr,
		"STOCKCAST_HISTORY_BACKEND":    "postgresql",
		"STOCKCAST_HISTORY_DB_CONNECT": connStr,
	})
}

// TestStockcastWithMongoAndRedis reads sales from MongoDB and caches reports in Redis.
func TestStockcastWithMongoAndRedis(t *testing.T) {
	ctx := context.Background()
	mongoAddr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
	}, "27017")
	redisAddr := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	forecastTwice(t, map[string]string{
		"STOCKCAST_SOURCE_BACKEND":   "mongodb",
		"STOCKCAST_SOURCE_CONNECT":   "mongodb://" + mongoAddr,
		"STOCKCAST_SOURCE_DATABASE":  "stockcast_it",
		"STOCKCAST_CACHE_BACKEND":    "redis",
		"STOCKCAST_CACHE_DB_CONNECT": "redis://" + redisAddr + "/0",
	})
}
