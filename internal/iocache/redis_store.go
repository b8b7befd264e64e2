package iocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/stockcast/internal/contract"
	"github.com/huangsam/stockcast/schema"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces report entries inside a shared Redis database.
const redisKeyPrefix = "stockcast:report:"

// redisOpTimeout bounds every Redis round trip.
const redisOpTimeout = 5 * time.Second

// RedisCache keeps rendered reports in Redis hashes that expire after the cache TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ contract.ReportCache = &RedisCache{} // Compile-time check

// newRedisClient accepts either a redis:// URL or a bare host:port address.
func newRedisClient(connStr string) (*redis.Client, error) {
	if strings.HasPrefix(connStr, "redis://") || strings.HasPrefix(connStr, "rediss://") {
		opts, err := redis.ParseURL(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: connStr}), nil
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(connStr string, ttl time.Duration) (*RedisCache, error) {
	client, err := newRedisClient(connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = contract.DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Get retrieves a value by key. A missing key returns redis.Nil.
func (rc *RedisCache) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := rc.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get report from redis: %w", err)
	}
	if len(fields) == 0 {
		return nil, 0, 0, redis.Nil
	}

	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version: %w", err)
	}
	ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp: %w", err)
	}
	return []byte(fields["value"]), version, ts, nil
}

// Set stores a value and refreshes its expiry.
func (rc *RedisCache) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	k := redisKey(key)
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, "value", value, "version", version, "timestamp", timestamp)
		pipe.Expire(ctx, k, rc.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set report in redis: %w", err)
	}
	return nil
}

// GetStatus returns status information about the cached reports.
func (rc *RedisCache) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: rc.client != nil}
	if rc.client == nil {
		return status, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := scanReportKeys(ctx, rc.client)
	if err != nil {
		return status, err
	}
	status.TotalEntries = len(keys)

	var newest, oldest int64
	for _, k := range keys {
		raw, err := rc.client.HGet(ctx, k, "timestamp").Result()
		if errors.Is(err, redis.Nil) {
			continue // expired between SCAN and HGET
		}
		if err != nil {
			return status, fmt.Errorf("failed to read entry time: %w", err)
		}
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if newest == 0 || ts > newest {
			newest = ts
		}
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		if size, err := rc.client.MemoryUsage(ctx, k).Result(); err == nil {
			status.TableSizeBytes += size
		}
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(newest, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close closes the Redis client.
func (rc *RedisCache) Close() error {
	if rc.client != nil {
		return rc.client.Close()
	}
	return nil
}

// scanReportKeys lists every report key without blocking the server.
func scanReportKeys(ctx context.Context, client *redis.Client) ([]string, error) {
	var keys []string
	iter := client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan report keys: %w", err)
	}
	return keys, nil
}

// clearRedis deletes every report key.
func clearRedis(connStr string) error {
	client, err := newRedisClient(connStr)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := scanReportKeys(ctx, client)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete report keys: %w", err)
	}
	return nil
}
