package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// CacheTTL is how long cached read models live
const CacheTTL = 60 * time.Second

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client behaves like an empty cache.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DashboardCacheKey is the cache key of a user's dashboard stats
func DashboardCacheKey(userID uint) string {
	return "dashboard:user:" + strconv.FormatUint(uint64(userID), 10)
}

// PropertiesCacheKey is the cache key of a user's property list
func PropertiesCacheKey(userID uint) string {
	return "properties:user:" + strconv.FormatUint(uint64(userID), 10)
}

// InvalidateOwner drops every cached read model derived from an owner's data
func InvalidateOwner(ctx context.Context, rdb *redis.Client, userID uint) error {
	return DeleteCache(ctx, rdb, DashboardCacheKey(userID), PropertiesCacheKey(userID))
}
