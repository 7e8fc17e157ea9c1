package cache

import (
	"context"
	"time"
)

// Keys shared by the catalog and auth layers.
const (
	KeyTags        = "catalog:tags"
	KeyIngredients = "catalog:ingredients"

	tokenBlacklistPrefix = "auth:blacklist:"
)

// TokenBlacklistKey returns the cache key marking a token id as logged out.
func TokenBlacklistKey(tokenID string) string {
	return tokenBlacklistPrefix + tokenID
}

// Cache stores JSON-encoded values with a time to live.
type Cache interface {
	// Get decodes the value stored under key into dest. found is false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)
	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
