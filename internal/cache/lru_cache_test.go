package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func TestLRUCacheSetGet(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)
	ctx := context.Background()

	tags := []cachedTag{{ID: 1, Name: "Завтрак", Slug: "breakfast"}, {ID: 2, Name: "Обед", Slug: "lunch"}}
	require.NoError(t, c.Set(ctx, KeyTags, tags, time.Hour))

	var got []cachedTag
	found, err := c.Get(ctx, KeyTags, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, tags, got)
}

func TestLRUCacheMiss(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)

	var got []cachedTag
	found, err := c.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestLRUCacheExpiry(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, TokenBlacklistKey("jti-1"), true, time.Minute))
	require.NoError(t, c.Set(ctx, "forever", true, 0))

	var flag bool
	found, err := c.Get(ctx, TokenBlacklistKey("jti-1"), &flag)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)

	found, err = c.Get(ctx, TokenBlacklistKey("jti-1"), &flag)
	require.NoError(t, err)
	assert.False(t, found, "expired entry must not be returned")

	found, err = c.Get(ctx, "forever", &flag)
	require.NoError(t, err)
	assert.True(t, found, "entry without ttl never expires")
}

func TestLRUCacheDelete(t *testing.T) {
	c, err := NewLRUCache(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KeyTags, []int{1}, 0))
	require.NoError(t, c.Set(ctx, KeyIngredients, []int{2}, 0))
	require.NoError(t, c.Delete(ctx, KeyTags, KeyIngredients))

	var got []int
	found, err := c.Get(ctx, KeyTags, &got)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = c.Get(ctx, KeyIngredients, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c, err := NewLRUCache(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	require.NoError(t, c.Set(ctx, "c", 3, 0))

	var v int
	found, _ := c.Get(ctx, "a", &v)
	assert.False(t, found)
	found, _ = c.Get(ctx, "c", &v)
	assert.True(t, found)
	assert.Equal(t, 3, v)
}

func TestNewLRUCacheRejectsBadSize(t *testing.T) {
	_, err := NewLRUCache(0)
	assert.Error(t, err)
}

func TestLRUCacheKeepsBlacklistUnderChurn(t *testing.T) {
	c, err := NewLRUCache(4)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, TokenBlacklistKey("victim"), true, time.Hour))
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("catalog:%d", i), i, time.Hour))
		require.NoError(t, c.Set(ctx, TokenBlacklistKey(fmt.Sprintf("other-%d", i)), true, time.Hour))
	}

	var revoked bool
	found, err := c.Get(ctx, TokenBlacklistKey("victim"), &revoked)
	require.NoError(t, err)
	assert.True(t, found, "blacklist entry must survive eviction pressure")
	assert.True(t, revoked)
}

func TestLRUCacheSweepsExpiredBlacklist(t *testing.T) {
	c, err := NewLRUCache(4)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Set(ctx, TokenBlacklistKey(fmt.Sprintf("old-%d", i)), true, time.Minute))
	}
	now = now.Add(2 * pinnedSweepInterval)
	require.NoError(t, c.Set(ctx, TokenBlacklistKey("fresh"), true, time.Hour))

	c.mu.Lock()
	remaining := len(c.pinned)
	c.mu.Unlock()
	assert.Equal(t, 1, remaining)

	require.NoError(t, c.Delete(ctx, TokenBlacklistKey("fresh")))
	var revoked bool
	found, err := c.Get(ctx, TokenBlacklistKey("fresh"), &revoked)
	require.NoError(t, err)
	assert.False(t, found)
}
