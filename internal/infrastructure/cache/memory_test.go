package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Slug    string `json:"slug"`
	Message string `json:"message"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(8)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "surprise:abc", payload{Slug: "abc", Message: "hi"}, time.Hour))

	var got payload
	require.NoError(t, c.Get(ctx, "surprise:abc", &got))
	assert.Equal(t, payload{Slug: "abc", Message: "hi"}, got)

	assert.ErrorIs(t, c.Get(ctx, "surprise:missing", &got), ErrCacheMiss)
	assert.NoError(t, c.Ping(ctx))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(8)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", payload{Slug: "k"}, time.Minute))

	now = now.Add(2 * time.Minute)
	var got payload
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", payload{Slug: "a"}, 0))
	require.NoError(t, c.Set(ctx, "b", payload{Slug: "b"}, 0))

	var got payload
	require.NoError(t, c.Get(ctx, "a", &got))
	require.NoError(t, c.Set(ctx, "c", payload{Slug: "c"}, 0))

	assert.ErrorIs(t, c.Get(ctx, "b", &got), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "a", &got))
	assert.NoError(t, c.Get(ctx, "c", &got))
}

func TestNewMemoryCache_InvalidSize(t *testing.T) {
	_, err := NewMemoryCache(0)
	assert.Error(t, err)
}
