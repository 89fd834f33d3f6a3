package resolvecache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stopIdentity struct {
	ID       string
	Identity int64
	Name     string
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory("run-1")

	_, hit := Get[stopIdentity](ctx, cache, KindRoute, "12345")
	assert.False(t, hit)

	require.NoError(t, Set(ctx, cache, KindRoute, "12345", &stopIdentity{ID: "12345", Identity: 1012345, Name: "Waterfront"}))

	value, hit := Get[stopIdentity](ctx, cache, KindRoute, "12345")
	require.True(t, hit)
	assert.Equal(t, stopIdentity{ID: "12345", Identity: 1012345, Name: "Waterfront"}, *value)

	_, hit = Get[stopIdentity](ctx, cache, KindHeadsign, "12345")
	assert.False(t, hit)

	assert.Equal(t, int64(1), cache.Hits())
	assert.Equal(t, int64(2), cache.Misses())
}

func TestHeadsignValues(t *testing.T) {
	ctx := context.Background()
	cache := NewMemory("run-1")

	cleaned := "Waterfront"
	require.NoError(t, Set(ctx, cache, KindHeadsign, `"Skytrain to Waterfront Station"`, &cleaned))

	value, hit := Get[string](ctx, cache, KindHeadsign, `"Skytrain to Waterfront Station"`)
	require.True(t, hit)
	assert.Equal(t, "Waterfront", *value)

	empty := ""
	require.NoError(t, Set(ctx, cache, KindHeadsign, "", &empty))

	value, hit = Get[string](ctx, cache, KindHeadsign, "")
	require.True(t, hit)
	assert.Equal(t, "", *value)
}

func TestKeysAreNamespacedByRun(t *testing.T) {
	first := NewMemory("run-1")
	second := NewMemory("run-2")

	assert.Equal(t, "translink-train:run-1:route:6611", first.key(KindRoute, "6611"))
	assert.NotEqual(t, first.key(KindRoute, "6611"), second.key(KindRoute, "6611"))
}
