package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/cache"
)

func TestKeyIgnoresFieldOrder(t *testing.T) {
	a := map[string]any{"from": "ASD", "to": "UT", "intent": map[string]any{"hard": map[string]any{"directOnly": true}}}
	b := map[string]any{"intent": map[string]any{"hard": map[string]any{"directOnly": true}}, "to": "UT", "from": "ASD"}

	ka, err := cache.Key("trips.search", a)
	require.NoError(t, err)
	kb, err := cache.Key("trips.search", b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestKeyDropsNilMembers(t *testing.T) {
	ka, err := cache.Key("trips.search", map[string]any{"from": "ASD", "via": nil})
	require.NoError(t, err)
	kb, err := cache.Key("trips.search", map[string]any{"from": "ASD"})
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestKeyDistinguishesActions(t *testing.T) {
	ka, err := cache.Key("departures.list", map[string]any{"station": "ASD"})
	require.NoError(t, err)
	kb, err := cache.Key("arrivals.list", map[string]any{"station": "ASD"})
	require.NoError(t, err)
	assert.NotEqual(t, ka, kb)
}

func TestKeyNestedSorting(t *testing.T) {
	key, err := cache.Key("x", map[string]any{
		"b": map[string]any{"z": 1, "a": 2},
		"a": []any{"one", "two"},
	})
	require.NoError(t, err)
	assert.Equal(t, `x:{"a":["one","two"],"b":{"a":2,"z":1}}`, key)
}

func TestMemoryStoreTTL(t *testing.T) {
	store := cache.NewMemoryStore()
	current := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return current })

	store.Set("k", []byte("value"), 5*time.Second)

	current = current.Add(3 * time.Second)
	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	current = current.Add(3 * time.Second) // 6s total
	_, ok = store.Get("k")
	assert.False(t, ok)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := cache.NewMemoryStore()
	value := []byte("abc")
	store.Set("k", value, time.Minute)
	value[0] = 'x'

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStoreIgnoresNonPositiveTTL(t *testing.T) {
	store := cache.NewMemoryStore()
	store.Set("k", []byte("v"), 0)
	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestClampTTL(t *testing.T) {
	ceiling := 5 * time.Minute

	// No hints: ceiling applies.
	assert.Equal(t, ceiling, cache.ClampTTL(nil, ceiling))
	assert.Equal(t, ceiling, cache.ClampTTL([]int{0, -3}, ceiling))

	// Minimum positive hint wins.
	assert.Equal(t, 20*time.Second, cache.ClampTTL([]int{60, 20, 0}, ceiling))

	// Clamped to the ceiling.
	assert.Equal(t, ceiling, cache.ClampTTL([]int{3600}, ceiling))
}
