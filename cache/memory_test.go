package cache

import (
	"context"
	"testing"
	"time"

	"github.com/roamio/discovery-api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(provider, id string) types.NormalizedRecord {
	return types.NormalizedRecord{Provider: provider, ProviderPlaceID: id, Name: id}
}

func TestMemoryStoreMissReturnsNil(t *testing.T) {
	store := NewMemoryStore()

	entry, err := store.Get(context.Background(), "tile:0.00:0.00:0.02:0.02")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, "k", "google", []types.NormalizedRecord{record("google", "g1")}, now))
	require.NoError(t, store.Put(ctx, "k", "osm", []types.NormalizedRecord{record("osm", "o1"), record("osm", "o2")}, now))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Len(t, entry.Records["google"], 1)
	assert.Len(t, entry.Records["osm"], 2)
}

func TestFreshnessIsPerProvider(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, "k", "google", []types.NormalizedRecord{record("google", "g1")}, now.Add(-2*time.Hour)))
	require.NoError(t, store.Put(ctx, "k", "osm", []types.NormalizedRecord{record("osm", "o1")}, now.Add(-10*time.Minute)))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)

	// Google's hour-scale TTL has lapsed; OSM's has not. One stale provider
	// must not drag the other down.
	assert.False(t, entry.Fresh("google", time.Hour, now))
	assert.True(t, entry.Fresh("osm", time.Hour, now))
	assert.False(t, entry.Fresh("foursquare", time.Hour, now), "never-fetched provider is stale")
}

func TestPutReplacesProviderSlice(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "google", []types.NormalizedRecord{record("google", "g1"), record("google", "g2")}, time.Now().Add(-time.Hour)))
	require.NoError(t, store.Put(ctx, "k", "google", []types.NormalizedRecord{record("google", "g3")}, time.Now()))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, entry.Records["google"], 1)
	assert.Equal(t, "g3", entry.Records["google"][0].ProviderPlaceID)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "google", []types.NormalizedRecord{record("google", "g1")}, time.Now()))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)
	entry.Records["google"][0].Name = "mutated"

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "g1", again.Records["google"][0].Name)
}
