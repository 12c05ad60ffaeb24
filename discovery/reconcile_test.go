package discovery

import (
	"testing"

	"github.com/roamio/discovery-api/providers"
	"github.com/roamio/discovery-api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(provider, id, name string, lat, lng float64) types.NormalizedRecord {
	return types.NormalizedRecord{
		Provider:        provider,
		ProviderPlaceID: id,
		Name:            name,
		Latitude:        lat,
		Longitude:       lng,
	}
}

func TestMergeDedupsAcrossProviders(t *testing.T) {
	r := NewReconciler(75)

	// ~20m apart, same name modulo punctuation.
	google := rec(providers.Google, "g1", "Joe's Coffee", 40.7000, -74.0000)
	google.Address = "12 Main St"
	osm := rec(providers.OSM, "o1", "Joes Coffee", 40.70018, -74.0000)
	osm.Description = "Neighborhood espresso bar"
	osm.Categories = []string{"cafe"}

	out := r.Merge(map[string][]types.NormalizedRecord{
		providers.Google: {google},
		providers.OSM:    {osm},
	})

	require.Len(t, out, 1)
	c := out[0]
	assert.Equal(t, providers.Google, c.PrimarySource, "higher-priority provider wins the primary slot")
	assert.Equal(t, "Joe's Coffee", c.Name)
	assert.Equal(t, "12 Main St", c.Address)
	assert.Equal(t, "Neighborhood espresso bar", c.Description, "gaps backfill from lower-priority sources")
	assert.ElementsMatch(t, []string{providers.Google, providers.OSM}, c.AggregatedFrom)
	assert.Len(t, c.Sources, 2)
}

func TestMergeKeepsDistantPlacesApart(t *testing.T) {
	r := NewReconciler(75)

	// Same name, ~500m apart: two branches, not one place.
	out := r.Merge(map[string][]types.NormalizedRecord{
		providers.Google: {
			rec(providers.Google, "g1", "Joe's Coffee", 40.7000, -74.0000),
			rec(providers.Google, "g2", "Joe's Coffee", 40.7045, -74.0000),
		},
	})

	assert.Len(t, out, 2)
}

func TestMergeKeepsDifferentNamesApart(t *testing.T) {
	r := NewReconciler(75)

	out := r.Merge(map[string][]types.NormalizedRecord{
		providers.Google:     {rec(providers.Google, "g1", "Joe's Coffee", 40.7000, -74.0000)},
		providers.Foursquare: {rec(providers.Foursquare, "f1", "Harbor Books", 40.7000, -74.0000)},
	})

	assert.Len(t, out, 2, "proximity alone must not merge unrelated venues")
}

func TestMergeIsIdempotentAndOrderIndependent(t *testing.T) {
	r := NewReconciler(75)

	input := map[string][]types.NormalizedRecord{
		providers.Google: {
			rec(providers.Google, "g1", "Joe's Coffee", 40.7000, -74.0000),
			rec(providers.Google, "g2", "Harbor Books", 40.7100, -74.0100),
		},
		providers.Foursquare: {rec(providers.Foursquare, "f1", "Joes Coffee", 40.70010, -74.0000)},
		providers.OSM:        {rec(providers.OSM, "o1", "harbor books", 40.71005, -74.0100)},
	}

	first := r.Merge(input)
	second := r.Merge(input)

	require.Len(t, first, 2)
	assert.Equal(t, first, second, "same input must always yield the same canonical set")
}

func TestMergePrimarySourceFollowsPriority(t *testing.T) {
	r := NewReconciler(75)

	// Lower-priority providers in the map first; sort order must still make
	// the internal record primary.
	out := r.Merge(map[string][]types.NormalizedRecord{
		providers.OSM:      {rec(providers.OSM, "o1", "Riverside Climbing Gym", 40.7000, -74.0000)},
		providers.Internal: {rec(providers.Internal, "i1", "Riverside Climbing Gym", 40.7000, -74.0001)},
	})

	require.Len(t, out, 1)
	assert.Equal(t, providers.Internal, out[0].PrimarySource)
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, namesMatch("Joe's Coffee", "joes coffee"))
	assert.True(t, namesMatch("Blue Bottle", "Blue Bottle Coffee"), "containment matches when both sides are long enough")
	assert.False(t, namesMatch("Joe's", "Moe's"))
	assert.False(t, namesMatch("", "Anything"))
	assert.False(t, namesMatch("ab", "abc"), "short names only match exactly")
}
