package discovery

import (
	"testing"

	"github.com/lib/pq"
	"github.com/roamio/discovery-api/models"
	"github.com/roamio/discovery-api/types"
	"github.com/roamio/discovery-api/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name string, lat, lng float64) resultEntry {
	return resultEntry{Place: models.Place{Name: name, Latitude: lat, Longitude: lng}}
}

func withVenue(e resultEntry, tags []string, scores models.ConfidenceMap) resultEntry {
	e.Venue = &models.Venue{
		AIActivityTags:     pq.StringArray(tags),
		AIConfidenceScores: scores,
	}
	return e
}

func TestApplyFiltersByActivity(t *testing.T) {
	gym := withVenue(entry("Riverside Climbing Gym", 40.70, -74.00),
		[]string{"climbing"}, models.ConfidenceMap{"climbing": 0.9})
	park := withVenue(entry("Elm Park", 40.71, -74.00),
		[]string{"picnic"}, models.ConfidenceMap{"picnic": 0.7})
	unclassified := entry("Mystery Spot", 40.72, -74.00)

	out := applyFilters([]resultEntry{gym, park, unclassified}, types.DiscoveryQuery{
		Activities: []string{"Climbing"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Riverside Climbing Gym", out[0].Place.Name)
}

func TestApplyFiltersMatchesVerifiedActivities(t *testing.T) {
	e := entry("Elm Park", 40.70, -74.00)
	e.Venue = &models.Venue{VerifiedActivities: pq.StringArray{"picnic"}}

	out := applyFilters([]resultEntry{e}, types.DiscoveryQuery{Activities: []string{"picnic"}})
	assert.Len(t, out, 1, "community-verified activities count even without classifier tags")
}

func TestApplyFiltersByCategory(t *testing.T) {
	cafe := entry("Joe's Coffee", 40.70, -74.00)
	cafe.Place.Categories = pq.StringArray{"cafe"}
	park := entry("Elm Park", 40.71, -74.00)
	park.Place.Categories = pq.StringArray{"park"}

	out := applyFilters([]resultEntry{cafe, park}, types.DiscoveryQuery{Categories: []string{"park"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Elm Park", out[0].Place.Name)
}

func TestRankOrdersByScoreThenDistance(t *testing.T) {
	center := types.LatLng{Lat: 40.70, Lng: -74.00}

	strong := withVenue(entry("Strong", 40.75, -74.00), []string{"hiking"}, models.ConfidenceMap{"hiking": 0.9})
	strong.Totals = map[string]votes.Totals{"hiking": {Yes: 3}}
	weak := withVenue(entry("Weak", 40.701, -74.00), []string{"hiking"}, models.ConfidenceMap{"hiking": 0.4})
	// Same zero score, different distance.
	farTie := entry("Far Tie", 40.72, -74.00)
	nearTie := entry("Near Tie", 40.702, -74.00)

	items := rankEntries([]resultEntry{farTie, weak, nearTie, strong}, center, types.DiscoveryQuery{})

	require.Len(t, items, 4)
	assert.Equal(t, "Strong", items[0].Name, "votes dominate the score")
	assert.Equal(t, "Weak", items[1].Name)
	assert.Equal(t, "Near Tie", items[2].Name, "ties break toward the closer place")
	assert.Equal(t, "Far Tie", items[3].Name)
}

func TestBuildItemScoresOnlyRequestedActivities(t *testing.T) {
	e := withVenue(entry("Elm Park", 40.70, -74.00),
		[]string{"picnic", "running"},
		models.ConfidenceMap{"picnic": 0.9, "running": 0.3})
	e.Totals = map[string]votes.Totals{
		"picnic":  {Yes: 5},
		"running": {Yes: 1, No: 2},
	}

	item := buildItem(e, types.LatLng{Lat: 40.70, Lng: -74.00},
		types.DiscoveryQuery{Activities: []string{"running"}})

	// Only running signal contributes: 0.3*0.6 + 1*20 - 2*10 + keyword 0.
	assert.InDelta(t, 0.18, item.Score, 1e-9)
}

func TestBuildItemKeywordBonus(t *testing.T) {
	e := entry("Dog Walking Meadow", 40.70, -74.00)

	item := buildItem(e, types.LatLng{Lat: 40.70, Lng: -74.00},
		types.DiscoveryQuery{Activities: []string{"dog_walking"}})

	assert.InDelta(t, 15.0, item.Score, 1e-9, "underscored activity names match their spaced form")
}

func TestBuildFacets(t *testing.T) {
	gym := withVenue(entry("Gym", 40.70, -74.00), []string{"climbing"}, nil)
	gym.Place.Categories = pq.StringArray{"gym"}
	gym.Place.PrimarySource = "google"
	park := withVenue(entry("Park", 40.71, -74.00), []string{"picnic", "running"}, nil)
	park.Place.Categories = pq.StringArray{"park"}
	park.Place.PrimarySource = "osm"

	facets := buildFacets([]resultEntry{gym, park})

	assert.Equal(t, 1, facets["activities"]["climbing"])
	assert.Equal(t, 1, facets["activities"]["running"])
	assert.Equal(t, 1, facets["categories"]["gym"])
	assert.Equal(t, 1, facets["primarySource"]["google"])
	assert.Equal(t, 1, facets["primarySource"]["osm"])
}

func TestBuildFilterSupport(t *testing.T) {
	support := buildFilterSupport(nil)
	assert.False(t, support["activities"])
	assert.False(t, support["priceLevels"])

	classified := withVenue(entry("Gym", 40.70, -74.00), []string{"climbing"}, nil)
	bare := entry("Mystery", 40.71, -74.00)

	support = buildFilterSupport([]resultEntry{classified, bare, bare, bare})
	assert.True(t, support["activities"], "a quarter of entries carrying data is enough")
	assert.False(t, support["categories"])
	assert.False(t, support["priceLevels"], "no provider supplies price data")
	assert.False(t, support["capacity"])
}

func TestRelevantConfidence(t *testing.T) {
	scores := models.ConfidenceMap{"picnic": 0.9, "running": 0.3}

	assert.InDelta(t, 0.9, relevantConfidence(scores, nil), 1e-9, "no filter takes the best overall")
	assert.InDelta(t, 0.3, relevantConfidence(scores, []string{"running"}), 1e-9)
	assert.InDelta(t, 0.0, relevantConfidence(scores, []string{"yoga"}), 1e-9)
}
