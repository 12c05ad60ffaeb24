package discovery

import (
	"sort"
	"strings"

	"github.com/roamio/discovery-api/models"
	"github.com/roamio/discovery-api/types"
	"github.com/roamio/discovery-api/utils"
	"github.com/roamio/discovery-api/votes"
)

// resultEntry pairs a canonical place with its classification and vote state
// while a query is being assembled.
type resultEntry struct {
	Place  models.Place
	Venue  *models.Venue
	Totals map[string]votes.Totals
}

func (e *resultEntry) activities() []string {
	if e.Venue == nil {
		return nil
	}
	merged := append([]string(nil), e.Venue.AIActivityTags...)
	for _, v := range e.Venue.VerifiedActivities {
		if !containsString(merged, v) {
			merged = append(merged, v)
		}
	}
	return merged
}

// applyFilters keeps entries matching every active filter dimension.
func applyFilters(entries []resultEntry, q types.DiscoveryQuery) []resultEntry {
	out := make([]resultEntry, 0, len(entries))
	for _, e := range entries {
		if len(q.Activities) > 0 && !anyOverlap(e.activities(), q.Activities) {
			continue
		}
		if len(q.Categories) > 0 && !anyOverlap(e.Place.Categories, q.Categories) {
			continue
		}
		if len(q.Tags) > 0 && !anyOverlap(e.Place.Tags, q.Tags) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// buildFacets counts values per filterable dimension over the filtered set.
func buildFacets(entries []resultEntry) map[string]map[string]int {
	facets := map[string]map[string]int{
		"activities":    {},
		"categories":    {},
		"tags":          {},
		"primarySource": {},
	}
	for _, e := range entries {
		for _, a := range e.activities() {
			facets["activities"][a]++
		}
		for _, c := range e.Place.Categories {
			facets["categories"][c]++
		}
		for _, t := range e.Place.Tags {
			facets["tags"][t]++
		}
		facets["primarySource"][e.Place.PrimarySource]++
	}
	return facets
}

// supportFraction is the share of entries that must carry data in a dimension
// before filtering on it is considered meaningful.
const supportFraction = 0.25

// buildFilterSupport reports, per dimension, whether the result set carries
// enough data for that filter to do anything useful. Callers hide dead filter
// controls based on this rather than guessing client-side.
func buildFilterSupport(entries []resultEntry) map[string]bool {
	if len(entries) == 0 {
		return map[string]bool{
			"activities": false, "categories": false, "tags": false,
			"priceLevels": false, "capacity": false,
		}
	}

	var withActivities, withCategories, withTags int
	for _, e := range entries {
		if len(e.activities()) > 0 {
			withActivities++
		}
		if len(e.Place.Categories) > 0 {
			withCategories++
		}
		if len(e.Place.Tags) > 0 {
			withTags++
		}
	}

	threshold := int(supportFraction * float64(len(entries)))
	if threshold < 1 {
		threshold = 1
	}
	return map[string]bool{
		"activities": withActivities >= threshold,
		"categories": withCategories >= threshold,
		"tags":       withTags >= threshold,
		// No provider currently populates price or capacity signals.
		"priceLevels": false,
		"capacity":    false,
	}
}

// rankEntries turns entries into scored, distance-annotated items sorted by
// score descending (ties by distance ascending).
func rankEntries(entries []resultEntry, center types.LatLng, q types.DiscoveryQuery) []types.DiscoveryItem {
	items := make([]types.DiscoveryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, buildItem(e, center, q))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].DistanceMeters < items[j].DistanceMeters
	})
	return items
}

func buildItem(e resultEntry, center types.LatLng, q types.DiscoveryQuery) types.DiscoveryItem {
	item := types.DiscoveryItem{
		PlaceID:        e.Place.ID,
		Slug:           e.Place.Slug,
		Name:           e.Place.Name,
		Latitude:       e.Place.Latitude,
		Longitude:      e.Place.Longitude,
		Address:        e.Place.Address,
		Categories:     e.Place.Categories,
		Tags:           e.Place.Tags,
		PrimarySource:  e.Place.PrimarySource,
		AggregatedFrom: e.Place.AggregatedFrom,
		Activities:     e.activities(),
		DistanceMeters: utils.HaversineMeters(center.Lat, center.Lng, e.Place.Latitude, e.Place.Longitude),
	}

	var confidence float64
	var yes, no int
	if e.Venue != nil {
		item.ActivityScores = e.Venue.AIConfidenceScores
		item.Verified = e.Venue.VerifiedActivities
		confidence = relevantConfidence(e.Venue.AIConfidenceScores, q.Activities)
	}
	for activity, t := range e.Totals {
		if len(q.Activities) > 0 && !containsFold(q.Activities, activity) {
			continue
		}
		yes += t.Yes
		no += t.No
	}

	item.Score = votes.Score(confidence, yes, no,
		anyOverlap(e.Place.Categories, q.Categories),
		keywordMatch(e, q.Activities))
	return item
}

// relevantConfidence picks the strongest classifier signal among the
// requested activities, or overall when no activity filter is active.
func relevantConfidence(scores models.ConfidenceMap, requested []string) float64 {
	best := 0.0
	for activity, score := range scores {
		if len(requested) > 0 && !containsFold(requested, activity) {
			continue
		}
		if score > best {
			best = score
		}
	}
	return best
}

func keywordMatch(e resultEntry, activities []string) bool {
	if len(activities) == 0 {
		return false
	}
	text := strings.ToLower(e.Place.Name)
	if e.Venue != nil {
		text += " " + strings.ToLower(e.Venue.RawDescription)
	}
	for _, a := range activities {
		if strings.Contains(text, strings.ToLower(strings.ReplaceAll(a, "_", " "))) ||
			strings.Contains(text, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

func anyOverlap(have []string, want []string) bool {
	for _, w := range want {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func containsFold(in []string, s string) bool {
	for _, v := range in {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
