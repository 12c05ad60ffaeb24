package discovery

import (
	"sort"
	"strings"

	"github.com/roamio/discovery-api/providers"
	"github.com/roamio/discovery-api/types"
	"github.com/roamio/discovery-api/utils"
)

// Canonical is a provider-merged place before persistence. One Canonical per
// physical place, carrying every contributing provider record.
type Canonical struct {
	Name           string
	Address        string
	Description    string
	Categories     []string
	Latitude       float64
	Longitude      float64
	Confidence     float64
	PrimarySource  string
	AggregatedFrom []string
	Sources        []types.NormalizedRecord
}

// Reconciler merges per-provider record sets into canonical places.
// Merging is deterministic: identical inputs always yield the identical
// canonical set, regardless of provider fetch order.
type Reconciler struct {
	// DedupDistanceMeters is the proximity threshold under which two records
	// with matching names are considered the same physical place.
	DedupDistanceMeters float64
}

func NewReconciler(dedupDistanceMeters float64) *Reconciler {
	if dedupDistanceMeters <= 0 {
		dedupDistanceMeters = 75
	}
	return &Reconciler{DedupDistanceMeters: dedupDistanceMeters}
}

// Merge deduplicates records across providers. Records merge only when both
// the distance and the name test agree; failing either keeps them distinct
// even within one provider.
func (r *Reconciler) Merge(recordsByProvider map[string][]types.NormalizedRecord) []Canonical {
	flat := make([]types.NormalizedRecord, 0)
	for _, recs := range recordsByProvider {
		flat = append(flat, recs...)
	}
	// Fixed ordering makes the merge independent of map iteration and of the
	// order providers happened to respond in.
	sort.Slice(flat, func(i, j int) bool {
		pi, pj := providers.Priority(flat[i].Provider), providers.Priority(flat[j].Provider)
		if pi != pj {
			return pi < pj
		}
		if flat[i].ProviderPlaceID != flat[j].ProviderPlaceID {
			return flat[i].ProviderPlaceID < flat[j].ProviderPlaceID
		}
		return flat[i].Name < flat[j].Name
	})

	var canonicals []Canonical
	for _, rec := range flat {
		idx := -1
		for i := range canonicals {
			if r.sameplace(&canonicals[i], rec) {
				idx = i
				break
			}
		}
		if idx == -1 {
			canonicals = append(canonicals, newCanonical(rec))
			continue
		}
		absorb(&canonicals[idx], rec)
	}
	return canonicals
}

func (r *Reconciler) sameplace(c *Canonical, rec types.NormalizedRecord) bool {
	d := utils.HaversineMeters(c.Latitude, c.Longitude, rec.Latitude, rec.Longitude)
	if d > r.DedupDistanceMeters {
		return false
	}
	return namesMatch(c.Name, rec.Name)
}

func newCanonical(rec types.NormalizedRecord) Canonical {
	return Canonical{
		Name:           rec.Name,
		Address:        rec.Address,
		Description:    rec.Description,
		Categories:     uniqueStrings(rec.Categories),
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		Confidence:     rec.Confidence,
		PrimarySource:  rec.Provider,
		AggregatedFrom: []string{rec.Provider},
		Sources:        []types.NormalizedRecord{rec},
	}
}

// absorb folds a lower-priority record into an existing canonical. Fields
// already set by the primary stay; gaps are backfilled in priority order.
func absorb(c *Canonical, rec types.NormalizedRecord) {
	// Duplicate row from the same provider for the same place; keep the first
	// (deterministic by ProviderPlaceID sort) and still record the source.
	if c.Address == "" {
		c.Address = rec.Address
	}
	if c.Description == "" {
		c.Description = rec.Description
	}
	c.Categories = uniqueStrings(append(c.Categories, rec.Categories...))

	if !containsString(c.AggregatedFrom, rec.Provider) {
		c.AggregatedFrom = append(c.AggregatedFrom, rec.Provider)
	}
	c.Sources = append(c.Sources, rec)
}

// namesMatch compares normalized names: exact, or containment when both sides
// are long enough to make containment meaningful.
func namesMatch(a, b string) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if len(na) >= 4 && len(nb) >= 4 {
		return strings.Contains(na, nb) || strings.Contains(nb, na)
	}
	return false
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func containsString(in []string, s string) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}
