package cache

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roamio/discovery-api/types"
)

// gridDegrees quantizes viewport corners so that near-identical viewports
// share a tile. 0.02 degrees is roughly 2.2 km at the equator.
const gridDegrees = 0.02

// TileKey derives the cache key for a viewport plus its category filter set.
// Corners snap down to the grid; categories are sorted so order never splits
// the cache.
func TileKey(bounds types.Bounds, categories []string) string {
	sw := snap(bounds.Southwest)
	ne := snap(bounds.Northeast)

	key := fmt.Sprintf("tile:%.2f:%.2f:%.2f:%.2f", sw.Lat, sw.Lng, ne.Lat, ne.Lng)
	if len(categories) > 0 {
		sorted := append([]string(nil), categories...)
		for i, c := range sorted {
			sorted[i] = strings.ToLower(strings.TrimSpace(c))
		}
		sort.Strings(sorted)
		key += "|" + strings.Join(sorted, ",")
	}
	return key
}

func snap(p types.LatLng) types.LatLng {
	return types.LatLng{
		Lat: math.Floor(p.Lat/gridDegrees) * gridDegrees,
		Lng: math.Floor(p.Lng/gridDegrees) * gridDegrees,
	}
}
