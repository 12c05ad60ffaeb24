package providers

import (
	"context"
	"fmt"

	"github.com/roamio/discovery-api/types"
)

// Provider name constants. These double as PlaceSource.Provider values.
const (
	Internal   = "internal"
	Google     = "google"
	Foursquare = "foursquare"
	OSM        = "osm"
)

// priority fixes primary-source selection: curated internal rows beat
// commercial providers, which beat open map data. Lower wins.
var priority = map[string]int{
	Internal:   0,
	Google:     1,
	Foursquare: 2,
	OSM:        3,
}

func Priority(provider string) int {
	if p, ok := priority[provider]; ok {
		return p
	}
	return len(priority)
}

// Provider translates one upstream source's shapes into NormalizedRecords.
// Adapters never merge and never cache.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, bounds types.Bounds, categories []string) ([]types.NormalizedRecord, error)
}

// Error wraps an upstream failure with the provider that produced it. It is
// recovered locally and surfaced only through degraded-result metadata.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
