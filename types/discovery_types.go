package types

import "time"

type LatLng struct {
	Lat float64 `json:"lat" form:"lat"`
	Lng float64 `json:"lng" form:"lng"`
}

type Bounds struct {
	Southwest LatLng `json:"southwest"`
	Northeast LatLng `json:"northeast"`
}

// Valid reports whether the southwest corner is actually southwest of the
// northeast corner. Inverted bounds are rejected, never swapped.
func (b Bounds) Valid() bool {
	return b.Southwest.Lat <= b.Northeast.Lat && b.Southwest.Lng <= b.Northeast.Lng
}

func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.Southwest.Lat + b.Northeast.Lat) / 2,
		Lng: (b.Southwest.Lng + b.Northeast.Lng) / 2,
	}
}

// NormalizedRecord is the common shape every provider adapter translates its
// payload into. Adapters only translate; merging happens downstream.
type NormalizedRecord struct {
	Provider        string      `json:"provider"`
	ProviderPlaceID string      `json:"providerPlaceId"`
	Name            string      `json:"name"`
	Categories      []string    `json:"categories"`
	Latitude        float64     `json:"latitude"`
	Longitude       float64     `json:"longitude"`
	Address         string      `json:"address"`
	Description     string      `json:"description"`
	Confidence      float64     `json:"confidence"`
	Attribution     Attribution `json:"attribution"`
	FetchedAt       time.Time   `json:"fetchedAt"`
}

type Attribution struct {
	Provider string `json:"provider"`
	Text     string `json:"text"`
	URL      string `json:"url"`
}

type DiscoveryQuery struct {
	Center       *LatLng  `json:"center"`
	Bounds       *Bounds  `json:"bounds"`
	RadiusMeters float64  `json:"radiusMeters"`
	Limit        int      `json:"limit"`
	Activities   []string `json:"activities"`
	Tags         []string `json:"tags"`
	Categories   []string `json:"categories"`
	PriceLevels  []int    `json:"priceLevels"`
	BypassCache  bool     `json:"bypassCache"`
}

type DiscoveryItem struct {
	PlaceID        uint               `json:"placeId"`
	Slug           string             `json:"slug"`
	Name           string             `json:"name"`
	Latitude       float64            `json:"latitude"`
	Longitude      float64            `json:"longitude"`
	Address        string             `json:"address"`
	Categories     []string           `json:"categories"`
	Tags           []string           `json:"tags"`
	PrimarySource  string             `json:"primarySource"`
	AggregatedFrom []string           `json:"aggregatedFrom"`
	Activities     []string           `json:"activities"`
	ActivityScores map[string]float64 `json:"activityScores,omitempty"`
	Verified       []string           `json:"verifiedActivities,omitempty"`
	DistanceMeters float64            `json:"distanceMeters"`
	Score          float64            `json:"score"`
}

type CacheMeta struct {
	Key string `json:"key"`
	Hit bool   `json:"hit"`
}

type DiscoveryResult struct {
	Items           []DiscoveryItem           `json:"items"`
	Facets          map[string]map[string]int `json:"facets"`
	FilterSupport   map[string]bool           `json:"filterSupport"`
	SourceBreakdown map[string]int            `json:"sourceBreakdown"`
	ProviderCounts  map[string]int            `json:"providerCounts"`
	Attributions    []Attribution             `json:"attributions,omitempty"`
	Cache           CacheMeta                 `json:"cache"`
	Degraded        bool                      `json:"degraded"`
	FallbackSource  string                    `json:"fallbackSource,omitempty"`
	FallbackError   string                    `json:"fallbackError,omitempty"`
}
