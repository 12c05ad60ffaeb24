// Package discovery implements the viewport query layer: cache check,
// parallel provider fetch, reconciliation, classification, vote overlay, and
// ranked assembly.
package discovery

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/roamio/discovery-api/cache"
	"github.com/roamio/discovery-api/classifier"
	"github.com/roamio/discovery-api/config"
	"github.com/roamio/discovery-api/metrics"
	"github.com/roamio/discovery-api/models"
	"github.com/roamio/discovery-api/providers"
	"github.com/roamio/discovery-api/types"
	"github.com/roamio/discovery-api/votes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	minRadiusMeters     = 100
	maxRadiusMeters     = 100_000
	defaultRadiusMeters = 5_000
	defaultLimit        = 20
	maxLimit            = 50
)

type Service struct {
	cfg        *config.Config
	tiles      cache.Store
	adapters   []providers.Provider
	reconciler *Reconciler
	places     PlaceStore
	classify   *classifier.Service
	overlay    *votes.Overlay
	group      singleflight.Group
	logger     *zap.Logger
}

func NewService(
	cfg *config.Config,
	tiles cache.Store,
	adapters []providers.Provider,
	reconciler *Reconciler,
	places PlaceStore,
	classify *classifier.Service,
	overlay *votes.Overlay,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		tiles:      tiles,
		adapters:   adapters,
		reconciler: reconciler,
		places:     places,
		classify:   classify,
		overlay:    overlay,
		logger:     logger.Named("discovery"),
	}
}

// Discover runs one viewport query end to end. Provider failures degrade the
// result instead of failing it; only validation errors or a total data outage
// surface as errors.
func (s *Service) Discover(ctx context.Context, q types.DiscoveryQuery) (*types.DiscoveryResult, error) {
	start := time.Now()
	metrics.DiscoverRequestsTotal.Inc()

	center, bounds, err := resolveViewport(&q)
	if err != nil {
		return nil, err
	}

	key := cache.TileKey(bounds, q.Categories)
	entry, err := s.tiles.Get(ctx, key)
	if err != nil {
		s.logger.Warn("tile cache read failed", zap.String("key", key), zap.Error(err))
		entry = nil
	}

	now := time.Now()
	recordsByProvider := make(map[string][]types.NormalizedRecord)
	providerCounts := make(map[string]int)

	var toFetch []providers.Provider
	for _, p := range s.adapters {
		if !q.BypassCache && entry != nil && entry.Fresh(p.Name(), s.cfg.ProviderTTL(p.Name()), now) {
			recordsByProvider[p.Name()] = entry.Records[p.Name()]
			providerCounts[p.Name()] = len(entry.Records[p.Name()])
			continue
		}
		toFetch = append(toFetch, p)
	}

	hit := len(toFetch) == 0
	if hit {
		metrics.CacheHitsTotal.Inc()
	} else {
		metrics.CacheMissesTotal.Inc()
	}

	degraded := false
	var fallbackSource, fallbackError string

	type outcome struct {
		provider string
		records  []types.NormalizedRecord
		err      error
	}
	results := make(chan outcome, len(toFetch))
	for _, p := range toFetch {
		go func(p providers.Provider) {
			recs, err := s.fetchCoalesced(ctx, key, p, bounds, q.Categories)
			results <- outcome{provider: p.Name(), records: recs, err: err}
		}(p)
	}
	for range toFetch {
		out := <-results
		if out.err != nil {
			degraded = true
			providerCounts[out.provider] = 0
			if fallbackError == "" {
				fallbackError = out.err.Error()
			}
			// Stale-while-revalidate: a failed provider's last-known records
			// still beat nothing.
			if entry != nil && len(entry.Records[out.provider]) > 0 {
				recordsByProvider[out.provider] = entry.Records[out.provider]
				fallbackSource = "cache"
			}
			s.logger.Warn("provider fetch failed",
				zap.String("provider", out.provider), zap.Error(out.err))
			continue
		}
		recordsByProvider[out.provider] = out.records
		providerCounts[out.provider] = len(out.records)
	}

	if degraded {
		metrics.DegradedResultsTotal.Inc()
	}

	anyData := false
	for _, recs := range recordsByProvider {
		if len(recs) > 0 {
			anyData = true
			break
		}
	}
	if !anyData && degraded {
		return nil, fmt.Errorf("no provider or cached data available: %s", fallbackError)
	}

	canonicals := s.reconciler.Merge(recordsByProvider)

	var merged []models.Place
	if hit {
		merged, err = s.places.ResolveCanonicals(ctx, canonicals)
	} else {
		merged, err = s.places.UpsertCanonicals(ctx, canonicals, s.cfg.ProviderTTL)
	}
	if err != nil {
		// Persistence failure on the read path is non-fatal: serve the
		// already-computed result and skip the write.
		s.logger.Error("place persistence failed, serving unsaved result", zap.Error(err))
		merged = placesFromCanonicals(canonicals)
	}

	entries := s.attachOverlay(ctx, merged, canonicals)
	filtered := applyFilters(entries, q)
	items := rankEntries(filtered, center, q)
	if len(items) > q.Limit {
		items = items[:q.Limit]
	}

	result := &types.DiscoveryResult{
		Items:           items,
		Facets:          buildFacets(filtered),
		FilterSupport:   buildFilterSupport(filtered),
		SourceBreakdown: sourceBreakdown(items),
		ProviderCounts:  providerCounts,
		Attributions:    uniqueAttributions(recordsByProvider),
		Cache:           types.CacheMeta{Key: key, Hit: hit},
		Degraded:        degraded,
		FallbackSource:  fallbackSource,
		FallbackError:   fallbackError,
	}

	metrics.DiscoverDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	return result, nil
}

// fetchCoalesced guarantees at most one in-flight upstream fetch per
// (tile, provider); concurrent callers share the single outstanding result.
func (s *Service) fetchCoalesced(ctx context.Context, key string, p providers.Provider, bounds types.Bounds, categories []string) ([]types.NormalizedRecord, error) {
	v, err, _ := s.group.Do(key+"|"+p.Name(), func() (interface{}, error) {
		// Detached context: cancelling one waiting caller must not poison the
		// shared fetch for the others.
		fctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProviderTimeout)
		defer cancel()

		metrics.ProviderRequestsTotal.WithLabelValues(p.Name()).Inc()
		start := time.Now()
		records, err := p.Fetch(fctx, bounds, categories)
		metrics.ProviderDurationMs.WithLabelValues(p.Name()).Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.ProviderFailTotal.WithLabelValues(p.Name()).Inc()
			return nil, err
		}

		// Write-through even for bypassed reads; a cache write failure only
		// costs the next query a refetch.
		if perr := s.tiles.Put(context.Background(), key, p.Name(), records, time.Now()); perr != nil {
			s.logger.Warn("tile cache write failed",
				zap.String("key", key), zap.String("provider", p.Name()), zap.Error(perr))
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.NormalizedRecord), nil
}

// attachOverlay pairs each merged place with classification and vote totals.
// Both are best-effort on this path; a classifier or vote-store hiccup costs
// enrichment, not the query.
func (s *Service) attachOverlay(ctx context.Context, merged []models.Place, canonicals []Canonical) []resultEntry {
	entries := make([]resultEntry, 0, len(merged))
	for i, place := range merged {
		entry := resultEntry{Place: place}

		if place.ID != 0 && s.classify != nil {
			description := ""
			if i < len(canonicals) {
				description = canonicals[i].Description
			}
			venue, err := s.classify.EnsureClassified(ctx, &merged[i], description)
			if err != nil {
				s.logger.Warn("classification skipped",
					zap.Uint("place_id", place.ID), zap.Error(err))
			} else {
				entry.Venue = venue
				if s.overlay != nil {
					totals, terr := s.overlay.TotalsForVenue(ctx, venue.ID)
					if terr != nil {
						s.logger.Warn("vote totals unavailable",
							zap.Uint("venue_id", venue.ID), zap.Error(terr))
					} else {
						entry.Totals = totals
					}
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// PlaceByIDOrSlug returns one canonical place with its nested sources.
func (s *Service) PlaceByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Place, error) {
	return s.places.ByIDOrSlug(ctx, idOrSlug)
}

// TileRefreshResult is one warm tile's outcome in a batch refresh.
type TileRefreshResult struct {
	Tile       string `json:"tile"`
	CacheHit   bool   `json:"cacheHit"`
	PlaceCount int    `json:"placeCount"`
	LatencyMs  int64  `json:"latencyMs"`
	Error      string `json:"error,omitempty"`
}

// RefreshTiles force-refreshes every configured warm tile and evicts places
// whose sources have all expired. Driven by the scheduled-job trigger.
func (s *Service) RefreshTiles(ctx context.Context) []TileRefreshResult {
	results := make([]TileRefreshResult, 0, len(s.cfg.WarmTiles))
	for _, tile := range s.cfg.WarmTiles {
		center, ok := parseCenter(tile)
		if !ok {
			results = append(results, TileRefreshResult{Tile: tile, Error: "malformed center, want lat,lng"})
			continue
		}

		start := time.Now()
		res, err := s.Discover(ctx, types.DiscoveryQuery{
			Center:       &center,
			RadiusMeters: defaultRadiusMeters,
			Limit:        maxLimit,
			BypassCache:  true,
		})
		r := TileRefreshResult{Tile: tile, LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			r.Error = err.Error()
		} else {
			r.CacheHit = res.Cache.Hit
			r.PlaceCount = len(res.Items)
		}
		results = append(results, r)
	}

	if evicted, err := s.places.EvictDead(ctx, time.Now()); err != nil {
		s.logger.Warn("dead place eviction failed", zap.Error(err))
	} else if evicted > 0 {
		s.logger.Info("evicted places without live sources", zap.Int64("count", evicted))
	}
	return results
}

// resolveViewport validates and clamps the query in place, returning the
// effective center and bounds. Explicit center wins over bounds midpoint;
// a query with neither is rejected before any provider work.
func resolveViewport(q *types.DiscoveryQuery) (types.LatLng, types.Bounds, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	} else if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = defaultRadiusMeters
	} else if q.RadiusMeters < minRadiusMeters {
		q.RadiusMeters = minRadiusMeters
	} else if q.RadiusMeters > maxRadiusMeters {
		q.RadiusMeters = maxRadiusMeters
	}

	if q.Bounds != nil {
		if !q.Bounds.Valid() {
			return types.LatLng{}, types.Bounds{}, types.ErrInvalidBounds
		}
		center := q.Bounds.Center()
		if q.Center != nil {
			center = *q.Center
		}
		return center, *q.Bounds, nil
	}

	if q.Center == nil {
		return types.LatLng{}, types.Bounds{}, types.ErrMissingCenter
	}
	return *q.Center, boundsAround(*q.Center, q.RadiusMeters), nil
}

// boundsAround expands a center point into a bounding box covering the radius.
func boundsAround(center types.LatLng, radiusMeters float64) types.Bounds {
	dLat := radiusMeters / 111_320
	dLng := dLat
	if cosLat := math.Cos(center.Lat * math.Pi / 180); cosLat > 0.01 {
		dLng = dLat / cosLat
	}
	return types.Bounds{
		Southwest: types.LatLng{Lat: center.Lat - dLat, Lng: center.Lng - dLng},
		Northeast: types.LatLng{Lat: center.Lat + dLat, Lng: center.Lng + dLng},
	}
}

func parseCenter(s string) (types.LatLng, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return types.LatLng{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return types.LatLng{}, false
	}
	return types.LatLng{Lat: lat, Lng: lng}, true
}

func sourceBreakdown(items []types.DiscoveryItem) map[string]int {
	out := make(map[string]int)
	for _, item := range items {
		for _, p := range item.AggregatedFrom {
			out[p]++
		}
	}
	return out
}

func uniqueAttributions(recordsByProvider map[string][]types.NormalizedRecord) []types.Attribution {
	seen := make(map[string]struct{})
	var out []types.Attribution
	for _, recs := range recordsByProvider {
		for _, rec := range recs {
			a := rec.Attribution
			k := a.Provider + "|" + a.Text + "|" + a.URL
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func placesFromCanonicals(canonicals []Canonical) []models.Place {
	out := make([]models.Place, 0, len(canonicals))
	for _, c := range canonicals {
		out = append(out, models.Place{
			Name:           c.Name,
			Address:        c.Address,
			Categories:     pq.StringArray(c.Categories),
			Latitude:       c.Latitude,
			Longitude:      c.Longitude,
			AggregatedFrom: pq.StringArray(c.AggregatedFrom),
			PrimarySource:  c.PrimarySource,
		})
	}
	return out
}
