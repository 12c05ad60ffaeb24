// Package cache implements the geospatial tile cache. Entries are keyed by a
// quantized viewport plus the requested category set and hold per-provider
// record lists with independent freshness stamps, so one stale provider never
// invalidates fresh data from another.
package cache

import (
	"context"
	"time"

	"github.com/roamio/discovery-api/types"
)

// Entry is everything cached for one tile.
type Entry struct {
	Records   map[string][]types.NormalizedRecord `json:"records"`
	FetchedAt map[string]time.Time                `json:"fetchedAt"`
}

func NewEntry() *Entry {
	return &Entry{
		Records:   make(map[string][]types.NormalizedRecord),
		FetchedAt: make(map[string]time.Time),
	}
}

// Fresh reports whether the given provider's slice of this tile is inside its
// TTL window. Staleness is judged per provider, never globally.
func (e *Entry) Fresh(provider string, ttl time.Duration, now time.Time) bool {
	fetched, ok := e.FetchedAt[provider]
	if !ok {
		return false
	}
	return now.Sub(fetched) < ttl
}

func (e *Entry) clone() *Entry {
	out := NewEntry()
	for p, recs := range e.Records {
		out.Records[p] = append([]types.NormalizedRecord(nil), recs...)
	}
	for p, t := range e.FetchedAt {
		out.FetchedAt[p] = t
	}
	return out
}

// Store is the narrow surface the discovery layer talks to. Get returns
// (nil, nil) on a miss. Put is always write-through, even for bypassed reads.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key, provider string, records []types.NormalizedRecord, fetchedAt time.Time) error
}
