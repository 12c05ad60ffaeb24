package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/roamio/discovery-api/types"
)

// providerSlice is one provider's share of a tile, stored as a hash field.
type providerSlice struct {
	Records   []types.NormalizedRecord `json:"records"`
	FetchedAt time.Time                `json:"fetchedAt"`
}

// RedisStore keeps tiles in a redis hash per key, one field per provider.
// Retention bounds how long a tile outlives its freshest provider; freshness
// itself is still judged per provider by the caller.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = 14 * 24 * time.Hour
	}
	return &RedisStore{client: client, retention: retention}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	entry := NewEntry()
	for provider, raw := range fields {
		var slice providerSlice
		if err := json.Unmarshal([]byte(raw), &slice); err != nil {
			// A corrupt field is treated as a miss for that provider.
			continue
		}
		entry.Records[provider] = slice.Records
		entry.FetchedAt[provider] = slice.FetchedAt
	}
	return entry, nil
}

func (s *RedisStore) Put(ctx context.Context, key, provider string, records []types.NormalizedRecord, fetchedAt time.Time) error {
	raw, err := json.Marshal(providerSlice{Records: records, FetchedAt: fetchedAt})
	if err != nil {
		return fmt.Errorf("marshal tile slice: %w", err)
	}
	if err := s.client.HSet(ctx, key, provider, raw).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return s.client.Expire(ctx, key, s.retention).Err()
}
