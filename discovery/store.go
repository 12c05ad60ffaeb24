package discovery

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/roamio/discovery-api/models"
	"github.com/roamio/discovery-api/types"
	"gorm.io/gorm"
)

// PlaceStore persists canonical places. Upserts preserve Place identity across
// refreshes; only the PlaceSource children are replaced.
type PlaceStore interface {
	UpsertCanonicals(ctx context.Context, canonicals []Canonical, ttlFor func(provider string) time.Duration) ([]models.Place, error)
	ResolveCanonicals(ctx context.Context, canonicals []Canonical) ([]models.Place, error)
	ByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Place, error)
	EvictDead(ctx context.Context, now time.Time) (int64, error)
}

type GormPlaceStore struct {
	DB *gorm.DB
}

func NewGormPlaceStore(db *gorm.DB) *GormPlaceStore {
	return &GormPlaceStore{DB: db}
}

func (s *GormPlaceStore) UpsertCanonicals(ctx context.Context, canonicals []Canonical, ttlFor func(provider string) time.Duration) ([]models.Place, error) {
	now := time.Now()
	out := make([]models.Place, 0, len(canonicals))

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, canon := range canonicals {
			place, err := s.findExisting(tx, canon)
			if err != nil {
				return err
			}

			expiresAt := now
			sources := make([]models.PlaceSource, 0, len(canon.Sources))
			for _, src := range canon.Sources {
				exp := src.FetchedAt.Add(ttlFor(src.Provider))
				if exp.After(expiresAt) {
					expiresAt = exp
				}
				sources = append(sources, models.PlaceSource{
					Provider:        src.Provider,
					ProviderPlaceID: src.ProviderPlaceID,
					FetchedAt:       src.FetchedAt,
					ExpiresAt:       exp,
					Confidence:      src.Confidence,
					Name:            src.Name,
					Categories:      pq.StringArray(src.Categories),
					Latitude:        src.Latitude,
					Longitude:       src.Longitude,
					Address:         src.Address,
					Attribution:     src.Attribution.Text,
				})
			}

			if place == nil {
				place = &models.Place{
					Slug: s.newSlug(tx, canon.Name),
				}
			}

			place.Name = canon.Name
			place.Address = canon.Address
			place.Categories = pq.StringArray(canon.Categories)
			place.Latitude = canon.Latitude
			place.Longitude = canon.Longitude
			place.AggregatedFrom = pq.StringArray(canon.AggregatedFrom)
			place.PrimarySource = canon.PrimarySource
			place.CachedAt = now
			place.CacheExpiresAt = expiresAt

			if err := tx.Save(place).Error; err != nil {
				return err
			}

			// Superseded sources are purged, never mutated.
			if err := tx.Where("place_id = ?", place.ID).Delete(&models.PlaceSource{}).Error; err != nil {
				return err
			}
			for i := range sources {
				sources[i].PlaceID = place.ID
			}
			if len(sources) > 0 {
				if err := tx.Create(&sources).Error; err != nil {
					return err
				}
			}

			place.Sources = sources
			out = append(out, *place)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveCanonicals is the read-only counterpart of UpsertCanonicals used on
// the cache-hit path: places already reconciled for this tile are looked up,
// never rewritten. Canonicals with no stored match come back unsaved.
func (s *GormPlaceStore) ResolveCanonicals(ctx context.Context, canonicals []Canonical) ([]models.Place, error) {
	tx := s.DB.WithContext(ctx)
	out := make([]models.Place, 0, len(canonicals))
	for _, canon := range canonicals {
		place, err := s.findExisting(tx, canon)
		if err != nil {
			return nil, err
		}
		if place == nil {
			unsaved := placesFromCanonicals([]Canonical{canon})
			out = append(out, unsaved[0])
			continue
		}
		out = append(out, *place)
	}
	return out, nil
}

// findExisting locates the Place a canonical corresponds to by any of its
// provider IDs, so identity survives provider refreshes.
func (s *GormPlaceStore) findExisting(tx *gorm.DB, canon Canonical) (*models.Place, error) {
	for _, src := range canon.Sources {
		var source models.PlaceSource
		err := tx.Where("provider = ? AND provider_place_id = ?", src.Provider, src.ProviderPlaceID).
			First(&source).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var place models.Place
		if err := tx.First(&place, source.PlaceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		return &place, nil
	}
	return nil, nil
}

func (s *GormPlaceStore) ByIDOrSlug(ctx context.Context, idOrSlug string) (*models.Place, error) {
	var place models.Place
	q := s.DB.WithContext(ctx).Preload("Sources")

	var err error
	if id, convErr := strconv.ParseUint(idOrSlug, 10, 64); convErr == nil {
		err = q.First(&place, uint(id)).Error
	} else {
		err = q.Where("slug = ?", idOrSlug).First(&place).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// EvictDead removes places whose every source has expired, honoring the
// zero-live-sources eviction invariant. Called from the refresh job.
func (s *GormPlaceStore) EvictDead(ctx context.Context, now time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM place_sources WHERE place_sources.place_id = places.id AND place_sources.expires_at > ?)", now).
		Delete(&models.Place{})
	return result.RowsAffected, result.Error
}

func (s *GormPlaceStore) newSlug(tx *gorm.DB, name string) string {
	base := slugify(name)
	if base == "" {
		base = "place"
	}

	var count int64
	tx.Model(&models.Place{}).Where("slug = ?", base).Count(&count)
	if count == 0 {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
