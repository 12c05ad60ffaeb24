package models

import (
	"time"

	"github.com/lib/pq"
)

// Place is the canonical provider-merged entity. Its identity is stable
// across provider refreshes; only the PlaceSource children are replaced.
type Place struct {
	ID              uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug            string         `json:"slug" gorm:"uniqueIndex;not null"`
	Name            string         `json:"name" gorm:"not null"`
	Categories      pq.StringArray `json:"categories" gorm:"type:text[]"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	Address         string         `json:"address"`
	Latitude        float64        `json:"latitude" gorm:"not null;type:decimal(10,8)"`
	Longitude       float64        `json:"longitude" gorm:"not null;type:decimal(11,8)"`
	AggregatedFrom  pq.StringArray `json:"aggregatedFrom" gorm:"type:text[]"`
	PrimarySource   string         `json:"primarySource" gorm:"not null"`
	PopularityScore float64        `json:"popularityScore" gorm:"default:0"`
	CachedAt        time.Time      `json:"cachedAt"`
	CacheExpiresAt  time.Time      `json:"cacheExpiresAt"`
	Sources         []PlaceSource  `json:"sources" gorm:"foreignKey:PlaceID"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// LiveSourceCount counts non-expired sources. A Place with zero live sources
// is eligible for eviction on the next tile refresh.
func (p *Place) LiveSourceCount(now time.Time) int {
	n := 0
	for _, s := range p.Sources {
		if s.ExpiresAt.After(now) {
			n++
		}
	}
	return n
}
