package models

import (
	"time"

	"github.com/lib/pq"
)

// PlaceSource is one provider's raw view of a point of interest. Rows are
// immutable within their TTL window; a refresh supersedes them with new rows
// rather than mutating in place.
type PlaceSource struct {
	ID              uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaceID         uint           `json:"placeId" gorm:"index;not null"`
	Provider        string         `json:"provider" gorm:"not null;uniqueIndex:idx_provider_place"`
	ProviderPlaceID string         `json:"providerPlaceId" gorm:"not null;uniqueIndex:idx_provider_place"`
	FetchedAt       time.Time      `json:"fetchedAt" gorm:"not null"`
	ExpiresAt       time.Time      `json:"expiresAt" gorm:"not null"`
	Confidence      float64        `json:"confidence"`
	Name            string         `json:"name"`
	Categories      pq.StringArray `json:"categories" gorm:"type:text[]"`
	Latitude        float64        `json:"latitude" gorm:"type:decimal(10,8)"`
	Longitude       float64        `json:"longitude" gorm:"type:decimal(11,8)"`
	Address         string         `json:"address"`
	Attribution     string         `json:"attribution"`
	CreatedAt       time.Time      `json:"createdAt"`
}
