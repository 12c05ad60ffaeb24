package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ConfidenceMap stores per-activity classifier confidence as a jsonb column.
type ConfidenceMap map[string]float64

func (m ConfidenceMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ConfidenceMap) Scan(value interface{}) error {
	if value == nil {
		*m = ConfidenceMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported confidence map type %T", value)
	}
}

// Venue augments a Place with activity-classification state. A Place without
// a Venue row is simply unclassified; classification attaches lazily.
type Venue struct {
	ID                 uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaceID            uint           `json:"placeId" gorm:"uniqueIndex;not null"`
	RawDescription     string         `json:"rawDescription" gorm:"type:text"`
	RawReviews         pq.StringArray `json:"rawReviews" gorm:"type:text[]"`
	AIActivityTags     pq.StringArray `json:"aiActivityTags" gorm:"type:text[]"`
	AIConfidenceScores ConfidenceMap  `json:"aiConfidenceScores" gorm:"type:jsonb"`
	VerifiedActivities pq.StringArray `json:"verifiedActivities" gorm:"type:text[]"`
	NeedsVerification  bool           `json:"needsVerification" gorm:"default:false"`
	LastAIUpdate       *time.Time     `json:"lastAiUpdate"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}
