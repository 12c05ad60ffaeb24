package models

import "time"

// ActivityVote is one user's yes/no verdict on a (venue, activity) pair.
// The composite unique index makes a repeat vote replace the prior one.
type ActivityVote struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	VenueID      uint      `json:"venueId" gorm:"not null;uniqueIndex:idx_venue_user_activity"`
	UserID       uint      `json:"userId" gorm:"not null;uniqueIndex:idx_venue_user_activity"`
	ActivityName string    `json:"activityName" gorm:"not null;uniqueIndex:idx_venue_user_activity"`
	Vote         bool      `json:"vote" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
