// Package votes overlays community yes/no votes on top of classifier output
// and derives each venue's verification status.
package votes

import (
	"context"
	"time"

	"github.com/roamio/discovery-api/metrics"
	"github.com/roamio/discovery-api/models"
	"github.com/roamio/discovery-api/types"
	"go.uber.org/zap"
)

// Verification thresholds. An activity is verified on clear community
// agreement or strong classifier confidence backed by positive votes, and
// rejected on clear disagreement. Everything in between needs verification.
const (
	verifyMargin    = 3
	rejectMargin    = 3
	confidenceFloor = 0.85
)

// Totals is the aggregated yes/no count for one (venue, activity) pair.
type Totals struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

// Store is the vote persistence surface. Upsert must replace a prior vote
// from the same (venue, user, activity) rather than double-counting it.
type Store interface {
	Upsert(ctx context.Context, vote *models.ActivityVote) error
	TotalsForVenue(ctx context.Context, venueID uint) (map[string]Totals, error)
}

// VenueStore is the slice of venue persistence the overlay needs.
type VenueStore interface {
	ByID(ctx context.Context, id uint) (*models.Venue, error)
	Save(ctx context.Context, venue *models.Venue) error
}

type VoteResult struct {
	Activity           string   `json:"activity"`
	Totals             Totals   `json:"totals"`
	VerifiedActivities []string `json:"verifiedActivities"`
	NeedsVerification  bool     `json:"needsVerification"`
}

type Overlay struct {
	store  Store
	venues VenueStore
	logger *zap.Logger
}

func NewOverlay(store Store, venues VenueStore, logger *zap.Logger) *Overlay {
	return &Overlay{store: store, venues: venues, logger: logger.Named("votes")}
}

// RecordVote upserts one user's vote and recomputes the venue's verification
// state. A persistence failure here is fatal to the request; silently dropping
// a vote would corrupt the visible totals.
func (o *Overlay) RecordVote(ctx context.Context, venueID, userID uint, activity string, vote bool) (*VoteResult, error) {
	venue, err := o.venues.ByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, types.ErrNotFound
	}

	now := time.Now()
	if err := o.store.Upsert(ctx, &models.ActivityVote{
		VenueID:      venueID,
		UserID:       userID,
		ActivityName: activity,
		Vote:         vote,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return nil, err
	}
	metrics.VotesRecordedTotal.Inc()

	totals, err := o.store.TotalsForVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	verified, needs := DeriveVerification(venue.AIConfidenceScores, totals)
	venue.VerifiedActivities = verified
	venue.NeedsVerification = needs
	if err := o.venues.Save(ctx, venue); err != nil {
		return nil, err
	}

	o.logger.Info("vote recorded",
		zap.Uint("venue_id", venueID),
		zap.String("activity", activity),
		zap.Bool("vote", vote))

	return &VoteResult{
		Activity:           activity,
		Totals:             totals[activity],
		VerifiedActivities: verified,
		NeedsVerification:  needs,
	}, nil
}

// TotalsForVenue exposes the current per-activity tallies.
func (o *Overlay) TotalsForVenue(ctx context.Context, venueID uint) (map[string]Totals, error) {
	return o.store.TotalsForVenue(ctx, venueID)
}

// DeriveVerification recomputes the verified activity set and whether the
// venue still carries ambiguous signal.
func DeriveVerification(confidence models.ConfidenceMap, totals map[string]Totals) ([]string, bool) {
	activities := make(map[string]struct{}, len(confidence)+len(totals))
	for a := range confidence {
		activities[a] = struct{}{}
	}
	for a := range totals {
		activities[a] = struct{}{}
	}

	verified := make([]string, 0)
	needs := false
	for activity := range activities {
		t := totals[activity]
		conf := confidence[activity]

		switch {
		case t.Yes-t.No >= verifyMargin,
			conf >= confidenceFloor && t.Yes > t.No:
			verified = append(verified, activity)
		case t.No-t.Yes >= rejectMargin:
			// Clearly rejected; no flag needed.
		case t.Yes+t.No > 0 || conf >= 0.3:
			needs = true
		}
	}
	return verified, needs
}

// Score combines classifier confidence, community votes, and query match
// bonuses into the deterministic ranking score.
func Score(aiConfidence float64, yes, no int, categoryMatch, keywordMatch bool) float64 {
	score := aiConfidence*0.6 + float64(yes)*20 - float64(no)*10
	if categoryMatch {
		score += 15
	}
	if keywordMatch {
		score += 15
	}
	return score
}
