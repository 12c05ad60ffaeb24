// Package classifier assigns confidence-scored activity labels to venues.
// Classification results carry their own TTL, independent of (and much longer
// than) place-data freshness.
package classifier

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/roamio/discovery-api/metrics"
	"github.com/roamio/discovery-api/models"
	"go.uber.org/zap"
)

// KnownActivities is the taxonomy the classifier scores against.
var KnownActivities = []string{
	"hiking", "swimming", "picnic", "climbing", "cycling",
	"playground", "skating", "fishing", "camping", "yoga",
	"running", "dog_walking", "basketball", "tennis", "football",
}

const systemPrompt = `You classify points of interest for a local-activity app.
Given a venue description, respond with a single JSON object mapping activity
names to a confidence between 0 and 1. Use only these activity names: %s.
Omit activities the venue clearly does not support. Respond with JSON only.`

// Result is one classification pass over a venue.
type Result struct {
	ActivityTags     []string           `json:"activityTags"`
	ConfidenceScores map[string]float64 `json:"confidenceScores"`
	ClassifiedAt     time.Time          `json:"classifiedAt"`
	FromCache        bool               `json:"fromCache"`
}

// VenueStore is the persistence surface the classifier needs.
type VenueStore interface {
	ByPlaceID(ctx context.Context, placeID uint) (*models.Venue, error)
	ByID(ctx context.Context, id uint) (*models.Venue, error)
	Save(ctx context.Context, venue *models.Venue) error
}

type Service struct {
	store     VenueStore
	inference Inference
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store VenueStore, inference Inference, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		inference: inference,
		ttl:       ttl,
		logger:    logger.Named("classifier"),
		now:       time.Now,
	}
}

// Classify scores the venue's supported activities. Without force, a result
// inside the classification TTL is returned unchanged; with force, the TTL is
// bypassed and the venue is rescored.
func (s *Service) Classify(ctx context.Context, place *models.Place, venue *models.Venue, force bool) (*Result, error) {
	now := s.now()

	if !force && venue.LastAIUpdate != nil && now.Sub(*venue.LastAIUpdate) < s.ttl {
		return &Result{
			ActivityTags:     venue.AIActivityTags,
			ConfidenceScores: venue.AIConfidenceScores,
			ClassifiedAt:     *venue.LastAIUpdate,
			FromCache:        true,
		}, nil
	}

	scores := s.score(ctx, place, venue)

	tags := make([]string, 0, len(scores))
	for activity, score := range scores {
		if score >= 0.5 {
			tags = append(tags, activity)
		}
	}

	venue.AIActivityTags = tags
	venue.AIConfidenceScores = scores
	venue.LastAIUpdate = &now
	if err := s.store.Save(ctx, venue); err != nil {
		return nil, err
	}

	return &Result{
		ActivityTags:     tags,
		ConfidenceScores: scores,
		ClassifiedAt:     now,
	}, nil
}

// EnsureClassified attaches classification to a place, creating the venue row
// if it does not exist yet. Used on the discovery path for new/stale entries.
func (s *Service) EnsureClassified(ctx context.Context, place *models.Place, description string) (*models.Venue, error) {
	venue, err := s.store.ByPlaceID(ctx, place.ID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		venue = &models.Venue{PlaceID: place.ID, RawDescription: description}
	} else if description != "" && venue.RawDescription == "" {
		venue.RawDescription = description
	}

	if _, err := s.Classify(ctx, place, venue, false); err != nil {
		return nil, err
	}
	return venue, nil
}

// score runs inference and falls back to keyword heuristics when the
// inference service is unavailable, so classification degrades instead of
// erroring.
func (s *Service) score(ctx context.Context, place *models.Place, venue *models.Venue) models.ConfidenceMap {
	if s.inference != nil {
		if scores, err := s.inferScores(ctx, place, venue); err == nil {
			return scores
		} else {
			s.logger.Warn("inference unavailable, using keyword fallback",
				zap.Uint("place_id", place.ID), zap.Error(err))
		}
	}
	return keywordScores(place, venue)
}

func (s *Service) inferScores(ctx context.Context, place *models.Place, venue *models.Venue) (models.ConfidenceMap, error) {
	var b strings.Builder
	b.WriteString("Name: " + place.Name + "\n")
	if len(place.Categories) > 0 {
		b.WriteString("Categories: " + strings.Join(place.Categories, ", ") + "\n")
	}
	if venue.RawDescription != "" {
		b.WriteString("Description: " + venue.RawDescription + "\n")
	}
	for i, review := range venue.RawReviews {
		if i >= 5 {
			break
		}
		b.WriteString("Review: " + review + "\n")
	}

	system := strings.Replace(systemPrompt, "%s", strings.Join(KnownActivities, ", "), 1)
	raw, err := s.inference.Complete(ctx, system, b.String())
	if err != nil {
		return nil, err
	}
	metrics.ClassifierRunsTotal.Inc()

	scores := models.ConfidenceMap{}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &scores); err != nil {
		return nil, err
	}
	for activity, score := range scores {
		if score < 0 {
			scores[activity] = 0
		} else if score > 1 {
			scores[activity] = 1
		}
	}
	return scores, nil
}

// extractJSON tolerates models that wrap the object in markdown fences.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// activityKeywords backs the deterministic fallback scorer.
var activityKeywords = map[string][]string{
	"hiking":      {"trail", "hike", "mountain", "forest"},
	"swimming":    {"pool", "swim", "beach", "lake"},
	"picnic":      {"picnic", "park", "garden", "bbq"},
	"climbing":    {"climb", "boulder", "crag"},
	"cycling":     {"bike", "cycling", "cycle path"},
	"playground":  {"playground", "slide", "swing"},
	"skating":     {"skate", "rink", "ramp"},
	"fishing":     {"fish", "pier", "angler"},
	"camping":     {"camp", "tent", "rv"},
	"yoga":        {"yoga", "studio", "wellness"},
	"running":     {"running", "track", "jog"},
	"dog_walking": {"dog", "off-leash", "dog park"},
	"basketball":  {"basketball", "court", "hoop"},
	"tennis":      {"tennis"},
	"football":    {"football", "soccer", "pitch"},
}

func keywordScores(place *models.Place, venue *models.Venue) models.ConfidenceMap {
	text := strings.ToLower(place.Name + " " +
		strings.Join(place.Categories, " ") + " " +
		venue.RawDescription + " " +
		strings.Join(venue.RawReviews, " "))

	scores := models.ConfidenceMap{}
	for activity, keywords := range activityKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > 0 {
			// One keyword hit is weak signal, saturate around three.
			score := 0.4 + 0.2*float64(hits)
			if score > 0.9 {
				score = 0.9
			}
			scores[activity] = score
		}
	}
	return scores
}
