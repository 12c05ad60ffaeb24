package votes

import (
	"context"
	"testing"

	"github.com/roamio/discovery-api/models"
	"github.com/roamio/discovery-api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVoteStore struct {
	votes map[[2]uint]map[string]bool // (venue, user) -> activity -> vote
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{votes: make(map[[2]uint]map[string]bool)}
}

func (s *fakeVoteStore) Upsert(_ context.Context, v *models.ActivityVote) error {
	key := [2]uint{v.VenueID, v.UserID}
	if s.votes[key] == nil {
		s.votes[key] = make(map[string]bool)
	}
	s.votes[key][v.ActivityName] = v.Vote
	return nil
}

func (s *fakeVoteStore) TotalsForVenue(_ context.Context, venueID uint) (map[string]Totals, error) {
	out := make(map[string]Totals)
	for key, byActivity := range s.votes {
		if key[0] != venueID {
			continue
		}
		for activity, vote := range byActivity {
			t := out[activity]
			if vote {
				t.Yes++
			} else {
				t.No++
			}
			out[activity] = t
		}
	}
	return out, nil
}

type fakeVenueStore struct {
	venues map[uint]*models.Venue
	saves  int
}

func (s *fakeVenueStore) ByID(_ context.Context, id uint) (*models.Venue, error) {
	return s.venues[id], nil
}

func (s *fakeVenueStore) Save(_ context.Context, v *models.Venue) error {
	s.saves++
	s.venues[v.ID] = v
	return nil
}

func newOverlayFixture(conf models.ConfidenceMap) (*Overlay, *fakeVoteStore, *fakeVenueStore) {
	votes := newFakeVoteStore()
	venues := &fakeVenueStore{venues: map[uint]*models.Venue{
		7: {ID: 7, PlaceID: 3, AIConfidenceScores: conf},
	}}
	return NewOverlay(votes, venues, zap.NewNop()), votes, venues
}

func TestRecordVoteReplacesPriorVote(t *testing.T) {
	overlay, _, _ := newOverlayFixture(models.ConfidenceMap{"climbing": 0.6})
	ctx := context.Background()

	_, err := overlay.RecordVote(ctx, 7, 42, "climbing", true)
	require.NoError(t, err)

	// Same user flips their vote; totals must reflect one vote, not two.
	res, err := overlay.RecordVote(ctx, 7, 42, "climbing", false)
	require.NoError(t, err)
	assert.Equal(t, Totals{Yes: 0, No: 1}, res.Totals)
}

func TestRecordVoteVerifiesOnMargin(t *testing.T) {
	overlay, _, venues := newOverlayFixture(models.ConfidenceMap{"climbing": 0.6})
	ctx := context.Background()

	var res *VoteResult
	var err error
	for user := uint(1); user <= 3; user++ {
		res, err = overlay.RecordVote(ctx, 7, user, "climbing", true)
		require.NoError(t, err)
	}

	assert.Equal(t, Totals{Yes: 3, No: 0}, res.Totals)
	assert.Contains(t, res.VerifiedActivities, "climbing")
	assert.False(t, res.NeedsVerification)
	assert.Contains(t, venues.venues[7].VerifiedActivities, "climbing", "verification state is persisted on the venue")
}

func TestRecordVoteUnknownVenue(t *testing.T) {
	overlay, _, _ := newOverlayFixture(nil)

	_, err := overlay.RecordVote(context.Background(), 99, 1, "climbing", true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeriveVerification(t *testing.T) {
	conf := models.ConfidenceMap{
		"climbing": 0.9,  // high confidence
		"yoga":     0.5,  // ambiguous
		"skating":  0.4,  // ambiguous, will be voted down
		"fishing":  0.05, // noise, no votes
	}
	totals := map[string]Totals{
		"climbing": {Yes: 1, No: 0},
		"yoga":     {Yes: 1, No: 1},
		"skating":  {Yes: 0, No: 3},
		"tennis":   {Yes: 4, No: 1}, // vote-only activity, clear margin
	}

	verified, needs := DeriveVerification(conf, totals)

	assert.ElementsMatch(t, []string{"climbing", "tennis"}, verified)
	assert.True(t, needs, "yoga still carries ambiguous signal")
}

func TestDeriveVerificationHighConfidenceNeedsPositiveVotes(t *testing.T) {
	verified, _ := DeriveVerification(models.ConfidenceMap{"climbing": 0.9}, nil)
	assert.Empty(t, verified, "confidence alone never verifies without a supporting vote")

	verified, _ = DeriveVerification(
		models.ConfidenceMap{"climbing": 0.9},
		map[string]Totals{"climbing": {Yes: 1}})
	assert.Equal(t, []string{"climbing"}, verified)
}

func TestScoreFormula(t *testing.T) {
	assert.InDelta(t, 45.54, Score(0.9, 2, 1, true, false), 1e-9)
	assert.InDelta(t, 0.0, Score(0, 0, 0, false, false), 1e-9)
	assert.InDelta(t, 30.6, Score(1.0, 0, 0, true, true), 1e-9)
	assert.InDelta(t, -10.0, Score(0, 0, 1, false, false), 1e-9)
}

func TestScoreIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, Score(0.73, 5, 2, true, true), Score(0.73, 5, 2, true, true))
	}
}
