package votes

import (
	"context"

	"github.com/roamio/discovery-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists votes with upsert-on-conflict on the natural key.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Upsert(ctx context.Context, vote *models.ActivityVote) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "venue_id"}, {Name: "user_id"}, {Name: "activity_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote", "updated_at"}),
	}).Create(vote).Error
}

func (s *GormStore) TotalsForVenue(ctx context.Context, venueID uint) (map[string]Totals, error) {
	var rows []struct {
		ActivityName string
		Yes          int
		No           int
	}
	err := s.DB.WithContext(ctx).Model(&models.ActivityVote{}).
		Select("activity_name, COUNT(*) FILTER (WHERE vote) AS yes, COUNT(*) FILTER (WHERE NOT vote) AS no").
		Where("venue_id = ?", venueID).
		Group("activity_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]Totals, len(rows))
	for _, r := range rows {
		totals[r.ActivityName] = Totals{Yes: r.Yes, No: r.No}
	}
	return totals, nil
}
