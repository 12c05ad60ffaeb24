package classifier

import (
	"context"
	"errors"

	"github.com/roamio/discovery-api/models"
	"gorm.io/gorm"
)

// GormVenueStore persists venues through gorm.
type GormVenueStore struct {
	DB *gorm.DB
}

func NewGormVenueStore(db *gorm.DB) *GormVenueStore {
	return &GormVenueStore{DB: db}
}

func (s *GormVenueStore) ByPlaceID(ctx context.Context, placeID uint) (*models.Venue, error) {
	var venue models.Venue
	err := s.DB.WithContext(ctx).Where("place_id = ?", placeID).First(&venue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (s *GormVenueStore) ByID(ctx context.Context, id uint) (*models.Venue, error) {
	var venue models.Venue
	err := s.DB.WithContext(ctx).First(&venue, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (s *GormVenueStore) Save(ctx context.Context, venue *models.Venue) error {
	return s.DB.WithContext(ctx).Save(venue).Error
}
