package repository

import (
	"context"
	"fmt"

	"kollab-api/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Store) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, "user profile")
	}
	return &p, nil
}

// GetProfiles loads the profiles whose ids are in ids with one membership query.
// Missing ids are simply absent from the result.
func (s *Store) GetProfiles(ctx context.Context, ids []string) ([]models.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxInFilter {
		return nil, fmt.Errorf("user profiles: %d ids exceeds membership filter limit of %d", len(ids), MaxInFilter)
	}
	var out []models.UserProfile
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, wrap("user profiles", err)
	}
	return out, nil
}

// UpsertProfile inserts p or refreshes its display attributes. The identity
// key and the original created timestamp are never rewritten.
func (s *Store) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "avatar_url", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return wrap("upsert user profile", err)
	}
	return nil
}
