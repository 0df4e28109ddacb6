package services

import (
	"context"
	"strings"

	"kollab-api/internal/models"
)

// ProfileCache is the part of the profile resolver that logins touch.
type ProfileCache interface {
	Invalidate(id string)
}

type AccountService struct {
	Deps
	cache ProfileCache
}

func NewAccountService(deps Deps, cache ProfileCache) *AccountService {
	return &AccountService{Deps: deps.withDefaults(), cache: cache}
}

// Identity is what the authentication provider hands over on login.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	AvatarURL   string
}

// Login upserts the caller's profile and drops any cached copy, including a
// cached "no such user" entry from before the first login.
func (s *AccountService) Login(ctx context.Context, id Identity) (*models.UserProfile, error) {
	id.ID = strings.TrimSpace(id.ID)
	if id.ID == "" {
		return nil, invalid("user id is required")
	}

	now := s.Now().UTC()
	p := &models.UserProfile{
		ID:          id.ID,
		DisplayName: strings.TrimSpace(id.DisplayName),
		Email:       strings.TrimSpace(id.Email),
		AvatarURL:   id.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.UpsertProfile(ctx, p); err != nil {
		return nil, classify(err)
	}
	s.cache.Invalidate(p.ID)

	stored, err := s.Store.GetProfile(ctx, p.ID)
	if err != nil {
		return nil, classify(err)
	}
	s.Log.Infow("user logged in", "userId", p.ID)
	return stored, nil
}
