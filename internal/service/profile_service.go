package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"onyx/internal/models"
	"onyx/internal/repository"
)

// ProfileService manages display settings and discovery preferences.
// The avatar config is stored as the client sent it.
type ProfileService struct {
	repo   *repository.ProfileRepository
	notify Notifier
	now    clock
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo *repository.ProfileRepository, notify Notifier) *ProfileService {
	return &ProfileService{repo: repo, notify: notifierOrNop(notify), now: time.Now}
}

// Get returns the caller's profile. A user who never saved one gets the
// defaults.
func (s *ProfileService) Get(ctx context.Context) (*models.Profile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.Get(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Profile{
			UserID:              userID,
			AvatarConfigVersion: 1,
			Preferences:         models.DefaultPreferences(),
		}, nil
	}
	return profile, err
}

// Update merges the provided fields into the caller's profile.
func (s *ProfileService) Update(ctx context.Context, req models.UpdateProfileRequest) (*models.Profile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	patch := repository.ProfilePatch{
		Name:                req.Name,
		Avatar:              req.Avatar,
		AvatarConfigVersion: req.AvatarConfigVersion,
	}
	if cfg := bytes.TrimSpace(req.AvatarConfig); len(cfg) > 0 && !bytes.Equal(cfg, []byte("null")) {
		if !json.Valid(cfg) {
			return nil, invalid("avatarConfig", "avatarConfig must be valid JSON")
		}
		patch.AvatarConfig = cfg
	}
	return s.write(ctx, userID, patch)
}

// UpdatePreferences replaces the caller's preferences wholesale.
func (s *ProfileService) UpdatePreferences(ctx context.Context, prefs models.Preferences) (*models.Profile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(prefs); err != nil {
		return nil, err
	}
	if prefs.Genres == nil {
		prefs.Genres = []int{}
	}
	if prefs.Language == "" {
		prefs.Language = models.DefaultPreferences().Language
	}
	return s.write(ctx, userID, repository.ProfilePatch{Preferences: &prefs})
}

func (s *ProfileService) write(ctx context.Context, userID string, patch repository.ProfilePatch) (*models.Profile, error) {
	now := s.now.millis()
	if err := s.repo.Upsert(ctx, userID, patch, now); err != nil {
		return nil, err
	}
	s.notify.Publish(ctx, userID, models.ChangeEvent{
		Collection: models.CollectionProfile,
		Op:         models.OpChanged,
		ID:         userID,
		At:         now,
	})
	return s.Get(ctx)
}
