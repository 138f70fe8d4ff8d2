package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"onyx/internal/models"
)

// ProfileRepository handles database operations for user profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileRow struct {
	UserID              string         `db:"user_id"`
	Name                sql.NullString `db:"name"`
	Avatar              sql.NullString `db:"avatar"`
	AvatarConfig        sql.NullString `db:"avatar_config"`
	AvatarConfigVersion sql.NullInt64  `db:"avatar_config_version"`
	Preferences         sql.NullString `db:"preferences"`
	UpdatedAt           int64          `db:"updated_at"`
}

// ProfilePatch is a partial profile write; nil fields keep stored values.
type ProfilePatch struct {
	Name                *string
	Avatar              *string
	AvatarConfig        json.RawMessage
	AvatarConfigVersion *int
	Preferences         *models.Preferences
}

// Get returns the user's profile or sql.ErrNoRows. Columns never written
// are filled with defaults.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT user_id, name, avatar, avatar_config, avatar_config_version, preferences, updated_at
		FROM profiles WHERE user_id = ?
	`), userID)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:              row.UserID,
		Name:                row.Name.String,
		Avatar:              row.Avatar.String,
		AvatarConfigVersion: 1,
		Preferences:         models.DefaultPreferences(),
		UpdatedAt:           row.UpdatedAt,
	}
	if row.AvatarConfig.Valid && row.AvatarConfig.String != "" {
		profile.AvatarConfig = json.RawMessage(row.AvatarConfig.String)
	}
	if row.AvatarConfigVersion.Valid {
		profile.AvatarConfigVersion = int(row.AvatarConfigVersion.Int64)
	}
	if row.Preferences.Valid && row.Preferences.String != "" {
		if err := json.Unmarshal([]byte(row.Preferences.String), &profile.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences of %s: %w", userID, err)
		}
	}
	return profile, nil
}

// Upsert creates the profile or merges the non-nil fields of patch into it.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, patch ProfilePatch, now int64) error {
	var avatarConfig, preferences *string
	if len(patch.AvatarConfig) > 0 {
		s := string(patch.AvatarConfig)
		avatarConfig = &s
	}
	if patch.Preferences != nil {
		b, err := json.Marshal(patch.Preferences)
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
		s := string(b)
		preferences = &s
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO profiles (user_id, name, avatar, avatar_config, avatar_config_version, preferences, updated_at)
		VALUES (:user_id, :name, :avatar, :avatar_config, :avatar_config_version, :preferences, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			name = COALESCE(excluded.name, profiles.name),
			avatar = COALESCE(excluded.avatar, profiles.avatar),
			avatar_config = COALESCE(excluded.avatar_config, profiles.avatar_config),
			avatar_config_version = COALESCE(excluded.avatar_config_version, profiles.avatar_config_version),
			preferences = COALESCE(excluded.preferences, profiles.preferences),
			updated_at = excluded.updated_at
	`, map[string]any{
		"user_id":               userID,
		"name":                  patch.Name,
		"avatar":                patch.Avatar,
		"avatar_config":         avatarConfig,
		"avatar_config_version": patch.AvatarConfigVersion,
		"preferences":           preferences,
		"updated_at":            now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
