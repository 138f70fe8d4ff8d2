package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"onyx/internal/models"
)

// InteractionRepository handles database operations for user interactions.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

type interactionRow struct {
	UserID      string         `db:"user_id"`
	MovieID     int            `db:"movie_id"`
	MovieTitle  sql.NullString `db:"movie_title"`
	PosterPath  sql.NullString `db:"poster_path"`
	ReleaseDate sql.NullString `db:"release_date"`
	Rating      sql.NullInt64  `db:"rating"`
	Review      sql.NullString `db:"review"`
	Notes       sql.NullString `db:"notes"`
	IsWatched   sql.NullBool   `db:"is_watched"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

const interactionColumns = `user_id, movie_id, movie_title, poster_path, release_date,
	rating, review, notes, is_watched, created_at, updated_at`

func (r interactionRow) toModel() models.UserInteraction {
	inter := models.UserInteraction{
		UserID:    r.UserID,
		MovieID:   r.MovieID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	inter.MovieTitle = nullString(r.MovieTitle)
	inter.PosterPath = nullString(r.PosterPath)
	inter.ReleaseDate = nullString(r.ReleaseDate)
	inter.Review = nullString(r.Review)
	inter.Notes = nullString(r.Notes)
	if r.Rating.Valid {
		rating := int(r.Rating.Int64)
		inter.Rating = &rating
	}
	if r.IsWatched.Valid {
		watched := r.IsWatched.Bool
		inter.IsWatched = &watched
	}
	return inter
}

// Upsert creates the (userID, movieID) interaction or merges the non-nil
// fields of req into it. createdAt is only written on insert; updatedAt
// is always set to now.
func (r *InteractionRepository) Upsert(ctx context.Context, userID string, req models.InteractRequest, now int64) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO user_interactions (`+interactionColumns+`)
		VALUES (:user_id, :movie_id, :movie_title, :poster_path, :release_date,
			:rating, :review, :notes, :is_watched, :now, :now)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			movie_title = COALESCE(excluded.movie_title, user_interactions.movie_title),
			poster_path = COALESCE(excluded.poster_path, user_interactions.poster_path),
			release_date = COALESCE(excluded.release_date, user_interactions.release_date),
			rating = COALESCE(excluded.rating, user_interactions.rating),
			review = COALESCE(excluded.review, user_interactions.review),
			notes = COALESCE(excluded.notes, user_interactions.notes),
			is_watched = COALESCE(excluded.is_watched, user_interactions.is_watched),
			updated_at = excluded.updated_at
	`, map[string]any{
		"user_id":      userID,
		"movie_id":     req.MovieID,
		"movie_title":  req.MovieTitle,
		"poster_path":  req.PosterPath,
		"release_date": req.ReleaseDate,
		"rating":       req.Rating,
		"review":       req.Review,
		"notes":        req.Notes,
		"is_watched":   req.IsWatched,
		"now":          now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert interaction: %w", err)
	}
	return nil
}

// Get returns the (userID, movieID) interaction or sql.ErrNoRows.
func (r *InteractionRepository) Get(ctx context.Context, userID string, movieID int) (*models.UserInteraction, error) {
	var row interactionRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+interactionColumns+`
		FROM user_interactions
		WHERE user_id = ? AND movie_id = ?
	`), userID, movieID)
	if err != nil {
		return nil, err
	}
	inter := row.toModel()
	return &inter, nil
}

// ListByUser returns all of the user's interactions in creation order.
func (r *InteractionRepository) ListByUser(ctx context.Context, userID string) ([]models.UserInteraction, error) {
	return r.list(ctx, `
		SELECT `+interactionColumns+`
		FROM user_interactions
		WHERE user_id = ?
		ORDER BY created_at ASC, movie_id ASC
	`, userID)
}

// ListRecent returns the user's most recently updated interactions.
func (r *InteractionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.UserInteraction, error) {
	return r.list(ctx, `
		SELECT `+interactionColumns+`
		FROM user_interactions
		WHERE user_id = ?
		ORDER BY updated_at DESC
		LIMIT ?
	`, userID, limit)
}

func (r *InteractionRepository) list(ctx context.Context, query string, args ...any) ([]models.UserInteraction, error) {
	var rows []interactionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	interactions := make([]models.UserInteraction, 0, len(rows))
	for _, row := range rows {
		interactions = append(interactions, row.toModel())
	}
	return interactions, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
