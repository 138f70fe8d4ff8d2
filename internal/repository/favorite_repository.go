package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"onyx/internal/models"
)

// FavoriteRepository handles database operations for movie and actor
// favorites. Both tables are keyed by (user_id, entity id), so adding a
// favorite twice never creates a second row.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

type favoriteRow struct {
	UserID   string `db:"user_id"`
	EntityID int    `db:"entity_id"`
	Snapshot string `db:"snapshot"`
	AddedAt  int64  `db:"added_at"`
}

// AddMovie stores a favorite unless the pair already exists. It reports
// whether a row was inserted.
func (r *FavoriteRepository) AddMovie(ctx context.Context, fav models.FavoriteMovie) (bool, error) {
	snapshot, err := json.Marshal(fav.Movie)
	if err != nil {
		return false, fmt.Errorf("encode movie snapshot: %w", err)
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO movie_favorites (user_id, movie_id, movie, added_at)
		VALUES (:user_id, :movie_id, :movie, :added_at)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`, map[string]any{
		"user_id":  fav.UserID,
		"movie_id": fav.MovieID,
		"movie":    string(snapshot),
		"added_at": fav.AddedAt,
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert movie favorite: %w", err)
	}
	return affected(res)
}

// RemoveMovie deletes the (userID, movieID) favorite if present.
func (r *FavoriteRepository) RemoveMovie(ctx context.Context, userID string, movieID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM movie_favorites WHERE user_id = ? AND movie_id = ?
	`), userID, movieID)
	if err != nil {
		return false, fmt.Errorf("failed to delete movie favorite: %w", err)
	}
	return affected(res)
}

// HasMovie reports whether userID favorited movieID.
func (r *FavoriteRepository) HasMovie(ctx context.Context, userID string, movieID int) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM movie_favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
}

// GetMovie returns the (userID, movieID) favorite or sql.ErrNoRows.
func (r *FavoriteRepository) GetMovie(ctx context.Context, userID string, movieID int) (*models.FavoriteMovie, error) {
	var row favoriteRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT user_id, movie_id AS entity_id, movie AS snapshot, added_at
		FROM movie_favorites
		WHERE user_id = ? AND movie_id = ?
	`), userID, movieID)
	if err != nil {
		return nil, err
	}
	fav := &models.FavoriteMovie{UserID: row.UserID, MovieID: row.EntityID, AddedAt: row.AddedAt}
	if err := json.Unmarshal([]byte(row.Snapshot), &fav.Movie); err != nil {
		return nil, fmt.Errorf("decode movie snapshot %d: %w", row.EntityID, err)
	}
	return fav, nil
}

// ListMovies returns the user's favorite movies, most recent first.
func (r *FavoriteRepository) ListMovies(ctx context.Context, userID string) ([]models.FavoriteMovie, error) {
	var rows []favoriteRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT user_id, movie_id AS entity_id, movie AS snapshot, added_at
		FROM movie_favorites
		WHERE user_id = ?
		ORDER BY added_at DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie favorites: %w", err)
	}

	favs := make([]models.FavoriteMovie, 0, len(rows))
	for _, row := range rows {
		fav := models.FavoriteMovie{UserID: row.UserID, MovieID: row.EntityID, AddedAt: row.AddedAt}
		if err := json.Unmarshal([]byte(row.Snapshot), &fav.Movie); err != nil {
			return nil, fmt.Errorf("decode movie snapshot %d: %w", row.EntityID, err)
		}
		favs = append(favs, fav)
	}
	return favs, nil
}

// AddActor stores an actor favorite unless the pair already exists. It
// reports whether a row was inserted.
func (r *FavoriteRepository) AddActor(ctx context.Context, fav models.FavoriteActor) (bool, error) {
	snapshot, err := json.Marshal(fav.Actor)
	if err != nil {
		return false, fmt.Errorf("encode actor snapshot: %w", err)
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO actor_favorites (user_id, actor_id, actor, added_at)
		VALUES (:user_id, :actor_id, :actor, :added_at)
		ON CONFLICT (user_id, actor_id) DO NOTHING
	`, map[string]any{
		"user_id":  fav.UserID,
		"actor_id": fav.ActorID,
		"actor":    string(snapshot),
		"added_at": fav.AddedAt,
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert actor favorite: %w", err)
	}
	return affected(res)
}

// RemoveActor deletes the (userID, actorID) favorite if present.
func (r *FavoriteRepository) RemoveActor(ctx context.Context, userID string, actorID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM actor_favorites WHERE user_id = ? AND actor_id = ?
	`), userID, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to delete actor favorite: %w", err)
	}
	return affected(res)
}

// HasActor reports whether userID favorited actorID.
func (r *FavoriteRepository) HasActor(ctx context.Context, userID string, actorID int) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM actor_favorites WHERE user_id = ? AND actor_id = ?`, userID, actorID)
}

// GetActor returns the (userID, actorID) favorite or sql.ErrNoRows.
func (r *FavoriteRepository) GetActor(ctx context.Context, userID string, actorID int) (*models.FavoriteActor, error) {
	var row favoriteRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT user_id, actor_id AS entity_id, actor AS snapshot, added_at
		FROM actor_favorites
		WHERE user_id = ? AND actor_id = ?
	`), userID, actorID)
	if err != nil {
		return nil, err
	}
	fav := &models.FavoriteActor{UserID: row.UserID, ActorID: row.EntityID, AddedAt: row.AddedAt}
	if err := json.Unmarshal([]byte(row.Snapshot), &fav.Actor); err != nil {
		return nil, fmt.Errorf("decode actor snapshot %d: %w", row.EntityID, err)
	}
	return fav, nil
}

// ListActors returns the user's favorite actors, most recent first.
func (r *FavoriteRepository) ListActors(ctx context.Context, userID string) ([]models.FavoriteActor, error) {
	var rows []favoriteRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT user_id, actor_id AS entity_id, actor AS snapshot, added_at
		FROM actor_favorites
		WHERE user_id = ?
		ORDER BY added_at DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actor favorites: %w", err)
	}

	favs := make([]models.FavoriteActor, 0, len(rows))
	for _, row := range rows {
		fav := models.FavoriteActor{UserID: row.UserID, ActorID: row.EntityID, AddedAt: row.AddedAt}
		if err := json.Unmarshal([]byte(row.Snapshot), &fav.Actor); err != nil {
			return nil, fmt.Errorf("decode actor snapshot %d: %w", row.EntityID, err)
		}
		favs = append(favs, fav)
	}
	return favs, nil
}

func (r *FavoriteRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count > 0, nil
}
