package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"onyx/internal/models"
)

// WatchLaterRepository handles database operations for watch-later items.
type WatchLaterRepository struct {
	db *sqlx.DB
}

// NewWatchLaterRepository creates a new WatchLaterRepository.
func NewWatchLaterRepository(db *sqlx.DB) *WatchLaterRepository {
	return &WatchLaterRepository{db: db}
}

type watchLaterRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	MovieID    int            `db:"movie_id"`
	MovieTitle string         `db:"movie_title"`
	PosterPath string         `db:"poster_path"`
	Status     string         `db:"status"`
	Priority   string         `db:"priority"`
	Reason     sql.NullString `db:"reason"`
	Tags       string         `db:"tags"`
	Mood       sql.NullString `db:"mood"`
	AddedAt    int64          `db:"added_at"`
	Runtime    sql.NullInt64  `db:"runtime"`
}

const watchLaterColumns = `id, user_id, movie_id, movie_title, poster_path, status, priority,
	reason, tags, mood, added_at, runtime`

func (r watchLaterRow) toModel() (models.WatchLaterItem, error) {
	item := models.WatchLaterItem{
		ID:         r.ID,
		UserID:     r.UserID,
		MovieID:    r.MovieID,
		MovieTitle: r.MovieTitle,
		PosterPath: r.PosterPath,
		Status:     models.WatchLaterStatus(r.Status),
		Priority:   models.WatchLaterPriority(r.Priority),
		AddedAt:    r.AddedAt,
		Tags:       []string{},
	}
	if r.Reason.Valid {
		item.Reason = &r.Reason.String
	}
	if r.Mood.Valid {
		mood := models.WatchLaterMood(r.Mood.String)
		item.Mood = &mood
	}
	if r.Runtime.Valid {
		runtime := int(r.Runtime.Int64)
		item.Runtime = &runtime
	}
	if r.Tags != "" {
		if err := json.Unmarshal([]byte(r.Tags), &item.Tags); err != nil {
			return item, fmt.Errorf("decode tags of %s: %w", r.ID, err)
		}
	}
	return item, nil
}

// Create inserts a watch-later item. ID, UserID and AddedAt must be set.
func (r *WatchLaterRepository) Create(ctx context.Context, item *models.WatchLaterItem) error {
	tags, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO watch_later (`+watchLaterColumns+`)
		VALUES (:id, :user_id, :movie_id, :movie_title, :poster_path, :status, :priority,
			:reason, :tags, :mood, :added_at, :runtime)
	`, map[string]any{
		"id":          item.ID,
		"user_id":     item.UserID,
		"movie_id":    item.MovieID,
		"movie_title": item.MovieTitle,
		"poster_path": item.PosterPath,
		"status":      string(item.Status),
		"priority":    string(item.Priority),
		"reason":      item.Reason,
		"tags":        tags,
		"mood":        moodValue(item.Mood),
		"added_at":    item.AddedAt,
		"runtime":     item.Runtime,
	})
	if err != nil {
		return fmt.Errorf("failed to insert watch-later item: %w", err)
	}
	return nil
}

// ListByUser returns all items owned by userID, most recently added first.
func (r *WatchLaterRepository) ListByUser(ctx context.Context, userID string) ([]models.WatchLaterItem, error) {
	var rows []watchLaterRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+watchLaterColumns+`
		FROM watch_later
		WHERE user_id = ?
		ORDER BY added_at DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch-later items: %w", err)
	}

	items := make([]models.WatchLaterItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Get returns the item with the given id if userID owns it, or
// sql.ErrNoRows.
func (r *WatchLaterRepository) Get(ctx context.Context, userID, id string) (*models.WatchLaterItem, error) {
	var row watchLaterRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+watchLaterColumns+`
		FROM watch_later
		WHERE id = ? AND user_id = ?
	`), id, userID)
	if err != nil {
		return nil, err
	}
	item, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ExistsForMovie reports whether userID already tracks movieID.
func (r *WatchLaterRepository) ExistsForMovie(ctx context.Context, userID string, movieID int) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT COUNT(*) FROM watch_later WHERE user_id = ? AND movie_id = ?
	`), userID, movieID)
	if err != nil {
		return false, fmt.Errorf("failed to count watch-later items: %w", err)
	}
	return count > 0, nil
}

// Update merges the supplied fields into the item (id, userID). It reports
// whether a row matched.
func (r *WatchLaterRepository) Update(ctx context.Context, userID, id string, upd models.UpdateWatchLaterRequest) (bool, error) {
	var tags *string
	if upd.Tags != nil {
		encoded, err := encodeTags(*upd.Tags)
		if err != nil {
			return false, err
		}
		tags = &encoded
	}

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE watch_later SET
			status = COALESCE(:status, status),
			priority = COALESCE(:priority, priority),
			reason = COALESCE(:reason, reason),
			tags = COALESCE(:tags, tags),
			mood = COALESCE(:mood, mood),
			runtime = COALESCE(:runtime, runtime)
		WHERE id = :id AND user_id = :user_id
	`, map[string]any{
		"status":   statusValue(upd.Status),
		"priority": priorityValue(upd.Priority),
		"reason":   upd.Reason,
		"tags":     tags,
		"mood":     moodValue(upd.Mood),
		"runtime":  upd.Runtime,
		"id":       id,
		"user_id":  userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to update watch-later item: %w", err)
	}
	return affected(res)
}

// Delete removes the item (id, userID). It reports whether a row matched.
func (r *WatchLaterRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM watch_later WHERE id = ? AND user_id = ?
	`), id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete watch-later item: %w", err)
	}
	return affected(res)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func statusValue(s *models.WatchLaterStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func priorityValue(p *models.WatchLaterPriority) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}

func moodValue(m *models.WatchLaterMood) *string {
	if m == nil {
		return nil
	}
	v := string(*m)
	return &v
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
