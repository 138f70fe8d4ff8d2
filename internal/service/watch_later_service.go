package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"onyx/internal/models"
	"onyx/internal/repository"
)

// WatchLaterService manages the caller's watch-later list.
type WatchLaterService struct {
	repo   *repository.WatchLaterRepository
	notify Notifier
	now    clock
}

// NewWatchLaterService creates a new WatchLaterService.
func NewWatchLaterService(repo *repository.WatchLaterRepository, notify Notifier) *WatchLaterService {
	return &WatchLaterService{repo: repo, notify: notifierOrNop(notify), now: time.Now}
}

// Add stores a new item for the caller. The id, owner and timestamp are
// assigned here regardless of what the client sent.
func (s *WatchLaterService) Add(ctx context.Context, req models.AddWatchLaterRequest) (*models.WatchLaterItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	item := &models.WatchLaterItem{
		ID:         uuid.NewString(),
		UserID:     userID,
		MovieID:    req.MovieID,
		MovieTitle: req.MovieTitle,
		PosterPath: req.PosterPath,
		Status:     req.Status,
		Priority:   req.Priority,
		Reason:     req.Reason,
		Tags:       tags,
		Mood:       req.Mood,
		AddedAt:    s.now.millis(),
		Runtime:    req.Runtime,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create watch-later item: %w", err)
	}

	s.publish(ctx, userID, models.OpAdded, item.ID)
	return item, nil
}

// List returns the caller's items, most recently added first.
func (s *WatchLaterService) List(ctx context.Context) ([]models.WatchLaterItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get returns one of the caller's items or ErrNotFound.
func (s *WatchLaterService) Get(ctx context.Context, itemID string) (*models.WatchLaterItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.Get(ctx, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// Contains reports whether the caller already has movieID on their list.
func (s *WatchLaterService) Contains(ctx context.Context, movieID int) (bool, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return false, err
	}
	if movieID <= 0 {
		return false, invalid("movieId", "movieId must be greater than 0")
	}
	return s.repo.ExistsForMovie(ctx, userID, movieID)
}

// Update applies a partial update. Unknown ids and items owned by other
// users are ignored without error.
func (s *WatchLaterService) Update(ctx context.Context, itemID string, upd models.UpdateWatchLaterRequest) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(itemID) == "" {
		return invalid("itemId", "itemId is required")
	}
	if err := validateStruct(upd); err != nil {
		return err
	}
	if upd.IsEmpty() {
		return nil
	}

	changed, err := s.repo.Update(ctx, userID, itemID, upd)
	if err != nil {
		return fmt.Errorf("update watch-later item: %w", err)
	}
	if changed {
		s.publish(ctx, userID, models.OpChanged, itemID)
	}
	return nil
}

// Remove deletes an item. Removing something that is not there succeeds.
func (s *WatchLaterService) Remove(ctx context.Context, itemID string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(itemID) == "" {
		return invalid("itemId", "itemId is required")
	}

	removed, err := s.repo.Delete(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("delete watch-later item: %w", err)
	}
	if removed {
		s.publish(ctx, userID, models.OpRemoved, itemID)
	}
	return nil
}

func (s *WatchLaterService) publish(ctx context.Context, userID, op, id string) {
	s.notify.Publish(ctx, userID, models.ChangeEvent{
		Collection: models.CollectionWatchLater,
		Op:         op,
		ID:         id,
		At:         s.now.millis(),
	})
}
