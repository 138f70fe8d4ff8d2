package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"onyx/internal/models"
	"onyx/internal/repository"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

// InteractionService records ratings, reviews, notes and watched flags.
// There is at most one interaction per (user, movie); writes merge into it.
type InteractionService struct {
	repo   *repository.InteractionRepository
	notify Notifier
	now    clock
}

// NewInteractionService creates a new InteractionService.
func NewInteractionService(repo *repository.InteractionRepository, notify Notifier) *InteractionService {
	return &InteractionService{repo: repo, notify: notifierOrNop(notify), now: time.Now}
}

// Interact creates or updates the caller's interaction with req.MovieID and
// returns the merged record.
func (s *InteractionService) Interact(ctx context.Context, req models.InteractRequest) (*models.UserInteraction, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := s.now.millis()
	if err := s.repo.Upsert(ctx, userID, req, now); err != nil {
		return nil, err
	}
	inter, err := s.repo.Get(ctx, userID, req.MovieID)
	if err != nil {
		return nil, fmt.Errorf("read back interaction: %w", err)
	}

	s.notify.Publish(ctx, userID, models.ChangeEvent{
		Collection: models.CollectionInteractions,
		Op:         models.OpChanged,
		ID:         strconv.Itoa(req.MovieID),
		At:         now,
	})
	return inter, nil
}

// Get returns the caller's interaction with movieID or ErrNotFound.
func (s *InteractionService) Get(ctx context.Context, movieID int) (*models.UserInteraction, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if movieID <= 0 {
		return nil, invalid("movieId", "movieId must be greater than 0")
	}
	inter, err := s.repo.Get(ctx, userID, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inter, err
}

// List returns every interaction the caller has recorded.
func (s *InteractionService) List(ctx context.Context) ([]models.UserInteraction, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

// RecentActivity returns the caller's most recently touched interactions.
// A non-positive limit means the default; larger limits are capped.
func (s *InteractionService) RecentActivity(ctx context.Context, limit int) ([]models.UserInteraction, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.repo.ListRecent(ctx, userID, limit)
}

// Stats summarizes the caller's interactions. The average rating is
// rounded to one decimal and is 0 when nothing is rated.
func (s *InteractionService) Stats(ctx context.Context) (*models.Stats, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(all), nil
}

func summarize(interactions []models.UserInteraction) *models.Stats {
	stats := &models.Stats{}
	sum := 0
	for _, inter := range interactions {
		if inter.IsWatched != nil && *inter.IsWatched {
			stats.TotalWatched++
		}
		if inter.Rating != nil {
			stats.TotalRated++
			sum += *inter.Rating
		}
		if inter.Review != nil && *inter.Review != "" {
			stats.TotalReviews++
		}
	}
	if stats.TotalRated > 0 {
		avg := float64(sum) / float64(stats.TotalRated)
		stats.AverageRating = math.Round(avg*10) / 10
	}
	return stats
}
