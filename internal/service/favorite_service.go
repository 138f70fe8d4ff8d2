package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"onyx/internal/models"
	"onyx/internal/repository"
)

// FavoriteService manages movie and actor favorites. A (user, movie) or
// (user, actor) pair is stored at most once.
type FavoriteService struct {
	repo   *repository.FavoriteRepository
	notify Notifier
	now    clock
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(repo *repository.FavoriteRepository, notify Notifier) *FavoriteService {
	return &FavoriteService{repo: repo, notify: notifierOrNop(notify), now: time.Now}
}

// AddMovie favorites movie for the caller and returns the stored favorite.
// Adding an existing favorite is a no-op and keeps the original snapshot.
func (s *FavoriteService) AddMovie(ctx context.Context, movie models.Movie) (*models.FavoriteMovie, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if movie.ID <= 0 {
		return nil, invalid("id", "id must be greater than 0")
	}
	if strings.TrimSpace(movie.Title) == "" {
		return nil, invalid("title", "title is required")
	}

	added, err := s.repo.AddMovie(ctx, models.FavoriteMovie{
		UserID:  userID,
		MovieID: movie.ID,
		Movie:   movie,
		AddedAt: s.now.millis(),
	})
	if err != nil {
		return nil, err
	}
	if added {
		s.publish(ctx, userID, models.CollectionMovieFavorites, models.OpAdded, movie.ID)
	}
	return s.repo.GetMovie(ctx, userID, movie.ID)
}

// RemoveMovie unfavorites movieID. Missing favorites are ignored.
func (s *FavoriteService) RemoveMovie(ctx context.Context, movieID int) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if movieID <= 0 {
		return invalid("movieId", "movieId must be greater than 0")
	}

	removed, err := s.repo.RemoveMovie(ctx, userID, movieID)
	if err != nil {
		return err
	}
	if removed {
		s.publish(ctx, userID, models.CollectionMovieFavorites, models.OpRemoved, movieID)
	}
	return nil
}

// IsMovieFavorite reports whether the caller has favorited movieID.
func (s *FavoriteService) IsMovieFavorite(ctx context.Context, movieID int) (bool, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return false, err
	}
	if movieID <= 0 {
		return false, invalid("movieId", "movieId must be greater than 0")
	}
	return s.repo.HasMovie(ctx, userID, movieID)
}

// ListMovies returns the caller's favorite movies, newest first.
func (s *FavoriteService) ListMovies(ctx context.Context) ([]models.FavoriteMovie, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMovies(ctx, userID)
}

// AddActor favorites actor for the caller. Adding an existing favorite is a
// no-op.
func (s *FavoriteService) AddActor(ctx context.Context, actor models.Actor) (*models.FavoriteActor, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if actor.ID <= 0 {
		return nil, invalid("id", "id must be greater than 0")
	}
	if strings.TrimSpace(actor.Name) == "" {
		return nil, invalid("name", "name is required")
	}

	added, err := s.repo.AddActor(ctx, models.FavoriteActor{
		UserID:  userID,
		ActorID: actor.ID,
		Actor:   actor,
		AddedAt: s.now.millis(),
	})
	if err != nil {
		return nil, err
	}
	if added {
		s.publish(ctx, userID, models.CollectionActorFavorites, models.OpAdded, actor.ID)
	}
	return s.repo.GetActor(ctx, userID, actor.ID)
}

// RemoveActor deletes an actor favorite. Removing an absent one is not an
// error.
func (s *FavoriteService) RemoveActor(ctx context.Context, actorID int) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if actorID <= 0 {
		return invalid("actorId", "actorId must be greater than 0")
	}

	removed, err := s.repo.RemoveActor(ctx, userID, actorID)
	if err != nil {
		return err
	}
	if removed {
		s.publish(ctx, userID, models.CollectionActorFavorites, models.OpRemoved, actorID)
	}
	return nil
}

// IsActorFavorite reports whether the caller has favorited actorID.
func (s *FavoriteService) IsActorFavorite(ctx context.Context, actorID int) (bool, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return false, err
	}
	if actorID <= 0 {
		return false, invalid("actorId", "actorId must be greater than 0")
	}
	return s.repo.HasActor(ctx, userID, actorID)
}

// ListActors returns the caller's favorite actors, newest first.
func (s *FavoriteService) ListActors(ctx context.Context) ([]models.FavoriteActor, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActors(ctx, userID)
}

func (s *FavoriteService) publish(ctx context.Context, userID, collection, op string, id int) {
	s.notify.Publish(ctx, userID, models.ChangeEvent{
		Collection: collection,
		Op:         op,
		ID:         strconv.Itoa(id),
		At:         s.now.millis(),
	})
}

