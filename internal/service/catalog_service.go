package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"onyx/internal/models"
	"onyx/internal/tmdb"
)

const (
	defaultCatalogTTL = 10 * time.Minute

	languageMovieLimit  = 5
	languageCastLimit   = 5
	languageActorLimit  = 20
	enrichmentFanOut    = 8
	maxCatalogQueryRune = 200
)

// CatalogService proxies TMDB and reshapes its responses. When Redis is
// configured, complete results are cached; cache failures never surface.
type CatalogService struct {
	client   *tmdb.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewCatalogService creates a new CatalogService. A nil rdb disables caching.
func NewCatalogService(client *tmdb.Client, rdb *redis.Client, cacheTTL time.Duration) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCatalogTTL
	}
	return &CatalogService{client: client, redis: rdb, cacheTTL: cacheTTL}
}

// PopularMovies returns TMDB's current popular movies.
func (s *CatalogService) PopularMovies(ctx context.Context) ([]models.Movie, error) {
	return cached(ctx, s, "popular", "", func() ([]models.Movie, error) {
		return s.client.PopularMovies(ctx)
	})
}

// SearchMovies returns movies matching query.
func (s *CatalogService) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	query, err := searchText(query)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "search", query, func() ([]models.Movie, error) {
		return s.client.SearchMovies(ctx, query)
	})
}

// MovieDetails returns a single movie by its TMDB id.
func (s *CatalogService) MovieDetails(ctx context.Context, movieID int) (*models.Movie, error) {
	if err := positive("movieId", movieID); err != nil {
		return nil, err
	}
	return cached(ctx, s, "movie", strconv.Itoa(movieID), func() (*models.Movie, error) {
		return s.client.GetMovieDetail(ctx, movieID)
	})
}

// TrailerKey returns the YouTube key of the movie's first trailer, or nil
// when it has none.
func (s *CatalogService) TrailerKey(ctx context.Context, movieID int) (*string, error) {
	if err := positive("movieId", movieID); err != nil {
		return nil, err
	}
	return cached(ctx, s, "trailer", strconv.Itoa(movieID), func() (*string, error) {
		videos, err := s.client.MovieVideos(ctx, movieID)
		if err != nil {
			return nil, err
		}
		return pickTrailer(videos), nil
	})
}

// Cast returns the movie's cast in billing order.
func (s *CatalogService) Cast(ctx context.Context, movieID int) ([]models.CastMember, error) {
	if err := positive("movieId", movieID); err != nil {
		return nil, err
	}
	return cached(ctx, s, "cast", strconv.Itoa(movieID), func() ([]models.CastMember, error) {
		return s.client.MovieCredits(ctx, movieID)
	})
}

// SimilarMovies returns movies TMDB considers similar to movieID.
func (s *CatalogService) SimilarMovies(ctx context.Context, movieID int) ([]models.Movie, error) {
	if err := positive("movieId", movieID); err != nil {
		return nil, err
	}
	return cached(ctx, s, "similar", strconv.Itoa(movieID), func() ([]models.Movie, error) {
		return s.client.SimilarMovies(ctx, movieID)
	})
}

// MoviesByGenre returns popular movies in a genre.
func (s *CatalogService) MoviesByGenre(ctx context.Context, genreID int) ([]models.Movie, error) {
	if err := positive("genreId", genreID); err != nil {
		return nil, err
	}
	return cached(ctx, s, "genre", strconv.Itoa(genreID), func() ([]models.Movie, error) {
		return s.client.DiscoverByGenre(ctx, genreID)
	})
}

// PopularActors returns popular people enriched with their place of birth.
func (s *CatalogService) PopularActors(ctx context.Context) ([]models.Actor, error) {
	return cachedIfComplete(ctx, s, "actors-popular", "", func() ([]models.Actor, bool, error) {
		actors, err := s.client.PopularPeople(ctx)
		if err != nil {
			return nil, false, err
		}
		actors, complete := s.enrich(ctx, actors)
		return actors, complete, nil
	})
}

// SearchActors returns people matching query, enriched with their place
// of birth.
func (s *CatalogService) SearchActors(ctx context.Context, query string) ([]models.Actor, error) {
	query, err := searchText(query)
	if err != nil {
		return nil, err
	}
	return cachedIfComplete(ctx, s, "actors-search", query, func() ([]models.Actor, bool, error) {
		actors, err := s.client.SearchPeople(ctx, query)
		if err != nil {
			return nil, false, err
		}
		actors, complete := s.enrich(ctx, actors)
		return actors, complete, nil
	})
}

// ActorCredits returns the actor's movies that have a poster, most popular
// first. Movies of equal popularity keep TMDB's order.
func (s *CatalogService) ActorCredits(ctx context.Context, actorID int) ([]models.Movie, error) {
	if err := positive("actorId", actorID); err != nil {
		return nil, err
	}
	return cached(ctx, s, "actor-credits", strconv.Itoa(actorID), func() ([]models.Movie, error) {
		credits, err := s.client.PersonMovieCredits(ctx, actorID)
		if err != nil {
			return nil, err
		}
		return withPosterByPopularity(credits), nil
	})
}

// MoviesByActorName returns the movie credits of the first person matching
// name. No match yields an empty list.
func (s *CatalogService) MoviesByActorName(ctx context.Context, name string) ([]models.Movie, error) {
	name, err := searchText(name)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "actor-name", strings.ToLower(name), func() ([]models.Movie, error) {
		people, err := s.client.SearchPeople(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(people) == 0 {
			return []models.Movie{}, nil
		}
		return s.client.PersonMovieCredits(ctx, people[0].ID)
	})
}

// ActorsByLanguage collects the leading cast of the most popular movies in
// a language. Actors appear in the order they were first seen across the
// movies; credit lookups that fail are skipped.
func (s *CatalogService) ActorsByLanguage(ctx context.Context, code string) ([]models.Actor, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || len(code) > 10 {
		return nil, invalid("code", "code must be a language code")
	}
	return cachedIfComplete(ctx, s, "actors-language", code, func() ([]models.Actor, bool, error) {
		movies, err := s.client.DiscoverByLanguage(ctx, code)
		if err != nil {
			return nil, false, err
		}
		if len(movies) > languageMovieLimit {
			movies = movies[:languageMovieLimit]
		}

		casts := make([][]models.CastMember, len(movies))
		var skipped atomic.Bool
		g, gctx := errgroup.WithContext(ctx)
		for i, movie := range movies {
			g.Go(func() error {
				cast, err := s.client.MovieCredits(gctx, movie.ID)
				if err != nil {
					slog.Warn("skipping cast lookup", "movie_id", movie.ID, "error", err)
					skipped.Store(true)
					return nil
				}
				if len(cast) > languageCastLimit {
					cast = cast[:languageCastLimit]
				}
				casts[i] = cast
				return nil
			})
		}
		_ = g.Wait()

		actors, complete := s.enrich(ctx, dedupeCast(casts, languageActorLimit))
		return actors, complete && !skipped.Load(), nil
	})
}

// enrich looks up each actor's place of birth with bounded concurrency.
// Actors whose lookup fails are returned unchanged and complete is false.
func (s *CatalogService) enrich(ctx context.Context, actors []models.Actor) (out []models.Actor, complete bool) {
	out = make([]models.Actor, len(actors))
	copy(out, actors)

	var failed atomic.Bool
	var g errgroup.Group
	g.SetLimit(enrichmentFanOut)
	for i := range out {
		g.Go(func() error {
			detail, err := s.client.GetPersonDetail(ctx, out[i].ID)
			if err != nil {
				slog.Debug("actor enrichment failed", "actor_id", out[i].ID, "error", err)
				failed.Store(true)
				return nil
			}
			out[i].PlaceOfBirth = detail.PlaceOfBirth
			return nil
		})
	}
	_ = g.Wait()
	return out, !failed.Load()
}

func pickTrailer(videos []tmdb.Video) *string {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			key := v.Key
			return &key
		}
	}
	return nil
}

func withPosterByPopularity(credits []models.Movie) []models.Movie {
	out := make([]models.Movie, 0, len(credits))
	for _, m := range credits {
		if m.PosterPath != "" {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity > out[j].Popularity
	})
	return out
}

func dedupeCast(casts [][]models.CastMember, limit int) []models.Actor {
	seen := make(map[int]bool)
	actors := make([]models.Actor, 0, limit)
	for _, cast := range casts {
		for _, member := range cast {
			if seen[member.ID] {
				continue
			}
			seen[member.ID] = true
			actors = append(actors, models.Actor{
				ID:          member.ID,
				Name:        member.Name,
				ProfilePath: member.ProfilePath,
				Character:   member.Character,
				Popularity:  member.Popularity,
			})
			if len(actors) == limit {
				return actors
			}
		}
	}
	return actors
}

func positive(field string, v int) error {
	if v <= 0 {
		return invalid(field, field+" must be greater than 0")
	}
	return nil
}

func searchText(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", invalid("q", "q is required")
	}
	if len([]rune(q)) > maxCatalogQueryRune {
		return "", invalid("q", fmt.Sprintf("q must be at most %d characters", maxCatalogQueryRune))
	}
	return q, nil
}

// cached serves op from Redis when possible and otherwise calls fetch,
// storing its successful result. Upstream errors become
// ErrCatalogUnavailable.
func cached[T any](ctx context.Context, s *CatalogService, op, arg string, fetch func() (T, error)) (T, error) {
	return cachedIfComplete(ctx, s, op, arg, func() (T, bool, error) {
		v, err := fetch()
		return v, true, err
	})
}

// cachedIfComplete is cached for results assembled from several upstream
// calls. A result missing some of its parts is served but not stored.
func cachedIfComplete[T any](ctx context.Context, s *CatalogService, op, arg string, fetch func() (T, bool, error)) (T, error) {
	key := "catalog:" + op + ":" + arg
	if data, err := s.getFromCache(ctx, key); err == nil {
		var v T
		if json.Unmarshal([]byte(data), &v) == nil {
			return v, nil
		}
	}

	v, complete, err := fetch()
	if err != nil {
		slog.Error("catalog request failed", "op", op, "arg", arg, "error", err)
		var zero T
		return zero, fmt.Errorf("%s: %w", op, ErrCatalogUnavailable)
	}

	if !complete {
		slog.Debug("not caching partial catalog result", "op", op, "arg", arg)
		return v, nil
	}
	if data, err := json.Marshal(v); err == nil {
		s.setCache(ctx, key, string(data))
	}
	return v, nil
}

// Redis helpers

func (s *CatalogService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *CatalogService) setCache(ctx context.Context, key, value string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, s.cacheTTL).Err(); err != nil {
		slog.Warn("failed to set cache", "key", key, "error", err)
	}
}
