package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v3"

	"onyx/internal/models"
	"onyx/internal/service"
)

// CatalogHandler handles HTTP requests for the TMDB-backed catalog.
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// PopularMovies returns the current popular movies.
// @Summary Popular movies
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Movie
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/catalog/movies/popular [get]
func (h *CatalogHandler) PopularMovies(c fiber.Ctx) error {
	movies, err := h.svc.PopularMovies(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(movies))
}

// SearchMovies searches movies by title.
// @Summary Search movies
// @Tags catalog
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} models.Movie
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/catalog/movies/search [get]
func (h *CatalogHandler) SearchMovies(c fiber.Ctx) error {
	movies, err := h.svc.SearchMovies(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(movies))
}

// MoviesByGenre discovers movies of one genre.
// @Summary Movies by genre
// @Tags catalog
// @Produce json
// @Param genreId path int true "Genre ID"
// @Success 200 {array} models.Movie
// @Router /api/v1/catalog/movies/genre/{genreId} [get]
func (h *CatalogHandler) MoviesByGenre(c fiber.Ctx) error {
	genreID, ok := intParam(c, "genreId")
	if !ok {
		return badRequest(c, "invalid genre ID")
	}
	movies, err := h.svc.MoviesByGenre(c.Context(), genreID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(movies))
}

// MovieDetails returns one movie.
// @Summary Movie details
// @Tags catalog
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} models.Movie
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/catalog/movies/{id} [get]
func (h *CatalogHandler) MovieDetails(c fiber.Ctx) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	movie, err := h.svc.MovieDetails(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movie)
}

// Trailer returns the YouTube key of the movie's trailer, or null.
// @Summary Movie trailer
// @Tags catalog
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} models.TrailerResponse
// @Router /api/v1/catalog/movies/{id}/trailer [get]
func (h *CatalogHandler) Trailer(c fiber.Ctx) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	key, err := h.svc.TrailerKey(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(models.TrailerResponse{Key: key})
}

// Cast returns a movie's cast.
// @Summary Movie cast
// @Tags catalog
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {array} models.CastMember
// @Router /api/v1/catalog/movies/{id}/cast [get]
func (h *CatalogHandler) Cast(c fiber.Ctx) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	cast, err := h.svc.Cast(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(cast))
}

// Similar returns movies similar to one movie.
// @Summary Similar movies
// @Tags catalog
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {array} models.Movie
// @Router /api/v1/catalog/movies/{id}/similar [get]
func (h *CatalogHandler) Similar(c fiber.Ctx) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	movies, err := h.svc.SimilarMovies(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(movies))
}

// PopularActors returns popular people with their place of birth.
// @Summary Popular actors
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Actor
// @Router /api/v1/catalog/actors/popular [get]
func (h *CatalogHandler) PopularActors(c fiber.Ctx) error {
	actors, err := h.svc.PopularActors(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(actors))
}

// SearchActors searches people by name.
// @Summary Search actors
// @Tags catalog
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} models.Actor
// @Router /api/v1/catalog/actors/search [get]
func (h *CatalogHandler) SearchActors(c fiber.Ctx) error {
	actors, err := h.svc.SearchActors(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(actors))
}

// MoviesByActorName returns the movies of the first person matching name.
// @Summary Movies by actor name
// @Tags catalog
// @Produce json
// @Param name path string true "Actor name"
// @Success 200 {array} models.Movie
// @Router /api/v1/catalog/actors/by-name/{name}/movies [get]
func (h *CatalogHandler) MoviesByActorName(c fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return badRequest(c, "invalid actor name")
	}
	movies, err := h.svc.MoviesByActorName(c.Context(), name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(movies))
}

// ActorsByLanguage returns the leading actors of a language's popular movies.
// @Summary Actors by language
// @Tags catalog
// @Produce json
// @Param code path string true "ISO 639-1 language code"
// @Success 200 {array} models.Actor
// @Router /api/v1/catalog/actors/language/{code} [get]
func (h *CatalogHandler) ActorsByLanguage(c fiber.Ctx) error {
	actors, err := h.svc.ActorsByLanguage(c.Context(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(actors))
}

// ActorMovies returns an actor's movies with posters, most popular first.
// @Summary Actor movie credits
// @Tags catalog
// @Produce json
// @Param id path int true "Actor ID"
// @Success 200 {array} models.Movie
// @Router /api/v1/catalog/actors/{id}/movies [get]
func (h *CatalogHandler) ActorMovies(c fiber.Ctx) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "invalid actor ID")
	}
	movies, err := h.svc.ActorCredits(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(movies))
}
