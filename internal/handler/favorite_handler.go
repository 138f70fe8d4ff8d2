package handler

import (
	"github.com/gofiber/fiber/v3"

	"onyx/internal/models"
	"onyx/internal/service"
)

// FavoriteHandler handles HTTP requests for movie and actor favorites.
type FavoriteHandler struct {
	svc *service.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// ListMovies returns the caller's favorite movies.
// @Summary List favorite movies
// @Tags favorites
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.FavoriteMovie
// @Router /api/v1/me/favorites/movies [get]
func (h *FavoriteHandler) ListMovies(c fiber.Ctx) error {
	favs, err := h.svc.ListMovies(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(favs))
}

// AddMovie favorites a movie. The body is the catalog movie to snapshot.
// @Summary Favorite a movie
// @Tags favorites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.Movie true "Movie"
// @Success 201 {object} models.FavoriteMovie
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/me/favorites/movies [post]
func (h *FavoriteHandler) AddMovie(c fiber.Ctx) error {
	var movie models.Movie
	if err := c.Bind().JSON(&movie); err != nil {
		return badRequest(c, "invalid request body")
	}
	fav, err := h.svc.AddMovie(c.Context(), movie)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fav)
}

// RemoveMovie unfavorites a movie.
// @Summary Unfavorite a movie
// @Tags favorites
// @Security BearerAuth
// @Param movieId path int true "Movie ID"
// @Success 204
// @Router /api/v1/me/favorites/movies/{movieId} [delete]
func (h *FavoriteHandler) RemoveMovie(c fiber.Ctx) error {
	movieID, ok := intParam(c, "movieId")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	if err := h.svc.RemoveMovie(c.Context(), movieID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IsMovieFavorite reports whether the caller favorited a movie.
// @Summary Is movie a favorite
// @Tags favorites
// @Security BearerAuth
// @Produce json
// @Param movieId path int true "Movie ID"
// @Success 200 {object} map[string]bool
// @Router /api/v1/me/favorites/movies/{movieId} [get]
func (h *FavoriteHandler) IsMovieFavorite(c fiber.Ctx) error {
	movieID, ok := intParam(c, "movieId")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	is, err := h.svc.IsMovieFavorite(c.Context(), movieID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"favorite": is})
}

// ListActors returns the caller's favorite actors.
// @Summary List favorite actors
// @Tags favorites
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.FavoriteActor
// @Router /api/v1/me/favorites/actors [get]
func (h *FavoriteHandler) ListActors(c fiber.Ctx) error {
	favs, err := h.svc.ListActors(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(favs))
}

// AddActor favorites an actor.
// @Summary Favorite an actor
// @Tags favorites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.Actor true "Actor"
// @Success 201 {object} models.FavoriteActor
// @Router /api/v1/me/favorites/actors [post]
func (h *FavoriteHandler) AddActor(c fiber.Ctx) error {
	var actor models.Actor
	if err := c.Bind().JSON(&actor); err != nil {
		return badRequest(c, "invalid request body")
	}
	fav, err := h.svc.AddActor(c.Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fav)
}

// RemoveActor unfavorites an actor.
// @Summary Unfavorite an actor
// @Tags favorites
// @Security BearerAuth
// @Param actorId path int true "Actor ID"
// @Success 204
// @Router /api/v1/me/favorites/actors/{actorId} [delete]
func (h *FavoriteHandler) RemoveActor(c fiber.Ctx) error {
	actorID, ok := intParam(c, "actorId")
	if !ok {
		return badRequest(c, "invalid actor ID")
	}
	if err := h.svc.RemoveActor(c.Context(), actorID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IsActorFavorite reports whether the caller favorited an actor.
// @Summary Is actor a favorite
// @Tags favorites
// @Security BearerAuth
// @Produce json
// @Param actorId path int true "Actor ID"
// @Success 200 {object} map[string]bool
// @Router /api/v1/me/favorites/actors/{actorId} [get]
func (h *FavoriteHandler) IsActorFavorite(c fiber.Ctx) error {
	actorID, ok := intParam(c, "actorId")
	if !ok {
		return badRequest(c, "invalid actor ID")
	}
	is, err := h.svc.IsActorFavorite(c.Context(), actorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"favorite": is})
}
