package handler

import (
	"github.com/gofiber/fiber/v3"

	"onyx/internal/models"
	"onyx/internal/service"
)

// InteractionHandler handles ratings, reviews, notes and watched flags.
type InteractionHandler struct {
	svc *service.InteractionService
}

// NewInteractionHandler creates a new InteractionHandler.
func NewInteractionHandler(svc *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

// Interact creates or merges the caller's interaction with a movie.
// @Summary Record an interaction
// @Tags interactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.InteractRequest true "Interaction fields"
// @Success 200 {object} models.UserInteraction
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/me/interactions [post]
func (h *InteractionHandler) Interact(c fiber.Ctx) error {
	var req models.InteractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	inter, err := h.svc.Interact(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inter)
}

// List returns all of the caller's interactions.
// @Summary List interactions
// @Tags interactions
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.UserInteraction
// @Router /api/v1/me/interactions [get]
func (h *InteractionHandler) List(c fiber.Ctx) error {
	all, err := h.svc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(all))
}

// Get returns the caller's interaction with one movie.
// @Summary Get an interaction
// @Tags interactions
// @Security BearerAuth
// @Produce json
// @Param movieId path int true "Movie ID"
// @Success 200 {object} models.UserInteraction
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/me/interactions/{movieId} [get]
func (h *InteractionHandler) Get(c fiber.Ctx) error {
	movieID, ok := intParam(c, "movieId")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	inter, err := h.svc.Get(c.Context(), movieID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inter)
}

// Activity returns the most recently updated interactions.
// @Summary Recent activity
// @Tags interactions
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max entries" default(10)
// @Success 200 {array} models.UserInteraction
// @Router /api/v1/me/activity [get]
func (h *InteractionHandler) Activity(c fiber.Ctx) error {
	recent, err := h.svc.RecentActivity(c.Context(), fiber.Query(c, "limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(recent))
}

// Stats summarizes the caller's interactions.
// @Summary Interaction stats
// @Tags interactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Stats
// @Router /api/v1/me/stats [get]
func (h *InteractionHandler) Stats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}
