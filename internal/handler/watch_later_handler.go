package handler

import (
	"github.com/gofiber/fiber/v3"

	"onyx/internal/models"
	"onyx/internal/service"
)

// WatchLaterHandler handles HTTP requests for the caller's watch-later list.
type WatchLaterHandler struct {
	svc *service.WatchLaterService
}

// NewWatchLaterHandler creates a new WatchLaterHandler.
func NewWatchLaterHandler(svc *service.WatchLaterService) *WatchLaterHandler {
	return &WatchLaterHandler{svc: svc}
}

// List returns the caller's watch-later items, newest first.
// @Summary List watch-later items
// @Tags watch-later
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.WatchLaterItem
// @Router /api/v1/me/watch-later [get]
func (h *WatchLaterHandler) List(c fiber.Ctx) error {
	items, err := h.svc.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list(items))
}

// Add stores a new watch-later item.
// @Summary Add watch-later item
// @Tags watch-later
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.AddWatchLaterRequest true "Item"
// @Success 201 {object} models.WatchLaterItem
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/me/watch-later [post]
func (h *WatchLaterHandler) Add(c fiber.Ctx) error {
	var req models.AddWatchLaterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	item, err := h.svc.Add(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update applies a partial update to an item.
// @Summary Update watch-later item
// @Tags watch-later
// @Security BearerAuth
// @Accept json
// @Param itemId path string true "Item ID"
// @Param body body models.UpdateWatchLaterRequest true "Fields to change"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/me/watch-later/{itemId} [patch]
func (h *WatchLaterHandler) Update(c fiber.Ctx) error {
	var req models.UpdateWatchLaterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.svc.Update(c.Context(), c.Params("itemId"), req); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Remove deletes an item.
// @Summary Remove watch-later item
// @Tags watch-later
// @Security BearerAuth
// @Param itemId path string true "Item ID"
// @Success 204
// @Router /api/v1/me/watch-later/{itemId} [delete]
func (h *WatchLaterHandler) Remove(c fiber.Ctx) error {
	if err := h.svc.Remove(c.Context(), c.Params("itemId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Contains reports whether a movie is on the caller's list.
// @Summary Is movie on watch-later list
// @Tags watch-later
// @Security BearerAuth
// @Produce json
// @Param movieId path int true "Movie ID"
// @Success 200 {object} map[string]bool
// @Router /api/v1/me/watch-later/contains/{movieId} [get]
func (h *WatchLaterHandler) Contains(c fiber.Ctx) error {
	movieID, ok := intParam(c, "movieId")
	if !ok {
		return badRequest(c, "invalid movie ID")
	}
	has, err := h.svc.Contains(c.Context(), movieID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"contains": has})
}
