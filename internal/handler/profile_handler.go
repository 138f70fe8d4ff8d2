package handler

import (
	"github.com/gofiber/fiber/v3"

	"onyx/internal/models"
	"onyx/internal/service"
)

// ProfileHandler handles the caller's profile and preferences.
type ProfileHandler struct {
	svc *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Get returns the caller's profile, or defaults if none was saved.
// @Summary Get profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Router /api/v1/me/profile [get]
func (h *ProfileHandler) Get(c fiber.Ctx) error {
	profile, err := h.svc.Get(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

// Update merges the provided profile fields.
// @Summary Update profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.Profile
// @Router /api/v1/me/profile [patch]
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	profile, err := h.svc.Update(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

// UpdatePreferences replaces the caller's preferences.
// @Summary Replace preferences
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.Preferences true "Preferences"
// @Success 200 {object} models.Profile
// @Router /api/v1/me/profile/preferences [put]
func (h *ProfileHandler) UpdatePreferences(c fiber.Ctx) error {
	var prefs models.Preferences
	if err := c.Bind().JSON(&prefs); err != nil {
		return badRequest(c, "invalid request body")
	}
	profile, err := h.svc.UpdatePreferences(c.Context(), prefs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}
