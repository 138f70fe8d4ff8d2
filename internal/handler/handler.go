package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"onyx/internal/service"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error  string               `json:"error"`
	Errors []service.FieldError `json:"errors,omitempty"`
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged and answered with a generic message.
func writeError(c fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "validation failed", Errors: verr.Fields})
	case errors.Is(err, service.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "not found"})
	case errors.Is(err, service.ErrCatalogUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "catalog unavailable"})
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal server error"})
	}
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// intParam parses a numeric path parameter.
func intParam(c fiber.Ctx, name string) (int, bool) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, false
	}
	return v, true
}

// list keeps empty collections encoded as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// HealthHandler reports whether the process and its backing stores are up.
type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

// NewHealthHandler creates a HealthHandler. rdb may be nil.
func NewHealthHandler(db *sqlx.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ok", "service": "onyx", "database": "ok", "redis": "disabled"}
	code := fiber.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check: database unreachable", "error", err)
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = fiber.StatusServiceUnavailable
	}
	if h.redis != nil {
		status["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
		}
	}
	return c.Status(code).JSON(status)
}
