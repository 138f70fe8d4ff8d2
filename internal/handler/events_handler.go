package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"onyx/internal/auth"
	"onyx/internal/events"
)

const keepAliveInterval = 25 * time.Second

// EventsHandler streams the caller's change events as Server-Sent Events.
type EventsHandler struct {
	ctx context.Context
	bus *events.Bus
}

// NewEventsHandler creates a new EventsHandler. Open streams end when ctx
// is done.
func NewEventsHandler(ctx context.Context, bus *events.Bus) *EventsHandler {
	return &EventsHandler{ctx: ctx, bus: bus}
}

// Stream keeps the connection open and writes one "change" event per
// collection change until the client goes away.
// @Summary Change event stream
// @Tags events
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/me/events [get]
func (h *EventsHandler) Stream(c fiber.Ctx) error {
	userID, ok := auth.UserID(c.Context())
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized"})
	}
	if !h.bus.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "change events unavailable"})
	}

	// The stream outlives the handler, so it hangs off the server's context
	// instead of the request's.
	ctx, cancel := context.WithCancel(h.ctx)
	changes, err := h.bus.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		slog.Error("failed to subscribe to change events", "user_id", userID, "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "change events unavailable"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-changes:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				slog.Debug("change stream closed", "user_id", userID, "error", err)
				return
			}
		}
	})
}
