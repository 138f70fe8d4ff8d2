// Package events fans a user's collection changes out over Redis pub/sub
// so open clients can refresh without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"onyx/internal/models"
)

// Channel returns the Redis channel carrying userID's change events.
func Channel(userID string) string {
	return "onyx:changes:" + userID
}

// Bus publishes and subscribes to change events. A Bus with a nil client
// drops every event.
type Bus struct {
	rdb *redis.Client
}

// NewBus creates a Bus on top of rdb, which may be nil.
func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

// Enabled reports whether events are actually delivered.
func (b *Bus) Enabled() bool {
	return b != nil && b.rdb != nil
}

// Publish sends ev to userID's channel. Failures are logged, not returned:
// a lost notification must never fail the write that caused it.
func (b *Bus) Publish(ctx context.Context, userID string, ev models.ChangeEvent) {
	if !b.Enabled() {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to encode change event", "error", err)
		return
	}
	if err := b.rdb.Publish(ctx, Channel(userID), data).Err(); err != nil {
		slog.Warn("failed to publish change event", "user_id", userID, "collection", ev.Collection, "error", err)
	}
}

// Subscribe streams userID's change events until ctx is done. The returned
// channel is closed when the subscription ends.
func (b *Bus) Subscribe(ctx context.Context, userID string) (<-chan models.ChangeEvent, error) {
	if !b.Enabled() {
		return nil, fmt.Errorf("change events unavailable")
	}
	sub := b.rdb.Subscribe(ctx, Channel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel(userID), err)
	}

	out := make(chan models.ChangeEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev models.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("dropping malformed change event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
