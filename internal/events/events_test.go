package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onyx/internal/models"
)

func setupBus(t *testing.T) (*Bus, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewBus(rdb), mr
}

func receive(t *testing.T, ch <-chan models.ChangeEvent) models.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
		return models.ChangeEvent{}
	}
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "onyx:changes:u1", Channel("u1"))
}

func TestBus_DisabledWithoutRedis(t *testing.T) {
	bus := NewBus(nil)
	assert.False(t, bus.Enabled())

	// Publishing without Redis is a silent no-op.
	bus.Publish(context.Background(), "u1", models.ChangeEvent{Collection: models.CollectionWatchLater, Op: models.OpAdded})

	_, err := bus.Subscribe(context.Background(), "u1")
	assert.Error(t, err)

	var nilBus *Bus
	assert.False(t, nilBus.Enabled())
}

func TestBus_PublishReachesOnlyThatUser(t *testing.T) {
	bus, _ := setupBus(t)
	require.True(t, bus.Enabled())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)
	theirs, err := bus.Subscribe(ctx, "u2")
	require.NoError(t, err)

	ev := models.ChangeEvent{Collection: models.CollectionWatchLater, Op: models.OpAdded, ID: "w1", At: 1700000000000}
	bus.Publish(context.Background(), "u1", ev)

	assert.Equal(t, ev, receive(t, mine))
	select {
	case got := <-theirs:
		t.Fatalf("u2 received %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_SkipsMalformedPayloads(t *testing.T) {
	bus, mr := setupBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)

	mr.Publish(Channel("u1"), "{not json")
	ev := models.ChangeEvent{Collection: models.CollectionProfile, Op: models.OpChanged, ID: "u1", At: 1}
	bus.Publish(context.Background(), "u1", ev)

	assert.Equal(t, ev, receive(t, changes))
}

func TestBus_SubscriptionClosesWithContext(t *testing.T) {
	bus, _ := setupBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := bus.Subscribe(ctx, "u1")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription still open after cancel")
	}
}

func TestBus_SubscribeFailsWhenRedisIsDown(t *testing.T) {
	bus, mr := setupBus(t)
	mr.Close()

	_, err := bus.Subscribe(context.Background(), "u1")
	assert.Error(t, err)

	// Publish failures are logged, never surfaced.
	bus.Publish(context.Background(), "u1", models.ChangeEvent{Collection: models.CollectionWatchLater, Op: models.OpRemoved})
}
