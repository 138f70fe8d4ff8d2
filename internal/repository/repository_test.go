package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onyx/internal/database"
	"onyx/internal/models"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})
	return db
}

func ptr[T any](v T) *T { return &v }

func newItem(id, userID string, movieID int, addedAt int64) *models.WatchLaterItem {
	return &models.WatchLaterItem{
		ID:         id,
		UserID:     userID,
		MovieID:    movieID,
		MovieTitle: "Movie",
		PosterPath: "/p.jpg",
		Status:     models.StatusToWatch,
		Priority:   models.PriorityHigh,
		Tags:       []string{"b", "a"},
		AddedAt:    addedAt,
	}
}

func TestWatchLaterRepository_CreateAndList(t *testing.T) {
	repo := NewWatchLaterRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newItem("a", "u1", 1, 100)))
	require.NoError(t, repo.Create(ctx, newItem("b", "u1", 2, 200)))
	require.NoError(t, repo.Create(ctx, newItem("c", "u2", 3, 300)))

	items, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, []string{"b", "a"}, items[0].Tags)
	assert.Nil(t, items[0].Mood)
	assert.Nil(t, items[0].Reason)
}

func TestWatchLaterRepository_UpdatePartial(t *testing.T) {
	repo := NewWatchLaterRepository(setupTestDB(t))
	ctx := context.Background()

	item := newItem("a", "u1", 1, 100)
	item.Tags = []string{"x"}
	require.NoError(t, repo.Create(ctx, item))

	status := models.StatusWatching
	matched, err := repo.Update(ctx, "u1", "a", models.UpdateWatchLaterRequest{Status: &status})
	require.NoError(t, err)
	assert.True(t, matched)

	got, err := repo.Get(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatching, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"x"}, got.Tags)

	mood := models.MoodThoughtful
	empty := []string{}
	_, err = repo.Update(ctx, "u1", "a", models.UpdateWatchLaterRequest{Mood: &mood, Tags: &empty, Runtime: ptr(139)})
	require.NoError(t, err)

	got, err = repo.Get(ctx, "u1", "a")
	require.NoError(t, err)
	require.NotNil(t, got.Mood)
	assert.Equal(t, models.MoodThoughtful, *got.Mood)
	assert.Empty(t, got.Tags)
	require.NotNil(t, got.Runtime)
	assert.Equal(t, 139, *got.Runtime)
	assert.Equal(t, models.StatusWatching, got.Status)
}

func TestWatchLaterRepository_OtherUserIsNotFound(t *testing.T) {
	repo := NewWatchLaterRepository(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newItem("a", "u1", 1, 100)))

	_, err := repo.Get(ctx, "u2", "a")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status := models.StatusCompleted
	matched, err := repo.Update(ctx, "u2", "a", models.UpdateWatchLaterRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, matched)

	removed, err := repo.Delete(ctx, "u2", "a")
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := repo.Get(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusToWatch, got.Status)
}

func TestWatchLaterRepository_DeleteAndExists(t *testing.T) {
	repo := NewWatchLaterRepository(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newItem("a", "u1", 550, 100)))

	exists, err := repo.ExistsForMovie(ctx, "u1", 550)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(ctx, "u1", "a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, "u1", "a")
	require.NoError(t, err)
	assert.False(t, removed)

	exists, err = repo.ExistsForMovie(ctx, "u1", 550)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFavoriteRepository_AddMovieIsIdempotent(t *testing.T) {
	repo := NewFavoriteRepository(setupTestDB(t))
	ctx := context.Background()

	fav := models.FavoriteMovie{UserID: "u1", MovieID: 550, Movie: models.Movie{ID: 550, Title: "Fight Club"}, AddedAt: 100}
	inserted, err := repo.AddMovie(ctx, fav)
	require.NoError(t, err)
	assert.True(t, inserted)

	fav.AddedAt = 200
	fav.Movie.Title = "Changed"
	inserted, err = repo.AddMovie(ctx, fav)
	require.NoError(t, err)
	assert.False(t, inserted)

	favs, err := repo.ListMovies(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Fight Club", favs[0].Movie.Title)
	assert.Equal(t, int64(100), favs[0].AddedAt)
}

func TestFavoriteRepository_ActorsOrderAndRemove(t *testing.T) {
	repo := NewFavoriteRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.AddActor(ctx, models.FavoriteActor{UserID: "u1", ActorID: 1, Actor: models.Actor{ID: 1, Name: "A"}, AddedAt: 10})
	require.NoError(t, err)
	_, err = repo.AddActor(ctx, models.FavoriteActor{UserID: "u1", ActorID: 2, Actor: models.Actor{ID: 2, Name: "B"}, AddedAt: 20})
	require.NoError(t, err)

	favs, err := repo.ListActors(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, 2, favs[0].ActorID)
	assert.Equal(t, "B", favs[0].Actor.Name)

	has, err := repo.HasActor(ctx, "u1", 1)
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := repo.RemoveActor(ctx, "u1", 1)
	require.NoError(t, err)
	assert.True(t, removed)

	has, err = repo.HasActor(ctx, "u1", 1)
	require.NoError(t, err)
	assert.False(t, has)

	others, err := repo.ListActors(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestInteractionRepository_UpsertMerges(t *testing.T) {
	repo := NewInteractionRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 550, Rating: ptr(7), MovieTitle: ptr("Fight Club")}, 1000))
	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 550, Review: ptr("good"), IsWatched: ptr(false)}, 2000))

	inter, err := repo.Get(ctx, "u1", 550)
	require.NoError(t, err)
	require.NotNil(t, inter.Rating)
	assert.Equal(t, 7, *inter.Rating)
	require.NotNil(t, inter.Review)
	assert.Equal(t, "good", *inter.Review)
	require.NotNil(t, inter.MovieTitle)
	assert.Equal(t, "Fight Club", *inter.MovieTitle)
	require.NotNil(t, inter.IsWatched)
	assert.False(t, *inter.IsWatched)
	assert.Nil(t, inter.Notes)
	assert.Equal(t, int64(1000), inter.CreatedAt)
	assert.Equal(t, int64(2000), inter.UpdatedAt)

	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 550, IsWatched: ptr(true)}, 3000))
	inter, err = repo.Get(ctx, "u1", 550)
	require.NoError(t, err)
	assert.True(t, *inter.IsWatched)

	all, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInteractionRepository_ListRecent(t *testing.T) {
	repo := NewInteractionRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 1, Rating: ptr(5)}, 100))
	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 2, Rating: ptr(6)}, 200))
	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 3, Rating: ptr(8)}, 300))
	require.NoError(t, repo.Upsert(ctx, "u1", models.InteractRequest{MovieID: 1, Notes: ptr("again")}, 400))

	recent, err := repo.ListRecent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 1, recent[0].MovieID)
	assert.Equal(t, 3, recent[1].MovieID)

	all, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].MovieID)
	assert.Equal(t, 2, all[1].MovieID)

	_, err = repo.Get(ctx, "u2", 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProfileRepository_UpsertAndGet(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	config := json.RawMessage(`{"sex":"woman","hairStyle":"womanLong"}`)
	require.NoError(t, repo.Upsert(ctx, "u1", ProfilePatch{Name: ptr("Ada"), AvatarConfig: config}, 100))

	profile, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.JSONEq(t, string(config), string(profile.AvatarConfig))
	assert.Equal(t, 1, profile.AvatarConfigVersion)
	assert.Equal(t, models.DefaultPreferences(), profile.Preferences)

	prefs := models.Preferences{Genres: []int{28, 18}, Language: "ko", Mood: "Happy", DarkMode: false}
	require.NoError(t, repo.Upsert(ctx, "u1", ProfilePatch{Preferences: &prefs}, 200))

	profile, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, prefs, profile.Preferences)
	assert.Equal(t, int64(200), profile.UpdatedAt)
}
