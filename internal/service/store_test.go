package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onyx/internal/auth"
	"onyx/internal/database"
	"onyx/internal/models"
	"onyx/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (n *recordingNotifier) Publish(_ context.Context, _ string, ev models.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) ops() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Collection+":"+ev.Op)
	}
	return out
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() clock {
	var mu sync.Mutex
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type stores struct {
	watchLater   *WatchLaterService
	favorites    *FavoriteService
	interactions *InteractionService
	profiles     *ProfileService
	notifier     *recordingNotifier
}

func setupStores(t *testing.T) *stores {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	n := &recordingNotifier{}
	clk := tickingClock()
	s := &stores{
		watchLater:   NewWatchLaterService(repository.NewWatchLaterRepository(db), n),
		favorites:    NewFavoriteService(repository.NewFavoriteRepository(db), n),
		interactions: NewInteractionService(repository.NewInteractionRepository(db), n),
		profiles:     NewProfileService(repository.NewProfileRepository(db), n),
		notifier:     n,
	}
	s.watchLater.now = clk
	s.favorites.now = clk
	s.interactions.now = clk
	s.profiles.now = clk
	return s
}

func as(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

func ptr[T any](v T) *T { return &v }

func addRequest(movieID int, title string) models.AddWatchLaterRequest {
	return models.AddWatchLaterRequest{
		MovieID:    movieID,
		MovieTitle: title,
		PosterPath: "/poster.jpg",
		Status:     models.StatusToWatch,
		Priority:   models.PriorityHigh,
	}
}

func TestStores_RequireAuthentication(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	_, err := s.watchLater.Add(ctx, addRequest(550, "Fight Club"))
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.watchLater.List(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.favorites.AddMovie(ctx, models.Movie{ID: 550, Title: "Fight Club"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.interactions.Interact(ctx, models.InteractRequest{MovieID: 550})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.profiles.Get(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, s.notifier.ops())
}

func TestStores_UnauthenticatedWritesChangeNothing(t *testing.T) {
	s := setupStores(t)
	owner := as("u1")

	item, err := s.watchLater.Add(owner, addRequest(550, "Fight Club"))
	require.NoError(t, err)
	_, err = s.favorites.AddMovie(owner, models.Movie{ID: 550, Title: "Fight Club"})
	require.NoError(t, err)
	_, err = s.favorites.AddActor(owner, models.Actor{ID: 287, Name: "Brad Pitt"})
	require.NoError(t, err)
	_, err = s.interactions.Interact(owner, models.InteractRequest{MovieID: 550, Rating: ptr(8)})
	require.NoError(t, err)
	_, err = s.profiles.Update(owner, models.UpdateProfileRequest{Name: ptr("Tyler")})
	require.NoError(t, err)

	wantItems, _ := s.watchLater.List(owner)
	wantMovies, _ := s.favorites.ListMovies(owner)
	wantActors, _ := s.favorites.ListActors(owner)
	wantInteractions, _ := s.interactions.List(owner)
	wantProfile, _ := s.profiles.Get(owner)
	published := len(s.notifier.ops())

	anon := context.Background()
	writes := map[string]func() error{
		"watchLater.Update": func() error {
			return s.watchLater.Update(anon, item.ID, models.UpdateWatchLaterRequest{Reason: ptr("changed")})
		},
		"watchLater.Remove": func() error { return s.watchLater.Remove(anon, item.ID) },
		"favorites.AddMovie": func() error {
			_, err := s.favorites.AddMovie(anon, models.Movie{ID: 13, Title: "Forrest Gump"})
			return err
		},
		"favorites.RemoveMovie": func() error { return s.favorites.RemoveMovie(anon, 550) },
		"favorites.AddActor": func() error {
			_, err := s.favorites.AddActor(anon, models.Actor{ID: 31, Name: "Tom Hanks"})
			return err
		},
		"favorites.RemoveActor": func() error { return s.favorites.RemoveActor(anon, 287) },
		"interactions.Interact": func() error {
			_, err := s.interactions.Interact(anon, models.InteractRequest{MovieID: 550, Rating: ptr(1)})
			return err
		},
		"profiles.Update": func() error {
			_, err := s.profiles.Update(anon, models.UpdateProfileRequest{Name: ptr("Marla")})
			return err
		},
		"profiles.UpdatePreferences": func() error {
			_, err := s.profiles.UpdatePreferences(anon, models.Preferences{Language: "fr"})
			return err
		},
	}
	for name, write := range writes {
		assert.ErrorIs(t, write(), ErrUnauthorized, name)
	}

	items, err := s.watchLater.List(owner)
	require.NoError(t, err)
	assert.Equal(t, wantItems, items)
	movies, err := s.favorites.ListMovies(owner)
	require.NoError(t, err)
	assert.Equal(t, wantMovies, movies)
	actors, err := s.favorites.ListActors(owner)
	require.NoError(t, err)
	assert.Equal(t, wantActors, actors)
	interactions, err := s.interactions.List(owner)
	require.NoError(t, err)
	assert.Equal(t, wantInteractions, interactions)
	profile, err := s.profiles.Get(owner)
	require.NoError(t, err)
	assert.Equal(t, wantProfile, profile)
	assert.Len(t, s.notifier.ops(), published)
}

func TestWatchLater_AddAssignsServerFields(t *testing.T) {
	s := setupStores(t)

	first, err := s.watchLater.Add(as("u1"), addRequest(550, "Fight Club"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "u1", first.UserID)
	assert.NotZero(t, first.AddedAt)
	assert.Equal(t, []string{}, first.Tags)

	second, err := s.watchLater.Add(as("u1"), addRequest(13, "Forrest Gump"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	items, err := s.watchLater.List(as("u1"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	others, err := s.watchLater.List(as("u2"))
	require.NoError(t, err)
	assert.Empty(t, others)

	has, err := s.watchLater.Contains(as("u1"), 550)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = s.watchLater.Contains(as("u2"), 550)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestWatchLater_Lifecycle(t *testing.T) {
	s := setupStores(t)
	ctx := as("u1")

	// A failed unauthenticated add leaves the list untouched.
	_, err := s.watchLater.Add(context.Background(), addRequest(550, "Fight Club"))
	require.ErrorIs(t, err, ErrUnauthorized)

	req := addRequest(550, "Fight Club")
	req.PosterPath = "/p.jpg"
	req.Priority = models.PriorityMedium
	req.Tags = []string{}
	item, err := s.watchLater.Add(ctx, req)
	require.NoError(t, err)

	items, err := s.watchLater.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 550, items[0].MovieID)
	assert.Equal(t, models.StatusToWatch, items[0].Status)

	completed := models.StatusCompleted
	require.NoError(t, s.watchLater.Update(ctx, item.ID, models.UpdateWatchLaterRequest{Status: &completed}))

	items, err = s.watchLater.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	want := *item
	want.Status = models.StatusCompleted
	assert.Equal(t, want, items[0])

	require.NoError(t, s.watchLater.Remove(ctx, item.ID))
	items, err = s.watchLater.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWatchLater_UpdateKeepsTags(t *testing.T) {
	s := setupStores(t)
	req := addRequest(550, "Fight Club")
	req.Tags = []string{"x"}
	item, err := s.watchLater.Add(as("u1"), req)
	require.NoError(t, err)

	watching := models.StatusWatching
	require.NoError(t, s.watchLater.Update(as("u1"), item.ID, models.UpdateWatchLaterRequest{Status: &watching}))

	got, err := s.watchLater.Get(as("u1"), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatching, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"x"}, got.Tags)

	tags := []string{"b", "a"}
	require.NoError(t, s.watchLater.Update(as("u1"), item.ID, models.UpdateWatchLaterRequest{Tags: &tags}))
	got, err = s.watchLater.Get(as("u1"), item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got.Tags)
}

func TestWatchLater_AddRejectsInvalidInput(t *testing.T) {
	s := setupStores(t)

	req := addRequest(550, "Fight Club")
	req.Status = "Someday"
	_, err := s.watchLater.Add(as("u1"), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Fields[0].Field)

	_, err = s.watchLater.Add(as("u1"), addRequest(0, "Nothing"))
	assert.ErrorAs(t, err, &verr)

	items, err := s.watchLater.List(as("u1"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWatchLater_UpdateIsPartialAndScoped(t *testing.T) {
	s := setupStores(t)
	req := addRequest(550, "Fight Club")
	req.Reason = ptr("recommended")
	item, err := s.watchLater.Add(as("u1"), req)
	require.NoError(t, err)

	completed := models.StatusCompleted
	require.NoError(t, s.watchLater.Update(as("u1"), item.ID, models.UpdateWatchLaterRequest{Status: &completed}))

	got, err := s.watchLater.Get(as("u1"), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, "recommended", *got.Reason)

	// Another user's update is silently ignored.
	watching := models.StatusWatching
	require.NoError(t, s.watchLater.Update(as("u2"), item.ID, models.UpdateWatchLaterRequest{Status: &watching}))
	got, err = s.watchLater.Get(as("u1"), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	_, err = s.watchLater.Get(as("u2"), item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"watchLater:added", "watchLater:changed"}, s.notifier.ops())
}

func TestWatchLater_RemoveIsIdempotent(t *testing.T) {
	s := setupStores(t)
	item, err := s.watchLater.Add(as("u1"), addRequest(550, "Fight Club"))
	require.NoError(t, err)

	require.NoError(t, s.watchLater.Remove(as("u2"), item.ID))
	require.NoError(t, s.watchLater.Remove(as("u1"), item.ID))
	require.NoError(t, s.watchLater.Remove(as("u1"), item.ID))
	require.NoError(t, s.watchLater.Remove(as("u1"), "never-existed"))

	items, err := s.watchLater.List(as("u1"))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []string{"watchLater:added", "watchLater:removed"}, s.notifier.ops())
}

func TestFavorites_AddTwiceKeepsOneRow(t *testing.T) {
	s := setupStores(t)
	movie := models.Movie{ID: 550, Title: "Fight Club", PosterPath: "/p.jpg"}

	first, err := s.favorites.AddMovie(as("u1"), movie)
	require.NoError(t, err)
	movie.Title = "Renamed"
	again, err := s.favorites.AddMovie(as("u1"), movie)
	require.NoError(t, err)
	assert.Equal(t, first.AddedAt, again.AddedAt)
	assert.Equal(t, "Fight Club", again.Movie.Title)

	favs, err := s.favorites.ListMovies(as("u1"))
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Fight Club", favs[0].Movie.Title)

	is, err := s.favorites.IsMovieFavorite(as("u1"), 550)
	require.NoError(t, err)
	assert.True(t, is)

	require.NoError(t, s.favorites.RemoveMovie(as("u1"), 550))
	require.NoError(t, s.favorites.RemoveMovie(as("u1"), 550))
	is, err = s.favorites.IsMovieFavorite(as("u1"), 550)
	require.NoError(t, err)
	assert.False(t, is)

	assert.Equal(t, []string{"movieFavorites:added", "movieFavorites:removed"}, s.notifier.ops())
}

func TestFavorites_Actors(t *testing.T) {
	s := setupStores(t)

	_, err := s.favorites.AddActor(as("u1"), models.Actor{ID: 287, Name: "Brad Pitt"})
	require.NoError(t, err)
	_, err = s.favorites.AddActor(as("u1"), models.Actor{ID: 819, Name: "Edward Norton"})
	require.NoError(t, err)

	favs, err := s.favorites.ListActors(as("u1"))
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, 819, favs[0].ActorID)

	is, err := s.favorites.IsActorFavorite(as("u2"), 287)
	require.NoError(t, err)
	assert.False(t, is)

	var verr *ValidationError
	_, err = s.favorites.AddActor(as("u1"), models.Actor{ID: -1, Name: "x"})
	assert.ErrorAs(t, err, &verr)
	_, err = s.favorites.AddActor(as("u1"), models.Actor{ID: 5})
	assert.ErrorAs(t, err, &verr)
}

func TestInteractions_MergeKeepsEarlierFields(t *testing.T) {
	s := setupStores(t)

	first, err := s.interactions.Interact(as("u1"), models.InteractRequest{MovieID: 550, Rating: ptr(8)})
	require.NoError(t, err)
	second, err := s.interactions.Interact(as("u1"), models.InteractRequest{MovieID: 550, Review: ptr("great")})
	require.NoError(t, err)

	assert.Equal(t, 8, *second.Rating)
	assert.Equal(t, "great", *second.Review)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Greater(t, second.UpdatedAt, first.UpdatedAt)

	all, err := s.interactions.List(as("u1"))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.interactions.Get(as("u1"), 13)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.interactions.Get(as("u2"), 550)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInteractions_RejectsOutOfRangeRating(t *testing.T) {
	s := setupStores(t)

	_, err := s.interactions.Interact(as("u1"), models.InteractRequest{MovieID: 550, Rating: ptr(11)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Fields[0].Field)
}

func TestInteractions_StatsAndActivity(t *testing.T) {
	s := setupStores(t)
	ctx := as("u1")

	_, err := s.interactions.Interact(ctx, models.InteractRequest{MovieID: 1, Rating: ptr(7), IsWatched: ptr(true)})
	require.NoError(t, err)
	_, err = s.interactions.Interact(ctx, models.InteractRequest{MovieID: 2, Rating: ptr(8), Review: ptr("good")})
	require.NoError(t, err)
	_, err = s.interactions.Interact(ctx, models.InteractRequest{MovieID: 3, Rating: ptr(8), IsWatched: ptr(true)})
	require.NoError(t, err)
	_, err = s.interactions.Interact(ctx, models.InteractRequest{MovieID: 4, Notes: ptr("later"), IsWatched: ptr(false)})
	require.NoError(t, err)

	stats, err := s.interactions.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalWatched)
	assert.Equal(t, 3, stats.TotalRated)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.Equal(t, 7.7, stats.AverageRating)

	// Touching movie 1 again moves it to the front.
	_, err = s.interactions.Interact(ctx, models.InteractRequest{MovieID: 1, Notes: ptr("rewatch")})
	require.NoError(t, err)

	recent, err := s.interactions.RecentActivity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 1, recent[0].MovieID)
	assert.Equal(t, 4, recent[1].MovieID)

	recent, err = s.interactions.RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 4)
}

func TestSummarize_NoRatings(t *testing.T) {
	stats := summarize(nil)
	assert.Equal(t, models.Stats{}, *stats)
}

func TestProfile_DefaultsAndPartialMerge(t *testing.T) {
	s := setupStores(t)
	ctx := as("u1")

	profile, err := s.profiles.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, 1, profile.AvatarConfigVersion)
	assert.Equal(t, "en", profile.Preferences.Language)
	assert.True(t, profile.Preferences.DarkMode)

	blob := json.RawMessage(`{"hair":"short","colors":[1,2]}`)
	profile, err = s.profiles.Update(ctx, models.UpdateProfileRequest{Name: ptr("Tyler"), AvatarConfig: blob, AvatarConfigVersion: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, "Tyler", profile.Name)
	assert.JSONEq(t, string(blob), string(profile.AvatarConfig))

	profile, err = s.profiles.Update(ctx, models.UpdateProfileRequest{Avatar: ptr("https://img/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Tyler", profile.Name)
	assert.Equal(t, "https://img/a.png", profile.Avatar)
	assert.Equal(t, 2, profile.AvatarConfigVersion)
	assert.JSONEq(t, string(blob), string(profile.AvatarConfig))

	profile, err = s.profiles.UpdatePreferences(ctx, models.Preferences{Genres: []int{18, 53}, Mood: "dark"})
	require.NoError(t, err)
	assert.Equal(t, []int{18, 53}, profile.Preferences.Genres)
	assert.Equal(t, "en", profile.Preferences.Language)
	assert.False(t, profile.Preferences.DarkMode)
	assert.Equal(t, "Tyler", profile.Name)

	other, err := s.profiles.Get(as("u2"))
	require.NoError(t, err)
	assert.Empty(t, other.Name)
}
