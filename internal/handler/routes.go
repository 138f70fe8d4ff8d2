package handler

import (
	"github.com/gofiber/fiber/v3"

	"onyx/internal/auth"
	"onyx/internal/middleware"
)

// Handlers groups every route handler the API serves.
type Handlers struct {
	Health       *HealthHandler
	Catalog      *CatalogHandler
	WatchLater   *WatchLaterHandler
	Favorites    *FavoriteHandler
	Interactions *InteractionHandler
	Profile      *ProfileHandler
	Events       *EventsHandler
}

// Register mounts the public catalog routes and the authenticated per-user
// routes on app.
func Register(app *fiber.App, h Handlers, verifier *auth.Verifier) {
	app.Get("/health", h.Health.Health)

	api := app.Group("/api/v1")

	movies := api.Group("/catalog/movies")
	movies.Get("/popular", h.Catalog.PopularMovies)
	movies.Get("/search", h.Catalog.SearchMovies)
	movies.Get("/genre/:genreId", h.Catalog.MoviesByGenre)
	movies.Get("/:id", h.Catalog.MovieDetails)
	movies.Get("/:id/trailer", h.Catalog.Trailer)
	movies.Get("/:id/cast", h.Catalog.Cast)
	movies.Get("/:id/similar", h.Catalog.Similar)

	actors := api.Group("/catalog/actors")
	actors.Get("/popular", h.Catalog.PopularActors)
	actors.Get("/search", h.Catalog.SearchActors)
	actors.Get("/by-name/:name/movies", h.Catalog.MoviesByActorName)
	actors.Get("/language/:code", h.Catalog.ActorsByLanguage)
	actors.Get("/:id/movies", h.Catalog.ActorMovies)

	me := api.Group("/me", middleware.Auth(verifier))

	me.Get("/watch-later", h.WatchLater.List)
	me.Post("/watch-later", h.WatchLater.Add)
	me.Get("/watch-later/contains/:movieId", h.WatchLater.Contains)
	me.Patch("/watch-later/:itemId", h.WatchLater.Update)
	me.Delete("/watch-later/:itemId", h.WatchLater.Remove)

	me.Get("/favorites/movies", h.Favorites.ListMovies)
	me.Post("/favorites/movies", h.Favorites.AddMovie)
	me.Get("/favorites/movies/:movieId", h.Favorites.IsMovieFavorite)
	me.Delete("/favorites/movies/:movieId", h.Favorites.RemoveMovie)
	me.Get("/favorites/actors", h.Favorites.ListActors)
	me.Post("/favorites/actors", h.Favorites.AddActor)
	me.Get("/favorites/actors/:actorId", h.Favorites.IsActorFavorite)
	me.Delete("/favorites/actors/:actorId", h.Favorites.RemoveActor)

	me.Get("/interactions", h.Interactions.List)
	me.Post("/interactions", h.Interactions.Interact)
	me.Get("/interactions/:movieId", h.Interactions.Get)
	me.Get("/activity", h.Interactions.Activity)
	me.Get("/stats", h.Interactions.Stats)

	me.Get("/profile", h.Profile.Get)
	me.Patch("/profile", h.Profile.Update)
	me.Put("/profile/preferences", h.Profile.UpdatePreferences)

	me.Get("/events", h.Events.Stream)
}
