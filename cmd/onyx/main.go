package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"

	"onyx/internal/auth"
	"onyx/internal/config"
	"onyx/internal/database"
	"onyx/internal/events"
	"onyx/internal/handler"
	"onyx/internal/middleware"
	"onyx/internal/repository"
	"onyx/internal/service"
	"onyx/internal/tmdb"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := database.Open(cfg.DB)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}

	// Redis backs the catalog cache, rate limiting and change events; all
	// three are skipped when it is unavailable.
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache, rate limit and change events", "error", err)
	}

	if cfg.TMDB.APIKey == "" {
		slog.Warn("TMDB_API_KEY is empty, catalog requests will fail")
	}
	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)
	bus := events.NewBus(rdb)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	// Cancelled on SIGINT/SIGTERM; open change streams end with it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize layers
	catalogSvc := service.NewCatalogService(tmdbClient, rdb, cfg.TMDB.CacheTTL)
	watchLaterSvc := service.NewWatchLaterService(repository.NewWatchLaterRepository(db), bus)
	favoriteSvc := service.NewFavoriteService(repository.NewFavoriteRepository(db), bus)
	interactionSvc := service.NewInteractionService(repository.NewInteractionRepository(db), bus)
	profileSvc := service.NewProfileService(repository.NewProfileRepository(db), bus)

	app := fiber.New(fiber.Config{
		AppName:      "Onyx",
		ServerHeader: "Onyx",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Global middleware
	app.Use(fiberRecover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds, "/health", "/swagger").Handler())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	handler.Register(app, handler.Handlers{
		Health:       handler.NewHealthHandler(db, rdb),
		Catalog:      handler.NewCatalogHandler(catalogSvc),
		WatchLater:   handler.NewWatchLaterHandler(watchLaterSvc),
		Favorites:    handler.NewFavoriteHandler(favoriteSvc),
		Interactions: handler.NewInteractionHandler(interactionSvc),
		Profile:      handler.NewProfileHandler(profileSvc),
		Events:       handler.NewEventsHandler(ctx, bus),
	}, verifier)

	go func() {
		slog.Info("onyx starting", "port", cfg.Port, "db_driver", cfg.DB.Driver, "redis", rdb != nil)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down onyx...")

	// Shutdown HTTP server first (stop accepting new requests)
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}
	slog.Info("HTTP server stopped")

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	if err := db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}

	slog.Info("onyx shutdown complete")
}
