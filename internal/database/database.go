package database

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"onyx/internal/config"
)

// Open connects to the configured database and runs migrations.
func Open(cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// sqlite needs to have a single writer
		db.SetMaxOpenConns(1)
		slog.Info("connected to SQLite", "path", cfg.Path)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		slog.Info("connected to PostgreSQL", "db", cfg.DBName)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// OpenMemory opens a migrated in-memory SQLite database.
func OpenMemory() (*sqlx.DB, error) {
	return Open(config.DBConfig{Driver: "sqlite3", Path: ":memory:"})
}

// The statements below must stay valid for both PostgreSQL and SQLite.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS watch_later (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			movie_id INTEGER NOT NULL,
			movie_title VARCHAR(500) NOT NULL,
			poster_path VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL,
			priority VARCHAR(20) NOT NULL,
			reason TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			mood VARCHAR(20),
			added_at BIGINT NOT NULL,
			runtime INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS movie_favorites (
			user_id VARCHAR(128) NOT NULL,
			movie_id INTEGER NOT NULL,
			movie TEXT NOT NULL,
			added_at BIGINT NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS actor_favorites (
			user_id VARCHAR(128) NOT NULL,
			actor_id INTEGER NOT NULL,
			actor TEXT NOT NULL,
			added_at BIGINT NOT NULL,
			PRIMARY KEY (user_id, actor_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_interactions (
			user_id VARCHAR(128) NOT NULL,
			movie_id INTEGER NOT NULL,
			movie_title VARCHAR(500),
			poster_path VARCHAR(500),
			release_date VARCHAR(20),
			rating INTEGER,
			review TEXT,
			notes TEXT,
			is_watched BOOLEAN,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR(128) PRIMARY KEY,
			name VARCHAR(100),
			avatar VARCHAR(1000),
			avatar_config TEXT,
			avatar_config_version INTEGER,
			preferences TEXT,
			updated_at BIGINT NOT NULL
		)`,
		// Indexes for common query patterns
		`CREATE INDEX IF NOT EXISTS idx_watch_later_user_added ON watch_later(user_id, added_at)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_favorites_user_added ON movie_favorites(user_id, added_at)`,
		`CREATE INDEX IF NOT EXISTS idx_actor_favorites_user_added ON actor_favorites(user_id, added_at)`,
		`CREATE INDEX IF NOT EXISTS idx_user_interactions_user_updated ON user_interactions(user_id, updated_at)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
