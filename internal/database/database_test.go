package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory_CreatesTables(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"watch_later", "movie_favorites", "actor_favorites", "user_interactions", "profiles"} {
		var count int
		err := db.Get(&count, "SELECT COUNT(*) FROM "+table)
		assert.NoError(t, err, table)
		assert.Zero(t, count, table)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, runMigrations(db))
}
