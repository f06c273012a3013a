package testutil

import (
	"testing"

	"konntek-go/internal/bot"
	"konntek-go/internal/database"
)

// NewTestDatabase creates a new in-memory SQLite database with the schema
// applied. The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) bot.Database {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
