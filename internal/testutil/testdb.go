package testutil

import (
	"testing"

	"github.com/JorgeSaicoski/pgconnect"
	"github.com/JorgeSaicoski/timekeeper/internal/database"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/glebarez/sqlite"
)

// NewTestDB creates an in-memory SQLite database with the schema migrated.
// A single connection backs it so every query sees the same memory database.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *pgconnect.DB {
	t.Helper()
	conn, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	sqlDB, err := conn.DB.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	if err := database.Migrate(conn, &db.TimeLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return conn
}
