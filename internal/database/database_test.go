package database

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	conn, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := conn.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	var buf bytes.Buffer
	Configure(conn, NewGormLogger(log.New(&buf, "", 0)))
	require.NoError(t, Migrate(conn, &db.TimeLog{}))

	err = conn.First(&db.TimeLog{}).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "record not found")

	require.Error(t, conn.Exec("SELECT * FROM missing_table").Error)
	assert.Contains(t, buf.String(), "missing_table")
}

func TestConnect_SQLite(t *testing.T) {
	conn, err := Connect(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "tk.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.Ping())
	require.NoError(t, Migrate(conn, &db.TimeLog{}))
	assert.True(t, conn.Migrator().HasTable(&db.TimeLog{}))
	assert.True(t, conn.Config.TranslateError)

	sqlDB, err := conn.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_RejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
