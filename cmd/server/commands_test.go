package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "warn").Info("hidden")
	newLogger(&buf, "warn").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "timekeeper.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	useSQLite(t)
	out, err := runCmd(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migration complete")
}

func TestSweepCommand(t *testing.T) {
	useSQLite(t)
	_, err := runCmd(t, "migrate")
	require.NoError(t, err)

	out, err := runCmd(t, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "stopped 0 timer(s)")
}

func TestRootRejectsBadConfig(t *testing.T) {
	useSQLite(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := runCmd(t, "migrate")
	assert.ErrorContains(t, err, "timezone")
}
