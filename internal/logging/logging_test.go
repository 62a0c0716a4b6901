package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coco/internal/config"
)

func TestNewWritesToFileAndConsole(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "state", "coco.log")
	var console bytes.Buffer

	logger, closer, err := New(config.LoggingCfg{
		Level:   "debug",
		Format:  "json",
		File:    logPath,
		Console: true,
	}, &console)
	require.NoError(t, err)

	logger.Debug().Str("path", "/tmp/a").Msg("delete target")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), `"message":"delete target"`)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":"/tmp/a"`)
}

func TestNewRespectsLevel(t *testing.T) {
	var console bytes.Buffer

	logger, _, err := New(config.LoggingCfg{Level: "warn", Format: "json", Console: true}, &console)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestNewWithoutOutputsIsSilent(t *testing.T) {
	var console bytes.Buffer

	logger, closer, err := New(config.LoggingCfg{Level: "info"}, &console)
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	logger.Error().Msg("nowhere")
	assert.Empty(t, console.String())
}

func TestNewReportsUnusableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var console bytes.Buffer
	logger, _, err := New(config.LoggingCfg{
		Level:   "info",
		Format:  "json",
		File:    filepath.Join(blocker, "coco.log"),
		Console: true,
	}, &console)
	require.Error(t, err)

	// The console side keeps working
	logger.Info().Msg("still here")
	assert.Contains(t, console.String(), "still here")
}

func TestRotateLogsIfNeeded(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "coco.log")
	now := time.Now()

	require.NoError(t, os.WriteFile(logPath, []byte("old"), 0o644))
	old := now.AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(logPath, old, old))

	// A rotation from long ago that must be pruned
	stale := logPath + ".20000101-000000"
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))
	ancient := now.AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(stale, ancient, ancient))

	// Unrelated files are never touched
	other := filepath.Join(dir, "other.log.1")
	require.NoError(t, os.WriteFile(other, nil, 0o644))
	require.NoError(t, os.Chtimes(other, ancient, ancient))

	require.NoError(t, rotateLogsIfNeeded(logPath, 7, now))

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "current log should have been rotated away")

	rotated := logPath + "." + old.Format("20060102-150405")
	_, err = os.Stat(rotated)
	assert.NoError(t, err, "just rotated file should be kept")

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale rotation should be removed")

	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestRotateLogsKeepsFreshFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "coco.log")
	require.NoError(t, os.WriteFile(logPath, []byte("fresh"), 0o644))

	require.NoError(t, rotateLogsIfNeeded(logPath, 30, time.Now()))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "fresh"))
}

func TestRotateLogsUsesStartStamp(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "coco.log")
	now := time.Now()

	// Written to on every run, so its mtime is always fresh
	require.NoError(t, os.WriteFile(logPath, []byte("busy"), 0o644))
	started := now.AddDate(0, 0, -9).Truncate(time.Second)
	require.NoError(t, writeStamp(stampPath(logPath), started))

	require.NoError(t, rotateLogsIfNeeded(logPath, 7, now))

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "log started before the period should be rotated")
	_, err = os.Stat(logPath + "." + started.Format("20060102-150405"))
	assert.NoError(t, err, "rotated file should be named after its start")

	restarted, ok := readStamp(stampPath(logPath))
	require.True(t, ok)
	assert.WithinDuration(t, now, restarted, 2*time.Second)
}

func TestRotateLogsStampLifecycle(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "coco.log")
	now := time.Now()

	// First run: no log yet, the period starts now
	require.NoError(t, rotateLogsIfNeeded(logPath, 7, now))
	first, ok := readStamp(stampPath(logPath))
	require.True(t, ok)

	// Later runs inside the period keep the stamp and the file
	require.NoError(t, os.WriteFile(logPath, []byte("entries"), 0o644))
	require.NoError(t, rotateLogsIfNeeded(logPath, 7, now.AddDate(0, 0, 3)))
	_, err := os.Stat(logPath)
	assert.NoError(t, err)
	second, ok := readStamp(stampPath(logPath))
	require.True(t, ok)
	assert.True(t, first.Equal(second), "stamp should not move while the period lasts")

	// The stamp never looks like a rotated log
	assert.False(t, strings.HasPrefix(filepath.Base(stampPath(logPath)), "coco.log."))
}
