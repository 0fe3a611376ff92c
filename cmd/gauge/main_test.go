package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gauge/internal/core/config"
	"gauge/internal/core/errors"
	"gauge/internal/data/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFlushesHistoryOnFailureExit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"),
		[]byte("package p\n\nfunc f() {}\n"), 0o644))
	// A dangling symlink survives the walk but fails the read, so the run
	// exits non-zero.
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.go"), filepath.Join(dir, "broken.go")))

	cfg := config.Default()
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.Scan.Workers = 1

	app, err := NewApp(cfg, discardLogger())
	require.NoError(t, err)

	code := run(context.Background(), app, []string{dir}, false, true, "")
	assert.Equal(t, 1, code)

	// The store was closed before the exit code was returned; the failed
	// run's snapshot must already be on disk.
	store, err := history.Open(cfg.History.Path, discardLogger())
	require.NoError(t, err)
	defer store.Close()

	snaps, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].Files)
	assert.Equal(t, 1, snaps[0].Failures)
}

func TestLoadConfigRejectsMalformedDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("gauge.toml", []byte("scan = [broken"), 0o644))

	_, err := loadConfig(defaultConfigPath)
	require.Error(t, err, "a present but broken config file must not fall back silently")
	assert.True(t, errors.IsCode(err, errors.CodeConfig))
}

func TestLoadConfigFallsBackOnlyWhenAbsent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(defaultConfigPath)
	require.NoError(t, err)
	assert.True(t, cfg.Scan.SkipGenerated, "built-in defaults apply without any file")

	require.NoError(t, os.WriteFile("gauge.example.toml", []byte("[scan]\nworkers = 7\n"), 0o644))
	cfg, err = loadConfig(defaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Scan.Workers)
}

func TestLoadConfigExplicitPathNeverFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := loadConfig("./elsewhere.toml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfig))
}
