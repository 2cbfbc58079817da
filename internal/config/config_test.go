// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "automat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/papers.db", cfg.Store.Path)
	assert.Equal(t, 10, cfg.Scrape.MaxPapersPerRun)
	assert.Equal(t, 4, cfg.Scrape.MaxRounds)
	assert.True(t, cfg.Scrape.ResolveDates)
	assert.Equal(t, "deepseek-chat", cfg.AI.Model)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.ScrapeInterval)
	assert.Equal(t, ":8080", cfg.Web.Addr)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /tmp/other.db
scrape:
  keywords:
    - superconductors
  max_papers_per_run: 25
ai:
  model: deepseek-reasoner
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
	assert.Equal(t, []string{"superconductors"}, cfg.Scrape.Keywords)
	assert.Equal(t, 25, cfg.Scrape.MaxPapersPerRun)
	assert.Equal(t, "deepseek-reasoner", cfg.AI.Model)
	// Untouched settings keep their defaults.
	assert.Equal(t, 4, cfg.Scrape.MaxRounds)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
store:
  path: data/papers.db
  flush_interval: 5s
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding config")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AUTOMAT_STORE_PATH", "/tmp/env.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Store.Path)
}

func TestLoadValidates(t *testing.T) {
	path := writeConfig(t, `
scrape:
  max_rounds: 0
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_rounds")
}
