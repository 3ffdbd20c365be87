package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Card.Title)
	assert.Nil(t, cfg.Data.Org)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[card]
title = "API Requests"
type = "bar"
chart-height = 240
period = "week"

[data]
org = "acme"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Card.Title)
	assert.Equal(t, "API Requests", *cfg.Card.Title)
	assert.Equal(t, "bar", *cfg.Card.Type)
	assert.Equal(t, 240, *cfg.Card.ChartHeight)
	assert.Equal(t, "week", *cfg.Card.Period)
	assert.Nil(t, cfg.Card.Color)
	assert.Equal(t, "acme", *cfg.Data.Org)
	assert.Nil(t, cfg.Data.DB)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[card]\ncolour = \"red\"\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card.colour")
}

func TestLoadConfigRejectsBadTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[card]\nchart-height = \"tall\"\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	assert.Equal(t, filepath.Join("/tmp/cfg", "chartcard", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/data", "chartcard", "chartcard.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/tmp/data", "chartcard", "chartcard.log"), DefaultLogPath())
}
