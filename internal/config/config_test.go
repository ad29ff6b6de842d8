package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")

	cfg := DefaultConfig("demo")
	require.NoError(t, SaveConfig(cfg, path))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", got.ProjectID)
	assert.Equal(t, "game.pak", got.Archive.Path)
}

func TestLoadConfig_RejectsWrongVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	cfg := DefaultConfig("demo")
	cfg.Version = "99"
	require.NoError(t, SaveConfig(cfg, path))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConfigPathAndDir(t *testing.T) {
	assert.Equal(t, filepath.Join("root", ".scriptpatch"), ConfigDir("root"))
	assert.Equal(t, filepath.Join("root", ".scriptpatch", "project.yaml"), ConfigPath("root"))
}
