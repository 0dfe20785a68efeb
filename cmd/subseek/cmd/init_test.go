package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subseek/subseek/internal/config"
)

func TestInitCmd_CreatesProjectConfig(t *testing.T) {
	// Given: an empty directory
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	// When: running init
	out, _, err := runRoot(t, "init", "--config", dir)

	// Then: the template lands as .subseek.yaml and loads cleanly
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	path := filepath.Join(dir, ".subseek.yaml")
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: embedded")

	cfg, err := config.Load(dir)
	require.NoError(t, err, "Generated config should pass validation")
	assert.Equal(t, config.BackendEmbedded, cfg.Backend)
}

func TestInitCmd_PreservesExistingConfig(t *testing.T) {
	// Given: a directory with a hand-edited config
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	path := filepath.Join(dir, ".subseek.yaml")
	writeFile(t, path, "version: 1\nbackend: elasticsearch\n")

	// When: running init without --force
	out, _, err := runRoot(t, "init", "--config", dir)

	// Then: the file is untouched
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: elasticsearch", "Existing config must not be overwritten")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	// Given: a directory with a stale config
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	path := filepath.Join(dir, ".subseek.yaml")
	writeFile(t, path, "version: 1\nbackend: elasticsearch\n")

	// When: running init --force
	out, _, err := runRoot(t, "init", "--config", dir, "--force")

	// Then: the template replaces it
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: embedded")
}

func TestInitCmd_UserConfig(t *testing.T) {
	// Given: an isolated user config location
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	// When: running init --user
	out, _, err := runRoot(t, "init", "--user")

	// Then: the user template lands at the XDG path
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	path := config.GetUserConfigPath()
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache:")
}

func TestInitCmd_UserConfigForceBacksUp(t *testing.T) {
	// Given: an existing user config
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	writeFile(t, path, "version: 1\ncache:\n  size: 42\n")

	// When: running init --user without --force, then with it
	out, _, err := runRoot(t, "init", "--user")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, _, err = runRoot(t, "init", "--user", "--force")

	// Then: the old config is backed up before the overwrite
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up existing config")

	backups, err := filepath.Glob(path + ".bak.*")
	require.NoError(t, err)
	assert.NotEmpty(t, backups, "A timestamped backup should exist")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server:", "New template should be in place")
}
