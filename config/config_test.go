package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheForsakenSpirit/node-cache-builder/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node-cache-builder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestLoad(t *testing.T) {
	t.Run("should load a complete configuration", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
repositories:
  - path: ./repos/frontend
    name: frontend
  - path: https://github.com/acme/backend.git
cache:
  output: ./dist/node-cache.tgz
  package_manager: pnpm
  workspace: ./.cache-workspace
report:
  json: ./merge-report.json
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		require.Len(t, cfg.Repositories, 2)
		assert.Equal(t, "./repos/frontend", cfg.Repositories[0].Path)
		assert.Equal(t, "frontend", cfg.Repositories[0].Name)
		assert.Equal(t, "https://github.com/acme/backend.git", cfg.Repositories[1].Path)
		assert.Empty(t, cfg.Repositories[1].Name)
		assert.Equal(t, "./dist/node-cache.tgz", cfg.Cache.Output)
		assert.Equal(t, "pnpm", cfg.Cache.PackageManager)
		assert.Equal(t, "./.cache-workspace", cfg.Cache.Workspace)
		assert.Equal(t, "./merge-report.json", cfg.Report.JSON)
	})

	t.Run("should default the archive output", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
repositories:
  - path: ./repos/frontend
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, config.DefaultOutput, cfg.Cache.Output)
	})

	t.Run("should expand environment variable references", func(t *testing.T) {
		// NOTE: cannot use t.Parallel() with t.Setenv()

		// given
		t.Setenv("TEST_REPOS_ROOT", "/srv/repos")
		path := writeConfig(t, `
repositories:
  - path: ${TEST_REPOS_ROOT}/frontend
cache:
  output: ${TEST_REPOS_ROOT}/node-cache.tgz
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "/srv/repos/frontend", cfg.Repositories[0].Path)
		assert.Equal(t, "/srv/repos/node-cache.tgz", cfg.Cache.Output)
	})

	t.Run("should fail when the file does not exist", func(t *testing.T) {
		t.Parallel()

		// when
		cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "repositories: [:::")

		// when
		cfg, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("should report every validation problem at once", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
repositories: []
cache:
  package_manager: bower
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "at least one repository must be configured")
		assert.ErrorContains(t, err, `cache.package_manager "bower" is not supported`)
	})

	t.Run("should reject duplicate repository paths", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
repositories:
  - path: ./repos/frontend
  - path: ./repos/frontend
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.ErrorContains(t, err, "duplicates repositories[0]")
	})

	t.Run("should reject a repository without a path", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
repositories:
  - name: nameless
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.ErrorContains(t, err, "repositories[0].path is required")
	})
}

func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("should round trip through Save and Load", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Repositories: []config.RepositoryConfig{
				{Path: "./repos/frontend", Name: "frontend"},
				{Path: "./repos/backend"},
			},
			Cache: config.CacheConfig{
				Output:         "./node-cache.tgz",
				PackageManager: "npm",
			},
		}
		path := filepath.Join(t.TempDir(), "node-cache-builder.yaml")

		// when
		saveErr := config.Save(cfg, path)
		loaded, loadErr := config.Load(path)

		// then
		require.NoError(t, saveErr)
		require.NoError(t, loadErr)
		assert.Equal(t, cfg.Repositories, loaded.Repositories)
		assert.Equal(t, cfg.Cache, loaded.Cache)
	})

	t.Run("should create parent directories", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Repositories: []config.RepositoryConfig{{Path: "./repos/frontend"}},
		}
		path := filepath.Join(t.TempDir(), "nested", "dir", "node-cache-builder.yaml")

		// when
		err := config.Save(cfg, path)

		// then
		require.NoError(t, err)
		assert.FileExists(t, path)
	})
}

//nolint:tparallel // subtests change the working directory and environment
func TestFindConfigFile(t *testing.T) {
	t.Run("should find a config file in the working directory", func(t *testing.T) {
		// given
		dir := t.TempDir()
		t.Setenv("HOME", dir)
		t.Chdir(dir)
		require.NoError(t, os.WriteFile("node-cache-builder.yaml", []byte("repositories: []"), 0o600))

		// when
		path, err := config.FindConfigFile()

		// then
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(".", "node-cache-builder.yaml"), path)
	})

	t.Run("should error when nothing is found", func(t *testing.T) {
		// given
		dir := t.TempDir()
		t.Setenv("HOME", dir)
		t.Chdir(dir)

		// when
		_, err := config.FindConfigFile()

		// then
		require.Error(t, err)
	})
}
