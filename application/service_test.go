package application_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheForsakenSpirit/node-cache-builder/application"
	"github.com/TheForsakenSpirit/node-cache-builder/config"
	"github.com/TheForsakenSpirit/node-cache-builder/domain"
	testdoubles "github.com/TheForsakenSpirit/node-cache-builder/test"
)

// --- helpers ---

type serviceDoubles struct {
	scanner   *testdoubles.SpyScanner
	installer *testdoubles.SpyInstaller
	archiver  *testdoubles.SpyArchiver
	reporter  *testdoubles.SpyReporter
}

func buildTestService(t *testing.T) (*application.BuildService, *serviceDoubles) {
	t.Helper()

	doubles := &serviceDoubles{
		scanner: &testdoubles.SpyScanner{
			Manifests: []domain.RepoManifest{
				{
					ID:   "repos/repo-a",
					Name: "repo-a",
					Dir:  t.TempDir(),
					Dependencies: []domain.Declaration{
						{Name: "lodash", Specifier: "^4.17.20"},
					},
				},
				{
					ID:   "repos/repo-b",
					Name: "repo-b",
					Dir:  t.TempDir(),
					Dependencies: []domain.Declaration{
						{Name: "lodash", Specifier: "^4.17.21"},
					},
				},
			},
		},
		installer: &testdoubles.SpyInstaller{
			Result: &domain.InstallResult{Dir: t.TempDir(), PackageManager: "npm"},
		},
		archiver: &testdoubles.SpyArchiver{
			Result: &domain.ArchiveResult{Path: "node-cache.tgz", BuildID: "b-1", Entries: 3, Size: 1024},
		},
		reporter: &testdoubles.SpyReporter{},
	}

	svc := application.NewBuildService(
		doubles.scanner, doubles.installer, doubles.archiver, doubles.reporter,
	)
	svc.Out = io.Discard
	return svc, doubles
}

func buildTestConfig() *config.Config {
	return &config.Config{
		Repositories: []config.RepositoryConfig{
			{Path: "repos/repo-a", Name: "repo-a"},
			{Path: "repos/repo-b"},
		},
		Cache: config.CacheConfig{Output: "node-cache.tgz"},
	}
}

// --- tests ---

func TestBuildService_Run(t *testing.T) {
	t.Parallel()

	t.Run("should scan, report, install and archive", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		cfg := buildTestConfig()

		// when
		err := svc.Run(context.Background(), cfg, application.BuildOptions{})

		// then
		require.NoError(t, err)

		require.Len(t, doubles.scanner.ScannedSources, 1)
		assert.Equal(t, []domain.RepoSource{
			{Location: "repos/repo-a", Name: "repo-a"},
			{Location: "repos/repo-b"},
		}, doubles.scanner.ScannedSources[0])

		require.Len(t, doubles.reporter.TextResults, 1)
		assert.Equal(t, "^4.17.21", doubles.reporter.TextResults[0].Dependencies["lodash"])

		require.Len(t, doubles.installer.Requests, 1)
		assert.Equal(t, doubles.scanner.Manifests, doubles.installer.Requests[0].Repos)

		require.Len(t, doubles.archiver.Requests, 1)
		archiveReq := doubles.archiver.Requests[0]
		assert.Equal(t, doubles.installer.Result.Dir, archiveReq.InstallDir)
		assert.Equal(t, "node-cache.tgz", archiveReq.OutputPath)
		assert.Equal(t, "npm", archiveReq.Manifest.PackageManager)
		assert.Equal(t, []domain.RepoSummary{
			{ID: "repos/repo-a", Name: "repo-a"},
			{ID: "repos/repo-b", Name: "repo-b"},
		}, archiveReq.Manifest.Repositories)
		assert.Equal(t, 2, archiveReq.Manifest.Stats.Repositories)
	})

	t.Run("should honor CLI overrides", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		cfg := buildTestConfig()
		cfg.Cache.PackageManager = "npm"
		jsonPath := filepath.Join(t.TempDir(), "report.json")

		// when
		err := svc.Run(context.Background(), cfg, application.BuildOptions{
			Output:         "elsewhere/cache.tgz",
			PackageManager: "pnpm",
			JSONReport:     jsonPath,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "pnpm", doubles.installer.Requests[0].PackageManager)
		assert.Equal(t, "elsewhere/cache.tgz", doubles.archiver.Requests[0].OutputPath)
		assert.Len(t, doubles.reporter.JSONResults, 1)
		assert.FileExists(t, jsonPath)
	})

	t.Run("should stop after reporting on dry run", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)

		// when
		err := svc.Run(context.Background(), buildTestConfig(), application.BuildOptions{DryRun: true})

		// then
		require.NoError(t, err)
		assert.Len(t, doubles.reporter.TextResults, 1)
		assert.Empty(t, doubles.installer.Requests)
		assert.Empty(t, doubles.archiver.Requests)
	})

	t.Run("should propagate scan failures without installing", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		doubles.scanner.ScanErr = errors.New("2 of 3 repositories failed to scan")

		// when
		err := svc.Run(context.Background(), buildTestConfig(), application.BuildOptions{})

		// then
		require.Error(t, err)
		assert.ErrorContains(t, err, "scan failed")
		assert.Empty(t, doubles.reporter.TextResults)
		assert.Empty(t, doubles.installer.Requests)
	})

	t.Run("should propagate install failures without archiving", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		doubles.installer.InstallErr = errors.New("npm install failed")

		// when
		err := svc.Run(context.Background(), buildTestConfig(), application.BuildOptions{})

		// then
		require.Error(t, err)
		assert.ErrorContains(t, err, "install failed")
		assert.Empty(t, doubles.archiver.Requests)
	})

	t.Run("should clean a temporary staging directory after archiving", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		stagingDir := doubles.installer.Result.Dir

		// when
		err := svc.Run(context.Background(), buildTestConfig(), application.BuildOptions{})

		// then
		require.NoError(t, err)
		assert.NoDirExists(t, stagingDir)
	})

	t.Run("should keep the staging directory when asked", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		stagingDir := doubles.installer.Result.Dir

		// when
		err := svc.Run(context.Background(), buildTestConfig(), application.BuildOptions{KeepWorkspace: true})

		// then
		require.NoError(t, err)
		assert.DirExists(t, stagingDir)
	})

	t.Run("should keep a workspace configured in the config file", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		stagingDir := doubles.installer.Result.Dir
		cfg := buildTestConfig()
		cfg.Cache.Workspace = stagingDir

		// when
		err := svc.Run(context.Background(), cfg, application.BuildOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, stagingDir, doubles.installer.Requests[0].Workspace)
		assert.DirExists(t, stagingDir)
	})
}

func TestBuildService_Scan(t *testing.T) {
	t.Parallel()

	t.Run("should render reports without installing", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)

		// when
		err := svc.Scan(context.Background(), buildTestConfig(), application.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Len(t, doubles.reporter.TextResults, 1)
		assert.Empty(t, doubles.installer.Requests)
		assert.Empty(t, doubles.archiver.Requests)
	})

	t.Run("should write the JSON report when configured", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		cfg := buildTestConfig()
		cfg.Report.JSON = filepath.Join(t.TempDir(), "report.json")

		// when
		err := svc.Scan(context.Background(), cfg, application.ScanOptions{})

		// then
		require.NoError(t, err)
		assert.Len(t, doubles.reporter.JSONResults, 1)
		assert.FileExists(t, cfg.Report.JSON)
	})

	t.Run("should surface reporter failures", func(t *testing.T) {
		t.Parallel()

		// given
		svc, doubles := buildTestService(t)
		doubles.reporter.TextErr = errors.New("broken pipe")

		// when
		err := svc.Scan(context.Background(), buildTestConfig(), application.ScanOptions{})

		// then
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to render report")
	})
}
