package application

import (
	"context"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/TheForsakenSpirit/node-cache-builder/config"
	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

// BuildService orchestrates the full cache build flow:
// scan repositories -> merge manifests -> report -> install -> archive.
type BuildService struct {
	scanner   domain.Scanner
	installer domain.Installer
	archiver  domain.Archiver
	reporter  domain.Reporter

	// Out receives the human-readable report; defaults to stdout.
	Out io.Writer
}

// NewBuildService creates a new service with the given collaborators.
func NewBuildService(
	scanner domain.Scanner,
	installer domain.Installer,
	archiver domain.Archiver,
	reporter domain.Reporter,
) *BuildService {
	return &BuildService{
		scanner:   scanner,
		installer: installer,
		archiver:  archiver,
		reporter:  reporter,
		Out:       os.Stdout,
	}
}

// BuildOptions holds runtime options for a single build.
type BuildOptions struct {
	DryRun         bool
	Verbose        bool
	Output         string // If set, overrides cache.output (CLI override)
	PackageManager string // If set, overrides cache.package_manager (CLI override)
	JSONReport     string // If set, overrides report.json (CLI override)
	KeepWorkspace  bool   // Keep the staging directory after archiving
}

// Run executes the full build cycle using the provided configuration.
func (s *BuildService) Run(
	ctx context.Context,
	cfg *config.Config,
	opts BuildOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	manifests, result, stats, err := s.scanAndMerge(ctx, cfg)
	if err != nil {
		return err
	}

	if reportErr := s.report(cfg, opts.JSONReport, result, stats); reportErr != nil {
		return reportErr
	}

	if opts.DryRun {
		logger.Info("Dry run: skipping install and archive")
		return nil
	}

	output := opts.Output
	if output == "" {
		output = cfg.Cache.Output
	}
	packageManager := opts.PackageManager
	if packageManager == "" {
		packageManager = cfg.Cache.PackageManager
	}

	installResult, err := s.installer.Install(ctx, domain.InstallRequest{
		Result:         result,
		Repos:          manifests,
		PackageManager: packageManager,
		Workspace:      cfg.Cache.Workspace,
	})
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}

	// A workspace picked by the user survives the run; a temp dir does not.
	if opts.KeepWorkspace || cfg.Cache.Workspace != "" {
		logger.Debugf("Keeping staging directory %s", installResult.Dir)
	} else {
		defer func() {
			if cleanErr := os.RemoveAll(installResult.Dir); cleanErr != nil {
				logger.Warnf("Failed to clean staging directory %s: %v", installResult.Dir, cleanErr)
			}
		}()
	}

	logger.Infof("Installed with %s into %s", installResult.PackageManager, installResult.Dir)

	archiveResult, err := s.archiver.Archive(ctx, domain.ArchiveRequest{
		InstallDir: installResult.Dir,
		OutputPath: output,
		Manifest: domain.CacheManifest{
			PackageManager: installResult.PackageManager,
			Repositories:   summaries(manifests),
			Stats:          stats,
		},
	})
	if err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}

	logger.Infof(
		"Cache archive %s written to %s (%d entries, %s)",
		archiveResult.BuildID, archiveResult.Path, archiveResult.Entries,
		humanSize(archiveResult.Size),
	)
	return nil
}

// ScanOptions holds runtime options for a scan-only run.
type ScanOptions struct {
	Verbose    bool
	JSONReport string // If set, overrides report.json (CLI override)
}

// Scan runs the scan and merge steps and renders the reports without
// installing or archiving anything.
func (s *BuildService) Scan(
	ctx context.Context,
	cfg *config.Config,
	opts ScanOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	_, result, stats, err := s.scanAndMerge(ctx, cfg)
	if err != nil {
		return err
	}
	return s.report(cfg, opts.JSONReport, result, stats)
}

func (s *BuildService) scanAndMerge(
	ctx context.Context,
	cfg *config.Config,
) ([]domain.RepoManifest, *domain.MergeResult, domain.Stats, error) {
	sources := make([]domain.RepoSource, 0, len(cfg.Repositories))
	for _, repo := range cfg.Repositories {
		sources = append(sources, domain.RepoSource{Location: repo.Path, Name: repo.Name})
	}

	logger.Infof("Scanning %d repositories...", len(sources))
	manifests, err := s.scanner.Scan(ctx, sources)
	if err != nil {
		return nil, nil, domain.Stats{}, fmt.Errorf("scan failed: %w", err)
	}

	result := domain.Merge(manifests)
	stats := domain.Summarize(manifests, result)
	logger.Infof(
		"Merged %d dependencies and %d dev dependencies from %d repositories",
		stats.Dependencies, stats.DevDependencies, stats.Repositories,
	)
	return manifests, result, stats, nil
}

// report renders the text report and, when configured, the JSON report.
func (s *BuildService) report(
	cfg *config.Config,
	jsonOverride string,
	result *domain.MergeResult,
	stats domain.Stats,
) error {
	if err := s.reporter.RenderText(s.Out, result, stats); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	jsonPath := jsonOverride
	if jsonPath == "" {
		jsonPath = cfg.Report.JSON
	}
	if jsonPath == "" {
		return nil
	}

	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON report %q: %w", jsonPath, err)
	}
	defer f.Close()

	if renderErr := s.reporter.RenderJSON(f, result, stats); renderErr != nil {
		return fmt.Errorf("failed to write JSON report: %w", renderErr)
	}
	logger.Infof("JSON report written to %s", jsonPath)
	return nil
}

func summaries(manifests []domain.RepoManifest) []domain.RepoSummary {
	out := make([]domain.RepoSummary, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, domain.RepoSummary{ID: m.ID, Name: m.Name, Git: m.Git})
	}
	return out
}

const sizeUnit = 1024

// humanSize formats a byte count with binary units.
func humanSize(n int64) string {
	if n < sizeUnit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(sizeUnit), 0
	for m := n / sizeUnit; m >= sizeUnit; m /= sizeUnit {
		div *= sizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
