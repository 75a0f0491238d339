// Package testdoubles provides test doubles (spies and stubs) for the domain
// interfaces. These are hand-crafted implementations, no mock frameworks.
package testdoubles

import (
	"context"
	"io"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

// ---------------------------------------------------------------------------
// SpyScanner
// ---------------------------------------------------------------------------

// SpyScanner implements domain.Scanner as a configurable spy.
// Configure the response fields for the behavior your test exercises,
// then inspect the call-tracking fields to verify what was requested.
type SpyScanner struct {
	// --- responses ---
	Manifests []domain.RepoManifest
	ScanErr   error

	// spy: sources received per call
	ScannedSources [][]domain.RepoSource
}

var _ domain.Scanner = (*SpyScanner)(nil)

func (s *SpyScanner) Scan(
	_ context.Context,
	sources []domain.RepoSource,
) ([]domain.RepoManifest, error) {
	s.ScannedSources = append(s.ScannedSources, sources)
	if s.ScanErr != nil {
		return nil, s.ScanErr
	}
	return s.Manifests, nil
}

// ---------------------------------------------------------------------------
// SpyInstaller
// ---------------------------------------------------------------------------

// SpyInstaller implements domain.Installer as a configurable spy.
type SpyInstaller struct {
	// --- responses ---
	Result     *domain.InstallResult
	InstallErr error

	// spy: requests received
	Requests []domain.InstallRequest
}

var _ domain.Installer = (*SpyInstaller)(nil)

func (i *SpyInstaller) Install(
	_ context.Context,
	req domain.InstallRequest,
) (*domain.InstallResult, error) {
	i.Requests = append(i.Requests, req)
	if i.InstallErr != nil {
		return nil, i.InstallErr
	}
	return i.Result, nil
}

// ---------------------------------------------------------------------------
// SpyArchiver
// ---------------------------------------------------------------------------

// SpyArchiver implements domain.Archiver as a configurable spy.
type SpyArchiver struct {
	// --- responses ---
	Result     *domain.ArchiveResult
	ArchiveErr error

	// spy: requests received
	Requests []domain.ArchiveRequest
}

var _ domain.Archiver = (*SpyArchiver)(nil)

func (a *SpyArchiver) Archive(
	_ context.Context,
	req domain.ArchiveRequest,
) (*domain.ArchiveResult, error) {
	a.Requests = append(a.Requests, req)
	if a.ArchiveErr != nil {
		return nil, a.ArchiveErr
	}
	return a.Result, nil
}

// ---------------------------------------------------------------------------
// SpyReporter
// ---------------------------------------------------------------------------

// SpyReporter implements domain.Reporter as a configurable spy. It records
// the results it was asked to render instead of producing output.
type SpyReporter struct {
	// --- responses ---
	TextErr error
	JSONErr error

	// spy: results received per render kind
	TextResults []*domain.MergeResult
	TextStats   []domain.Stats
	JSONResults []*domain.MergeResult
}

var _ domain.Reporter = (*SpyReporter)(nil)

func (r *SpyReporter) RenderText(
	_ io.Writer,
	result *domain.MergeResult,
	stats domain.Stats,
) error {
	r.TextResults = append(r.TextResults, result)
	r.TextStats = append(r.TextStats, stats)
	return r.TextErr
}

func (r *SpyReporter) RenderJSON(
	_ io.Writer,
	result *domain.MergeResult,
	_ domain.Stats,
) error {
	r.JSONResults = append(r.JSONResults, result)
	return r.JSONErr
}
