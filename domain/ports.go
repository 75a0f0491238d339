package domain

import (
	"context"
	"io"
)

// Scanner abstracts repository input: materializing each configured source
// (local directory or remote Git URL) and reading its package.json.
type Scanner interface {
	// Scan reads every source and returns one manifest per repository, in
	// source order. It validates all sources before returning: when any of
	// them fails, the returned error lists every failure and no manifests
	// are returned.
	Scan(ctx context.Context, sources []RepoSource) ([]RepoManifest, error)
}

// Installer abstracts the package manager run: writing the merged manifest
// into a staging directory and installing it to produce node_modules and a
// lockfile.
type Installer interface {
	// Install stages the merged manifest and runs the package manager.
	// The caller owns the returned directory and is responsible for
	// cleaning it up once the archive has been written.
	Install(ctx context.Context, req InstallRequest) (*InstallResult, error)
}

// Archiver abstracts cache archive creation from an install directory.
type Archiver interface {
	// Archive packs the install directory into a compressed archive at
	// req.OutputPath, embedding the cache manifest alongside the files.
	Archive(ctx context.Context, req ArchiveRequest) (*ArchiveResult, error)
}

// Reporter abstracts report rendering so the service can be tested without
// inspecting terminal output.
type Reporter interface {
	// RenderText writes the human-readable merge report to w.
	RenderText(w io.Writer, result *MergeResult, stats Stats) error

	// RenderJSON writes the machine-readable merge report to w.
	RenderJSON(w io.Writer, result *MergeResult, stats Stats) error
}
