// Package scanner materializes configured repositories and reads their
// package.json manifests.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

const (
	manifestFileName = "package.json"
	workspaceDirMode = 0o755
)

// Scanner implements domain.Scanner over local directories and remote Git
// URLs. Remote sources are shallow-cloned into WorkspaceDir before reading.
type Scanner struct {
	WorkspaceDir string
}

// New creates a scanner that clones remote sources under the system temp
// directory.
func New() *Scanner {
	return &Scanner{WorkspaceDir: filepath.Join(os.TempDir(), "node-cache-builder")}
}

// Scan reads every source and returns one manifest per repository, in source
// order. All sources are validated before returning: when any of them fails,
// the error lists every failure and no manifests are returned.
func (s *Scanner) Scan(
	ctx context.Context,
	sources []domain.RepoSource,
) ([]domain.RepoManifest, error) {
	manifests := make([]domain.RepoManifest, 0, len(sources))
	var failures []error

	for _, src := range sources {
		manifest, err := s.scanOne(ctx, src)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", src.Location, err))
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(failures) > 0 {
		return nil, fmt.Errorf(
			"%d of %d repositories failed to scan: %w",
			len(failures), len(sources), errors.Join(failures...),
		)
	}
	return manifests, nil
}

func (s *Scanner) scanOne(
	ctx context.Context,
	src domain.RepoSource,
) (*domain.RepoManifest, error) {
	dir, err := s.materialize(ctx, src.Location)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestFileName, err)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestFileName, err)
	}

	name := src.Name
	if name == "" {
		name = displayName(src.Location)
	}

	manifest := &domain.RepoManifest{
		ID:              src.Location,
		Name:            name,
		Dir:             dir,
		Git:             headInfo(dir),
		Dependencies:    parsed.Dependencies,
		DevDependencies: parsed.DevDependencies,
	}

	logger.Debugf(
		"Scanned %s: %d dependencies, %d dev dependencies",
		manifest.ID, len(manifest.Dependencies), len(manifest.DevDependencies),
	)
	return manifest, nil
}

// materialize returns a local directory for the source, cloning remote URLs
// into the workspace. An existing clone is removed first so every scan sees
// the current remote state.
func (s *Scanner) materialize(ctx context.Context, location string) (string, error) {
	if !isRemote(location) {
		info, err := os.Stat(location)
		if err != nil {
			return "", fmt.Errorf("cannot access repository directory: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("repository path %q is not a directory", location)
		}
		return location, nil
	}

	dir := filepath.Join(s.WorkspaceDir, cloneDirName(location))
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear clone directory: %w", err)
	}
	if err := os.MkdirAll(s.WorkspaceDir, workspaceDirMode); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}

	logger.Infof("Cloning %s...", location)
	//nolint:exhaustruct // Minimal CloneOptions with required fields only
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   location,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone: %w", err)
	}
	return dir, nil
}

// isRemote reports whether the location is a Git URL rather than a local path.
func isRemote(location string) bool {
	for _, prefix := range []string{"http://", "https://", "git://", "ssh://", "git@"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// cloneDirName derives a stable directory name for a remote URL: the base
// name plus a short digest to keep equal names from distinct hosts apart.
func cloneDirName(url string) string {
	digest := sha256.Sum256([]byte(url))
	return displayName(url) + "-" + hex.EncodeToString(digest[:4])
}

// displayName extracts a repository name from a path or URL.
func displayName(location string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(location, "/"), ".git")
	base := filepath.Base(trimmed)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "repository"
	}
	return base
}
