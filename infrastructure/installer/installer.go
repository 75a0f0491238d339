// Package installer stages the merged manifest and runs the package manager
// to produce an installed node_modules tree and a lockfile.
package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

const (
	// Package manager identifiers.
	pkgMgrPnpm = "pnpm"
	pkgMgrYarn = "yarn"
	pkgMgrNpm  = "npm"

	stagingDirMode = 0o755
)

// lockfiles maps each package manager to the lockfile it maintains.
var lockfiles = map[string]string{
	pkgMgrPnpm: "pnpm-lock.yaml",
	pkgMgrYarn: "yarn.lock",
	pkgMgrNpm:  "package-lock.json",
}

// Installer implements domain.Installer by shelling out to the package
// manager.
type Installer struct{}

// New creates a new installer.
func New() *Installer {
	return &Installer{}
}

// Install writes the merged manifest into the staging directory and runs the
// package manager there. The caller owns the returned directory and cleans
// it up once the archive has been written.
func (i *Installer) Install(
	ctx context.Context,
	req domain.InstallRequest,
) (*domain.InstallResult, error) {
	dir := req.Workspace
	if dir == "" {
		tempDir, err := os.MkdirTemp("", "node-cache-builder-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		dir = tempDir
	} else if err := os.MkdirAll(dir, stagingDirMode); err != nil {
		return nil, fmt.Errorf("failed to create staging directory %q: %w", dir, err)
	}

	manifestPath, err := WriteManifest(dir, req.Result)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Staged merged manifest at %s", manifestPath)

	pm := req.PackageManager
	if pm == "" {
		pm = DetectPackageManager(req.Repos)
		logger.Infof("Detected package manager: %s", pm)
	}

	args, err := InstallCommand(pm)
	if err != nil {
		return nil, err
	}

	logger.Infof("Running %s install in %s...", pm, dir)
	cmd := exec.CommandContext(ctx, pm, args...)
	cmd.Dir = dir
	output, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return nil, fmt.Errorf("%s install failed: %w\nOutput:\n%s", pm, runErr, string(output))
	}

	result := &domain.InstallResult{
		Dir:            dir,
		PackageManager: pm,
		Output:         string(output),
	}
	if lockfile := lockfiles[pm]; lockfile != "" {
		if _, statErr := os.Stat(filepath.Join(dir, lockfile)); statErr == nil {
			result.Lockfile = lockfile
		}
	}
	return result, nil
}

// DetectPackageManager picks the package manager from the lockfiles present
// in the scanned repositories. pnpm wins over yarn, npm is the fallback.
func DetectPackageManager(repos []domain.RepoManifest) string {
	for _, pm := range []string{pkgMgrPnpm, pkgMgrYarn} {
		for _, repo := range repos {
			if repo.Dir == "" {
				continue
			}
			if _, err := os.Stat(filepath.Join(repo.Dir, lockfiles[pm])); err == nil {
				return pm
			}
		}
	}
	return pkgMgrNpm
}

// InstallCommand returns the install arguments for a package manager.
func InstallCommand(pm string) ([]string, error) {
	switch pm {
	case pkgMgrNpm:
		return []string{"install", "--no-audit", "--no-fund"}, nil
	case pkgMgrYarn:
		return []string{"install", "--non-interactive"}, nil
	case pkgMgrPnpm:
		return []string{"install"}, nil
	default:
		return nil, fmt.Errorf(
			"unsupported package manager %q (use one of: %s)",
			pm, strings.Join([]string{pkgMgrNpm, pkgMgrYarn, pkgMgrPnpm}, ", "),
		)
	}
}
