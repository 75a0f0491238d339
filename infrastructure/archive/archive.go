// Package archive packs an install directory into a compressed cache archive
// with an embedded manifest describing the build.
package archive

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	logger "github.com/sirupsen/logrus"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

// ManifestName is the archive entry describing the cache build.
const ManifestName = "cache-manifest.json"

const (
	outputDirMode   = 0o755
	manifestTarMode = 0o644
)

// Archiver implements domain.Archiver with a gzip-compressed tarball.
type Archiver struct{}

// New creates a new archiver.
func New() *Archiver {
	return &Archiver{}
}

// Archive packs the install directory into req.OutputPath. The cache
// manifest goes in as the first entry; a missing build id or timestamp is
// filled in here.
func (a *Archiver) Archive(
	ctx context.Context,
	req domain.ArchiveRequest,
) (*domain.ArchiveResult, error) {
	manifest := req.Manifest
	if manifest.BuildID == "" {
		manifest.BuildID = uuid.NewString()
	}
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = time.Now().UTC()
	}

	if dir := filepath.Dir(req.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, outputDirMode); err != nil {
			return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
		}
	}

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %q: %w", req.OutputPath, err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	entries, err := writeEntries(ctx, tw, req.InstallDir, manifest)
	if err != nil {
		return nil, err
	}

	if err = tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err = gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize compression: %w", err)
	}

	info, err := out.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	logger.Debugf("Archive %s: %d entries, %d bytes", req.OutputPath, entries, info.Size())
	return &domain.ArchiveResult{
		Path:    req.OutputPath,
		BuildID: manifest.BuildID,
		Entries: entries,
		Size:    info.Size(),
	}, nil
}

// writeEntries streams the cache manifest and every file under installDir
// into tw. filepath.WalkDir visits entries in lexical order, so equal inputs
// produce equal archive layouts.
func writeEntries(
	ctx context.Context,
	tw *tar.Writer,
	installDir string,
	manifest domain.CacheManifest,
) (int, error) {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode cache manifest: %w", err)
	}
	data = append(data, '\n')

	//nolint:exhaustruct // Minimal Header initialization with required fields only
	hdr := &tar.Header{
		Name:    ManifestName,
		Mode:    manifestTarMode,
		Size:    int64(len(data)),
		ModTime: manifest.CreatedAt,
	}
	if err = tw.WriteHeader(hdr); err != nil {
		return 0, fmt.Errorf("failed to write manifest header: %w", err)
	}
	if _, err = tw.Write(data); err != nil {
		return 0, fmt.Errorf("failed to write manifest entry: %w", err)
	}

	entries := 1
	walkErr := filepath.WalkDir(installDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == installDir {
			return nil
		}

		rel, relErr := filepath.Rel(installDir, path)
		if relErr != nil {
			return relErr
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		// pnpm lays out node_modules with symlinks; preserve them.
		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			target, linkErr := os.Readlink(path)
			if linkErr != nil {
				return linkErr
			}
			link = target
		}

		hdr, hdrErr := tar.FileInfoHeader(info, link)
		if hdrErr != nil {
			return hdrErr
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}

		if writeErr := tw.WriteHeader(hdr); writeErr != nil {
			return writeErr
		}
		entries++

		if !info.Mode().IsRegular() {
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		defer f.Close()

		if _, copyErr := io.Copy(tw, f); copyErr != nil {
			return copyErr
		}
		return nil
	})
	if walkErr != nil {
		return 0, fmt.Errorf("failed to pack %s: %w", installDir, walkErr)
	}
	return entries, nil
}
