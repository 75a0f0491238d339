package installer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

const manifestFileMode = 0o644

// stagedManifest is the synthetic package.json written for the install run.
// encoding/json sorts map keys, so the output is deterministic for a given
// merge result.
type stagedManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// WriteManifest writes the merged dependency set as an installable
// package.json in dir and returns its path.
func WriteManifest(dir string, result *domain.MergeResult) (string, error) {
	manifest := stagedManifest{
		Name:            "node-cache-workspace",
		Version:         "0.0.0",
		Private:         true,
		Dependencies:    result.Dependencies,
		DevDependencies: result.DevDependencies,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode merged manifest: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, "package.json")
	if writeErr := os.WriteFile(path, data, manifestFileMode); writeErr != nil {
		return "", fmt.Errorf("failed to write merged manifest: %w", writeErr)
	}
	return path, nil
}
