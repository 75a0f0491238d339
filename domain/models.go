package domain

import "time"

// Declaration is a single dependency declaration as it appears in a
// package.json mapping: the package name and the version specifier string.
// Order matters: declarations keep the position they had in the file.
type Declaration struct {
	Name      string `json:"name"`
	Specifier string `json:"specifier"`
}

// GitInfo carries the checkout state of a repository at scan time.
type GitInfo struct {
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"` // abbreviated HEAD hash
}

// RepoSource describes one configured repository input before scanning.
// Location is either a local directory or a remote Git URL.
type RepoSource struct {
	Location string
	Name     string // optional display name; defaults to the base name
}

// RepoManifest is the scanned view of one repository: its identity plus the
// dependency declarations read from its package.json, in declaration order.
type RepoManifest struct {
	ID              string        `json:"id"`   // unique identifier (configured path or URL)
	Name            string        `json:"name"` // display name
	Dir             string        `json:"-"`    // local directory after materialization
	Git             *GitInfo      `json:"git,omitempty"`
	Dependencies    []Declaration `json:"dependencies,omitempty"`
	DevDependencies []Declaration `json:"devDependencies,omitempty"`
}

// OutdatedDependency is one pinned-behind declaration: the repository declared
// Declared for the package, but the merge selected Selected.
type OutdatedDependency struct {
	Name     string `json:"name"`
	Declared string `json:"declared"`
	Selected string `json:"selected"`
}

// OutdatedReport groups the outdated declarations of a single repository,
// in the order the repository declared them (normal class first, then dev).
type OutdatedReport struct {
	Repository string               `json:"repository"`
	Name       string               `json:"name"`
	Git        *GitInfo             `json:"git,omitempty"`
	Outdated   []OutdatedDependency `json:"outdated"`
}

// MergeResult is the outcome of merging every scanned manifest into a single
// installable dependency set.
//
// Sources and DevSources record, per package name, every repository that
// declared it and the specifier it declared. They mirror the selection state,
// not the installable mappings: a name moved out of DevDependencies because a
// normal declaration shadows it still keeps its entry in DevSources.
type MergeResult struct {
	Dependencies    map[string]string            `json:"dependencies"`
	DevDependencies map[string]string            `json:"devDependencies"`
	Outdated        []OutdatedReport             `json:"outdated,omitempty"`
	Sources         map[string]map[string]string `json:"sources,omitempty"`
	DevSources      map[string]map[string]string `json:"devSources,omitempty"`
}

// Stats summarizes a merge result for reports and the cache manifest.
type Stats struct {
	Repositories     int `json:"repositories"`
	Dependencies     int `json:"dependencies"`
	DevDependencies  int `json:"devDependencies"`
	OutdatedRepos    int `json:"outdatedRepositories"`
	OutdatedEntries  int `json:"outdatedEntries"`
	ConflictingNames int `json:"conflictingNames"` // names declared by more than one repository
}

// RepoSummary is the provenance slice of one repository embedded in the
// cache manifest.
type RepoSummary struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Git  *GitInfo `json:"git,omitempty"`
}

// CacheManifest describes an installed-package cache archive: who built it,
// when, from which repositories, and with which package manager.
type CacheManifest struct {
	BuildID        string        `json:"buildId"`
	CreatedAt      time.Time     `json:"createdAt"`
	PackageManager string        `json:"packageManager"`
	Repositories   []RepoSummary `json:"repositories"`
	Stats          Stats         `json:"stats"`
}

// InstallRequest asks an installer to materialize a merge result on disk and
// run the package manager over it.
type InstallRequest struct {
	Result         *MergeResult
	Repos          []RepoManifest // used for package manager detection
	PackageManager string         // explicit override; empty means auto-detect
	Workspace      string         // staging directory; empty means a temp dir
}

// InstallResult reports where the installer staged the merged manifest and
// what the package manager produced.
type InstallResult struct {
	Dir            string // staging directory holding package.json and node_modules
	PackageManager string
	Lockfile       string // lockfile filename written by the package manager, if any
	Output         string // combined package manager output, for diagnostics
}

// ArchiveRequest asks an archiver to pack an install directory into a
// compressed cache archive described by Manifest.
type ArchiveRequest struct {
	InstallDir string
	OutputPath string
	Manifest   CacheManifest
}

// ArchiveResult describes the archive that was written.
type ArchiveResult struct {
	Path    string
	BuildID string
	Entries int
	Size    int64
}
