package domain

// selectionEntry is the running state for one package name within a
// dependency class. The specifier is replaced whenever a later declaration
// wins the comparison; the source set only ever grows.
type selectionEntry struct {
	specifier string
	sources   map[string]string // repository id -> declared specifier
}

// Merge folds every manifest into a single installable dependency set.
//
// Manifests are processed in input order and, within each manifest, in
// declaration order, so the first repository to declare a package is the
// incumbent for tie-breaking. Normal and dev declarations accumulate into
// separate selections; a name selected in the normal class is then excluded
// from the dev mapping, since installers treat dependencies as the stronger
// class. Finally each original declaration is compared against the merged
// mapping to report repositories pinned behind the selected version.
func Merge(repos []RepoManifest) *MergeResult {
	normal := make(map[string]*selectionEntry)
	dev := make(map[string]*selectionEntry)

	for _, repo := range repos {
		accumulate(normal, repo.ID, repo.Dependencies)
		accumulate(dev, repo.ID, repo.DevDependencies)
	}

	result := &MergeResult{
		Dependencies:    make(map[string]string, len(normal)),
		DevDependencies: make(map[string]string),
		Sources:         make(map[string]map[string]string, len(normal)),
		DevSources:      make(map[string]map[string]string, len(dev)),
	}

	for name, entry := range normal {
		result.Dependencies[name] = entry.specifier
		result.Sources[name] = entry.sources
	}

	for name, entry := range dev {
		result.DevSources[name] = entry.sources
		if _, shadowed := result.Dependencies[name]; shadowed {
			continue
		}
		result.DevDependencies[name] = entry.specifier
	}

	result.Outdated = collectOutdated(repos, result.Dependencies, result.DevDependencies)
	return result
}

// accumulate folds one manifest's declarations for a single class into the
// selection state.
func accumulate(entries map[string]*selectionEntry, repoID string, decls []Declaration) {
	for _, d := range decls {
		entry, ok := entries[d.Name]
		if !ok {
			entries[d.Name] = &selectionEntry{
				specifier: d.Specifier,
				sources:   map[string]string{repoID: d.Specifier},
			}
			continue
		}

		entry.sources[repoID] = d.Specifier
		entry.specifier, _ = SelectHigher(entry.specifier, d.Specifier)
	}
}

// collectOutdated walks the original declarations of every repository and
// reports the ones pinned to a version lower than the merged selection.
// Dev declarations compare against the merged dev mapping, falling back to
// the merged normal mapping when the name was excluded from the dev class.
func collectOutdated(repos []RepoManifest, deps, devDeps map[string]string) []OutdatedReport {
	var reports []OutdatedReport

	for _, repo := range repos {
		var entries []OutdatedDependency

		for _, d := range repo.Dependencies {
			entries = appendIfOutdated(entries, d, deps[d.Name])
		}
		for _, d := range repo.DevDependencies {
			selected, ok := devDeps[d.Name]
			if !ok {
				selected = deps[d.Name]
			}
			entries = appendIfOutdated(entries, d, selected)
		}

		if len(entries) == 0 {
			continue
		}
		reports = append(reports, OutdatedReport{
			Repository: repo.ID,
			Name:       repo.Name,
			Git:        repo.Git,
			Outdated:   entries,
		})
	}

	return reports
}

// appendIfOutdated adds a declaration when it is literally different from the
// selected specifier and orders strictly below it. Literal equality guards
// the case where both sides are unparseable copies of the same pin.
func appendIfOutdated(
	entries []OutdatedDependency,
	d Declaration,
	selected string,
) []OutdatedDependency {
	if d.Specifier == selected || !IsLower(d.Specifier, selected) {
		return entries
	}
	return append(entries, OutdatedDependency{
		Name:     d.Name,
		Declared: d.Specifier,
		Selected: selected,
	})
}
