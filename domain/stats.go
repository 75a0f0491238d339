package domain

// Summarize derives the report counters from a merge result.
func Summarize(repos []RepoManifest, result *MergeResult) Stats {
	stats := Stats{
		Repositories:    len(repos),
		Dependencies:    len(result.Dependencies),
		DevDependencies: len(result.DevDependencies),
		OutdatedRepos:   len(result.Outdated),
	}

	for _, report := range result.Outdated {
		stats.OutdatedEntries += len(report.Outdated)
	}

	// A name conflicts when more than one repository declares it, in either
	// class. The same repository declaring a name in both classes does not
	// count as a conflict.
	declarers := make(map[string]map[string]struct{})
	for _, sources := range []map[string]map[string]string{result.Sources, result.DevSources} {
		for name, bySource := range sources {
			if declarers[name] == nil {
				declarers[name] = make(map[string]struct{})
			}
			for repoID := range bySource {
				declarers[name][repoID] = struct{}{}
			}
		}
	}
	for _, ids := range declarers {
		if len(ids) > 1 {
			stats.ConflictingNames++
		}
	}

	return stats
}
