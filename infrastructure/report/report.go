// Package report renders merge results for humans and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

// Renderer implements domain.Reporter.
type Renderer struct{}

// New creates a new renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderText writes the human-readable merge report: a summary block and,
// when repositories are pinned behind the selection, one table per
// repository in declaration order.
func (r *Renderer) RenderText(
	w io.Writer,
	result *domain.MergeResult,
	stats domain.Stats,
) error {
	printTitle(w, "Merged manifest")
	printDetail(w, "%d repositories, %d dependencies, %d dev dependencies",
		stats.Repositories, stats.Dependencies, stats.DevDependencies)
	if stats.ConflictingNames > 0 {
		printDetail(w, "%d packages declared by more than one repository", stats.ConflictingNames)
	}
	fmt.Fprintln(w)

	if len(result.Outdated) == 0 {
		printSuccess(w, "All repositories already declare the selected versions")
		return nil
	}

	printWarning(w, "%d repositories pinned behind the selection (%d entries)",
		stats.OutdatedRepos, stats.OutdatedEntries)
	fmt.Fprintln(w)

	for _, report := range result.Outdated {
		header := report.Name
		if report.Repository != report.Name {
			header += " " + styleDim.Render("("+report.Repository+")")
		}
		if report.Git != nil {
			header += " " + styleDim.Render(describeGit(report.Git))
		}
		fmt.Fprintln(w, styleValue.Render(header))

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  PACKAGE\tDECLARED\tSELECTED")
		for _, entry := range report.Outdated {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", entry.Name, entry.Declared, entry.Selected)
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to render outdated table: %w", err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func describeGit(git *domain.GitInfo) string {
	switch {
	case git.Branch != "" && git.Commit != "":
		return git.Branch + "@" + git.Commit
	case git.Commit != "":
		return git.Commit
	default:
		return git.Branch
	}
}

// jsonReport is the machine-readable report envelope.
type jsonReport struct {
	Stats           domain.Stats                 `json:"stats"`
	Dependencies    map[string]string            `json:"dependencies"`
	DevDependencies map[string]string            `json:"devDependencies"`
	Outdated        []domain.OutdatedReport      `json:"outdated"`
	Sources         map[string]map[string]string `json:"sources,omitempty"`
	DevSources      map[string]map[string]string `json:"devSources,omitempty"`
}

// RenderJSON writes the machine-readable merge report.
func (r *Renderer) RenderJSON(
	w io.Writer,
	result *domain.MergeResult,
	stats domain.Stats,
) error {
	payload := jsonReport{
		Stats:           stats,
		Dependencies:    result.Dependencies,
		DevDependencies: result.DevDependencies,
		Outdated:        result.Outdated,
		Sources:         result.Sources,
		DevSources:      result.DevSources,
	}
	if payload.Outdated == nil {
		payload.Outdated = []domain.OutdatedReport{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}
