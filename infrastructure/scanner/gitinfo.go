package scanner

import (
	"github.com/go-git/go-git/v5"

	"github.com/TheForsakenSpirit/node-cache-builder/domain"
)

const shortHashLen = 7

// headInfo reads the branch and abbreviated commit of HEAD. A source that is
// not a Git checkout yields nil; provenance is best effort.
func headInfo(dir string) *domain.GitInfo {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}

	head, err := repo.Head()
	if err != nil {
		return nil
	}

	info := &domain.GitInfo{Commit: head.Hash().String()[:shortHashLen]}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info
}
