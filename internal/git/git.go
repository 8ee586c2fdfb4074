// Package git reads build provenance (commit and branch) from the project's
// repository so it can be stamped into manifests and POMs.
package git

import (
	stderrors "errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info describes the checked-out revision.
type Info struct {
	Commit string
	Branch string // empty when HEAD is detached
	Dirty  bool
}

// ShortCommit returns the first 12 characters of the commit hash.
func (i *Info) ShortCommit() string {
	if i == nil {
		return ""
	}
	if len(i.Commit) > 12 {
		return i.Commit[:12]
	}
	return i.Commit
}

// Describe inspects the repository containing dir, searching parent
// directories for .git. A directory outside any repository yields (nil, nil).
func Describe(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			// Repository without commits.
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	info := &Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info, nil
}
