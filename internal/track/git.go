package track

import (
	"context"
	"strings"

	"github.com/zhubert/termhub/internal/errors"
	"github.com/zhubert/termhub/internal/exec"
)

// GitInfo is the displayable git state of one directory.
type GitInfo struct {
	Branch string `json:"branch"`
	Dirty  bool   `json:"dirty"`
}

// GitTracker reads git state through external git commands. Git is treated
// as an opaque tool; nothing here interprets repository internals.
type GitTracker struct {
	exec exec.CommandExecutor
}

// NewGitTracker creates a tracker using the given executor.
func NewGitTracker(executor exec.CommandExecutor) *GitTracker {
	return &GitTracker{exec: executor}
}

// IsRepo reports whether dir is inside a git work tree.
func (t *GitTracker) IsRepo(ctx context.Context, dir string) bool {
	out, err := t.exec.Output(ctx, dir, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Info returns the current branch and dirty flag for dir.
func (t *GitTracker) Info(ctx context.Context, dir string) (GitInfo, error) {
	const op = errors.Op("track.GitInfo")

	branch, err := t.exec.Output(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return GitInfo{}, errors.E(op, errors.KindIO, "reading current branch", err)
	}

	status, err := t.exec.Output(ctx, dir, "git", "status", "--porcelain")
	if err != nil {
		return GitInfo{}, errors.E(op, errors.KindIO, "reading worktree status", err)
	}

	return GitInfo{
		Branch: strings.TrimSpace(string(branch)),
		Dirty:  len(strings.TrimSpace(string(status))) > 0,
	}, nil
}
