package track

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zhubert/termhub/internal/errors"
	"github.com/zhubert/termhub/internal/exec"
	"github.com/zhubert/termhub/internal/platform"
)

// CwdTracker resolves the current working directory of a live process. The
// shell's cwd drifts from the spawn directory as the user runs cd, so
// consumers poll this rather than trusting the spawn-time value.
type CwdTracker struct {
	exec exec.CommandExecutor
	plat platform.Platform
}

// NewCwdTracker creates a tracker using the given executor and platform.
func NewCwdTracker(executor exec.CommandExecutor, plat platform.Platform) *CwdTracker {
	return &CwdTracker{exec: executor, plat: plat}
}

// Cwd returns the process's current working directory.
func (t *CwdTracker) Cwd(ctx context.Context, pid int) (string, error) {
	const op = errors.Op("track.Cwd")
	if pid <= 0 {
		return "", errors.E(op, errors.KindInvalid, fmt.Sprintf("pid must be positive, got %d", pid))
	}

	switch t.plat.OS() {
	case "linux":
		out, err := t.exec.Output(ctx, "", "readlink", fmt.Sprintf("/proc/%d/cwd", pid))
		if err != nil {
			return "", errors.E(op, errors.KindPlatform, fmt.Sprintf("reading cwd of pid %d", pid), err)
		}
		return strings.TrimSpace(string(out)), nil

	case "darwin":
		out, err := t.exec.Output(ctx, "", "lsof", "-a", "-p", strconv.Itoa(pid), "-d", "cwd", "-Fn")
		if err != nil {
			return "", errors.E(op, errors.KindPlatform, fmt.Sprintf("reading cwd of pid %d", pid), err)
		}
		// lsof -Fn prints field lines; the cwd path follows an "n" tag.
		for _, line := range strings.Split(string(out), "\n") {
			if strings.HasPrefix(line, "n") && len(line) > 1 {
				return line[1:], nil
			}
		}
		return "", errors.E(op, errors.KindPlatform, fmt.Sprintf("no cwd in lsof output for pid %d", pid))

	default:
		return "", errors.E(op, errors.KindPlatform, fmt.Sprintf("cwd tracking not supported on %s", t.plat.OS()))
	}
}
