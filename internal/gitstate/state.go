// Package gitstate reads the checkpoint used for "new since last commit"
// derived output: the timestamp of the most recent commit in the project's
// repository.
package gitstate

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Checkpoint describes the reference point for since-checkpoint output.
type Checkpoint struct {
	CommitTime time.Time
	Branch     string
	Commit     string
}

// IsZero reports whether no checkpoint could be determined.
func (c Checkpoint) IsZero() bool {
	return c.CommitTime.IsZero()
}

// Capture reads the last-commit checkpoint for dir. All errors are
// swallowed: if git is not installed, the directory is not a repo, or the
// repo has no commits, a zero Checkpoint is returned and callers treat
// every message as "since checkpoint".
func Capture(dir string) Checkpoint {
	var cp Checkpoint

	if ts := gitOutput(dir, "log", "-1", "--format=%ct"); ts != "" {
		if secs, err := strconv.ParseInt(ts, 10, 64); err == nil {
			cp.CommitTime = time.Unix(secs, 0).UTC()
		}
	}
	cp.Branch = gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	cp.Commit = gitOutput(dir, "rev-parse", "--short", "HEAD")

	return cp
}

// gitOutput runs a git command and returns trimmed stdout.
// Returns "" on any error.
func gitOutput(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
