// Package vcs implements the commit-trailer protocol's VCS port by
// shelling out to the git CLI, the same way internal/adapters/shell
// shells out to run check commands.
package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.VCS = (*Git)(nil)

// Git implements ports.VCS against a working tree's git history.
type Git struct{}

// New creates a Git adapter.
func New() *Git {
	return &Git{}
}

// ReadTrailerHistory runs `git log -N --format=%(trailers:key=Verified,valueonly)`
// and returns the raw value of every non-empty line, most recent first
// (spec.md §4.6 sync).
func (g *Git) ReadTrailerHistory(projectRoot string, maxDepth int) ([]string, error) {
	out, err := g.run(projectRoot, "log", depthArg(maxDepth), "--format=%(trailers:key=Verified,valueonly)")
	if err != nil {
		return nil, zerr.Wrap(err, "read trailer history")
	}

	var values []string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values, nil
}

// WriteTrailer inserts or replaces the "Verified: value" trailer in the
// commit message file at commitMsgPath using git's own trailer tooling
// rather than hand-editing the file.
func (g *Git) WriteTrailer(commitMsgPath string, value string) error {
	trailer := "Verified: " + value
	_, err := g.run("", "interpret-trailers", "--in-place", "--if-exists", "replace", "--trailer", trailer, commitMsgPath)
	if err != nil {
		return zerr.Wrap(err, "write verified trailer")
	}
	return nil
}

func depthArg(maxDepth int) string {
	if maxDepth <= 0 {
		maxDepth = 20
	}
	return "-" + strconv.Itoa(maxDepth)
}

func (g *Git) run(dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(context.Background(), "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", zerr.With(zerr.Wrap(err, "git command failed"), "stderr", stderr.String())
	}
	return stdout.String(), nil
}
