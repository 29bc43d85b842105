// Package ports defines the hexagonal boundary interfaces the engine drives
// and the adapters implement.
package ports

import (
	"context"
	"io"
)

// ExecRequest is one invocation of a check's command: either the whole
// check (spec.md §4.5 "whole-check execution") or a single per-file
// invocation (spec.md §4.5 "per-file execution", VerifyFile set).
type ExecRequest struct {
	Command     string
	ProjectRoot string
	TimeoutSecs int
	// VerifyFile, when non-empty, is the project-relative path passed to
	// the command as VERIFY_FILE (per-file mode only).
	VerifyFile string
	// Tee, when non-nil, receives a real-time copy of combined
	// stdout+stderr (spec.md §4.5 --verbose).
	Tee io.Writer
}

// ExecResult is the outcome of one ExecRequest.
type ExecResult struct {
	Success  bool
	TimedOut bool
	// Output is the captured combined stdout+stderr, used for metadata
	// extraction.
	Output string
}

// Executor runs a check's command through the user's shell, enforcing a
// timeout via process-tree termination.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	Run(ctx context.Context, req ExecRequest) (ExecResult, error)
}
