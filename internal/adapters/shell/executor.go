// Package shell provides the shell executor adapter: it runs a check's
// command through "sh -c", enforcing spec.md's timeout semantics with a
// real process-group kill rather than relying on the child to notice
// context cancellation.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"go.trai.ch/verify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec, shelling out through
// "sh -c" so checks can use arbitrary shell syntax (pipes, globs, &&).
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Run executes req.Command in req.ProjectRoot, capturing combined
// stdout+stderr into the result and, if req.Tee is set, simultaneously
// streaming it there for --verbose. If req.TimeoutSecs is positive and the
// command is still running when it elapses, Run kills the command's
// entire process group rather than only the immediate child, so shelled-out
// grandchildren cannot outlive the timeout.
func (e *Executor) Run(ctx context.Context, req ports.ExecRequest) (ports.ExecResult, error) {
	runCtx := ctx
	if req.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutSecs)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", req.Command) //nolint:gosec // check command is project configuration
	cmd.Dir = req.ProjectRoot
	cmd.Env = os.Environ()
	if req.VerifyFile != "" {
		cmd.Env = append(cmd.Env, "VERIFY_FILE="+req.VerifyFile)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if req.Tee != nil {
		out = io.MultiWriter(&buf, req.Tee)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()

	timedOut := runCtx.Err() == context.DeadlineExceeded
	if timedOut {
		return ports.ExecResult{Success: false, TimedOut: true, Output: buf.String()}, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ports.ExecResult{Success: false, Output: buf.String()}, nil
		}
		return ports.ExecResult{}, zerr.Wrap(err, "run check command")
	}

	return ports.ExecResult{Success: true, Output: buf.String()}, nil
}

// killProcessGroup kills cmd's whole process group (the negative pid
// convention) so a timed-out shell's children are reaped too, not just the
// "sh" wrapper itself.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
