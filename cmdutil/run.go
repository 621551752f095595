// Package cmdutil runs the external volume management utilities.
//
// Secrets are only ever passed on the child's stdin, which is written in full
// and closed before the child is waited for.
package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait blocks on leftover pipe holders after the
// process was killed on timeout.
const waitDelay = time.Second

// Runner runs one external program.
type Runner struct {
	// Program is the short name used in error messages.
	Program string

	// Path is the binary name or path passed to exec.
	Path string

	// Timeout bounds every invocation. Zero means no bound.
	Timeout time.Duration
}

// Run spawns the program, copies stdin into it if non-nil and closes the pipe,
// then waits for exit and returns the captured stdout. The child is reaped on
// every path after a successful start.
func (r *Runner) Run(ctx context.Context, op string, stdin io.Reader, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	var stdinPipe io.WriteCloser
	if stdin != nil {
		pipe, err := cmd.StdinPipe()
		if err != nil {
			return nil, &SpawnError{Command: r.Program, Err: err}
		}
		stdinPipe = pipe
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: r.Program, Err: err}
	}

	var writeErr error
	if stdinPipe != nil {
		_, writeErr = io.Copy(stdinPipe, stdin)
		if err := stdinPipe.Close(); err != nil && writeErr == nil {
			writeErr = err
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, r.execError(ctx, op, err, stderr.Bytes())
	}
	if writeErr != nil {
		return nil, fmt.Errorf("%s %s: could not write to stdin: %w", r.Program, op, writeErr)
	}

	return stdout.Bytes(), nil
}

func (r *Runner) execError(ctx context.Context, op string, err error, stderr []byte) *ExecError {
	execErr := &ExecError{
		Program:  r.Program,
		Op:       op,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(Decode(stderr)),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		execErr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		execErr.Err = fmt.Errorf("%w: %v", ctxErr, err)
	}
	return execErr
}

// Decode converts command output to a string, replacing invalid UTF-8.
func Decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
