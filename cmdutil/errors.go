package cmdutil

import "fmt"

// SpawnError reports that a program could not be started at all, for example
// because it is not installed. It is an environment fault, not a rejected key.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s command: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExecError reports that a program ran but did not succeed.
type ExecError struct {
	// Program is the short program name, e.g. "zfs".
	Program string

	// Op is the operation that failed, e.g. "load-key".
	Op string

	// ExitCode is the process exit status, or -1 if it was terminated by a signal.
	ExitCode int

	// Stderr is the captured standard error with invalid UTF-8 replaced.
	Stderr string

	Err error
}

func (e *ExecError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s %s failed: %v", e.Program, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Program, e.Op, e.Stderr)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
