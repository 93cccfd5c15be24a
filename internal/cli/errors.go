package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitFailure     = 1
	ExitConfig      = 2
	ExitUnavailable = 3
)

// ExitError carries the exit code a command failure maps to.
//
// RunE functions return it instead of calling os.Exit, so tests can assert on
// the code. main extracts it with IsExitError.
type ExitError struct {
	// Code is the exit code to return to the shell.
	Code int
	Err  error
}

// Error returns the wrapped error's message, or "exit status N" without one.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code wrapping err.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// IsExitError extracts the exit code from err.
// Returns (0, false) for nil or errors that carry no code.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// ExitCode returns the process exit code for err: 0 for nil, the carried code
// for an ExitError, ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := IsExitError(err); ok {
		return code
	}
	return ExitFailure
}
