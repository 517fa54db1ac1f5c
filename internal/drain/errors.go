package drain

import (
	"errors"
	"fmt"
)

var (
	// ErrSpawn is wrapped by every SpawnError.
	ErrSpawn = errors.New("unable to start child process")
	// ErrCanceled is returned when the context ends before the child exits.
	ErrCanceled = errors.New("child process canceled")
	// errEmptyExecutable is returned for an invocation without an executable.
	errEmptyExecutable = errors.New("executable must be provided")
)

// SpawnError reports that the child could not be started, e.g. it was not
// found or is not executable. No exit code exists in that case.
type SpawnError struct {
	// Executable is the program that failed to start.
	Executable string
	// Err is the underlying os/exec error.
	Err error
}

// Error implements error.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Executable, e.Err)
}

// Unwrap exposes both ErrSpawn and the underlying error to errors.Is.
func (e *SpawnError) Unwrap() []error {
	return []error{ErrSpawn, e.Err}
}
