package upgrader

import (
	"errors"
	"fmt"
)

var (
	// errElevationFailed is returned when the relaunched instance still lacks rights.
	errElevationFailed = errors.New("relaunched instance is not elevated")
	// errAlreadyRunning is returned when another instance is active.
	errAlreadyRunning = errors.New("another instance is already running")
	// errRunFailed is returned when a step could not run to completion.
	errRunFailed = errors.New("upgrade run failed")
	// errUnhandledFault wraps a panic recovered during the run.
	errUnhandledFault = errors.New("unhandled fault")
)

// ExitCodeError carries the exit code the process should terminate with.
type ExitCodeError struct {
	// Code is the exit status of the elevated instance.
	Code int
}

// Error implements error.
func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("elevated instance exited with code %d", e.Code)
}
