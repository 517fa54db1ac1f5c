package drain

import "time"

// Source identifies which output stream a line came from.
type Source int

const (
	// Stdout is the child's standard output.
	Stdout Source = iota
	// Stderr is the child's standard error.
	Stderr
)

// String returns "stdout" or "stderr".
func (s Source) String() string {
	if s == Stderr {
		return "stderr"
	}

	return "stdout"
}

// OutputLine is one line read from the child, without its line terminator.
type OutputLine struct {
	// Source is the stream the line was read from.
	Source Source
	// Text is the raw line content.
	Text string
	// Sequence is the delivery index within one Run, starting at zero.
	Sequence int
}

// RunResult is the terminal outcome of one Run.
type RunResult struct {
	// ExitCode is the child's exit status; -1 when it was killed by a signal.
	ExitCode int
	// LinesEmitted counts the callbacks made.
	LinesEmitted int
	// Canceled reports that the run was stopped by its context or timeout.
	Canceled bool
	// Abandoned reports that a process outliving the child kept a stream open
	// and silent for WaitDelay; output written after that was not captured.
	Abandoned bool
	// Duration is the wall time from start to the end of draining.
	Duration time.Duration
}
