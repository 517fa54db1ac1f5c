package run

import (
	"fmt"
	"strconv"
)

// Status is the terminal state of one step.
type Status int

const (
	// NotRun means the step was skipped.
	NotRun Status = iota
	// Exited means the child ran to completion; ExitCode is meaningful.
	Exited
	// SpawnFailed means the child could not be started.
	SpawnFailed
	// Canceled means the child was stopped before it finished.
	Canceled
	// Faulted means an unexpected error ended the step.
	Faulted
)

// StepOutcome records what happened to one scheduled invocation.
type StepOutcome struct {
	// Name is the step label, "update" or "upgrade".
	Name string
	// Status is how the step ended.
	Status Status
	// ExitCode is the child's exit code when Status is Exited or Canceled.
	ExitCode int
	// Lines is the number of output lines captured.
	Lines int
	// Err is the failure behind SpawnFailed, Canceled or Faulted.
	Err error
}

// Succeeded reports a zero exit code.
func (o StepOutcome) Succeeded() bool {
	return o.Status == Exited && o.ExitCode == 0
}

// Code renders the outcome for the summary line.
func (o StepOutcome) Code() string {
	switch o.Status {
	case Exited:
		return strconv.Itoa(o.ExitCode)
	case SpawnFailed:
		return "spawn failed"
	case Canceled:
		return "canceled"
	case Faulted:
		return "failed"
	default:
		return "not run"
	}
}

// Summary collects the outcomes of the update and upgrade steps.
type Summary struct {
	Update  StepOutcome
	Upgrade StepOutcome
}

// NewSummary returns a summary where both steps have not run yet.
func NewSummary() *Summary {
	return &Summary{
		Update:  StepOutcome{Name: "update"},
		Upgrade: StepOutcome{Name: "upgrade"},
	}
}

// Line renders the summary line written to the log.
func (s *Summary) Line() string {
	return fmt.Sprintf("Summary: update exit code: %s, upgrade exit code: %s", s.Update.Code(), s.Upgrade.Code())
}

// Succeeded reports whether both steps exited with zero.
func (s *Summary) Succeeded() bool {
	return s.Update.Succeeded() && s.Upgrade.Succeeded()
}
