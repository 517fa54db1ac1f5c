package upgrader

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/config"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/console"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/domain/run"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/drain"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/logger"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/repository/runlog"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/service/common"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/version"
)

const (
	// stderrPrefix marks stderr lines in the run log.
	stderrPrefix = "[stderr] "
	// stampLayout is used for the start and end lines.
	stampLayout = time.RFC3339
)

// runner drives one elevated run.
type runner struct {
	cfg        *config.Config
	executor   executor
	console    *console.Writer
	deps       dependencies
	log        *runlog.File
	summary    *run.Summary
	summarized bool
	startedAt  time.Time
}

// step binds an invocation to the outcome it fills in.
type step struct {
	invocation drain.Invocation
	outcome    *run.StepOutcome
}

func newRunner(cfg *config.Config, deps dependencies) *runner {
	return &runner{
		cfg:      cfg,
		executor: deps.executor,
		console:  deps.console,
		deps:     deps,
		summary:  run.NewSummary(),
	}
}

// run executes update then upgrade. The log is always summarized, finished and closed.
func (r *runner) run(ctx context.Context) (err error) {
	r.startedAt = r.deps.clock()
	r.openLog(ctx)

	defer r.finish(ctx, &err)
	defer r.recoverFault(ctx, &err)

	r.writeHeader(ctx)

	steps := []step{
		{invocation: r.cfg.Update, outcome: &r.summary.Update},
		{invocation: r.cfg.Upgrade, outcome: &r.summary.Upgrade},
	}

	for _, s := range steps {
		if !r.runStep(ctx, s) {
			break
		}
	}

	r.summarize(ctx)

	return r.outcomeError()
}

// openLog opens the run log, falling back to stderr when the directory is unusable.
func (r *runner) openLog(ctx context.Context) {
	opts := runlog.Options{
		Prefix:   r.cfg.LogPrefix,
		Clock:    r.deps.clock,
		Fallback: r.deps.fallback,
	}

	log, err := runlog.Open(r.cfg.LogDirectory, opts)
	if err != nil {
		logger.WarnKV(ctx, "Log file unavailable, writing log to stderr",
			"directory", r.cfg.LogDirectory,
			"error", err,
		)

		log = runlog.NewFallback(r.deps.fallback, opts)
	}

	r.log = log
}

func (r *runner) writeHeader(ctx context.Context) {
	runID := uuid.New()

	r.log.Appendf("===== Upgrade run started %s =====", r.startedAt.Format(stampLayout))
	r.log.Appendf("Run ID: %s", runID)
	r.log.Appendf("Log file: %s", r.logPath())
	r.log.Appendf("Version: %s", version.Full())

	actor, err := common.DetectActor()
	if err != nil {
		r.log.Appendf("WARNING: unable to detect actor: %v", err)
	} else {
		r.log.Appendf("Actor: %s", actor)
	}

	logger.InfoKV(ctx, "Upgrade run started", "run_id", runID.String(), "log_file", r.logPath())
}

// runStep runs one invocation and reports whether the next step may run.
func (r *runner) runStep(ctx context.Context, s step) bool {
	ctx = logger.WithKV(ctx, "step", s.outcome.Name)

	r.log.Appendf("----- %s: %s -----", s.outcome.Name, s.invocation)
	logger.InfoKV(ctx, "Running step", "command", s.invocation.String())

	result, err := r.executor.Run(ctx, s.invocation, r.onLine)
	if result != nil {
		s.outcome.ExitCode = result.ExitCode
		s.outcome.Lines = result.LinesEmitted
	}

	switch {
	case errors.Is(err, drain.ErrSpawn):
		s.outcome.Status = run.SpawnFailed
		s.outcome.Err = err

		r.log.Appendf("ERROR: %s could not be started: %v", s.outcome.Name, err)
		logger.ErrorKV(ctx, "Step could not be started", "error", err)

		return false
	case errors.Is(err, drain.ErrCanceled):
		s.outcome.Status = run.Canceled
		s.outcome.Err = err

		r.log.Appendf("WARNING: %s canceled after %d lines: %v", s.outcome.Name, s.outcome.Lines, err)
		logger.WarnKV(ctx, "Step canceled", "lines", s.outcome.Lines, "error", err)

		return false
	case err != nil:
		s.outcome.Status = run.Faulted
		s.outcome.Err = err

		r.log.Appendf("ERROR: %s failed: %v", s.outcome.Name, err)
		logger.ErrorKV(ctx, "Step failed", "error", err)

		return false
	}

	s.outcome.Status = run.Exited

	if result.Abandoned {
		r.log.Appendf("WARNING: %s left a process holding its output open; later output was not captured", s.outcome.Name)
	}

	r.log.Appendf("%s finished with exit code %d (%d lines in %s)",
		s.outcome.Name, result.ExitCode, result.LinesEmitted, result.Duration.Round(time.Millisecond))

	if result.ExitCode != 0 {
		r.log.Appendf("WARNING: %s exited with non-zero code %d", s.outcome.Name, result.ExitCode)
		logger.WarnKV(ctx, "Step exited with non-zero code", "exit_code", result.ExitCode)
	} else {
		logger.InfoKV(ctx, "Step finished", "lines", result.LinesEmitted)
	}

	return true
}

// onLine logs the raw line and echoes its sanitized form.
func (r *runner) onLine(line drain.OutputLine) {
	if line.Source == drain.Stderr {
		r.log.Append(stderrPrefix + line.Text)
	} else {
		r.log.Append(line.Text)
	}

	r.console.WriteLine(line)
}

func (r *runner) summarize(ctx context.Context) {
	if r.summarized {
		return
	}

	r.summarized = true

	r.log.Append(r.summary.Line())

	if r.summary.Succeeded() {
		logger.InfoKV(ctx, "All packages upgraded",
			"update", r.summary.Update.Code(),
			"upgrade", r.summary.Upgrade.Code(),
		)

		return
	}

	r.log.Append("WARNING: not every step succeeded, see the sections above")
	logger.WarnKV(ctx, "Upgrade run finished with problems",
		"update", r.summary.Update.Code(),
		"upgrade", r.summary.Upgrade.Code(),
	)
}

// outcomeError maps the step outcomes to the run error. Non-zero exit codes are not errors.
func (r *runner) outcomeError() error {
	for _, o := range []run.StepOutcome{r.summary.Update, r.summary.Upgrade} {
		switch o.Status {
		case run.Canceled:
			return o.Err
		case run.SpawnFailed, run.Faulted:
			return fmt.Errorf("%w: %s: %w", errRunFailed, o.Name, o.Err)
		case run.NotRun, run.Exited:
		}
	}

	return nil
}

// recoverFault turns a panic into a logged run failure.
func (r *runner) recoverFault(ctx context.Context, err *error) {
	p := recover()
	if p == nil {
		return
	}

	r.log.Appendf("ERROR: unhandled fault: %v\n%s", p, debug.Stack())
	logger.ErrorKV(ctx, "Unhandled fault during upgrade run", "panic", p)

	*err = fmt.Errorf("%w: %v", errUnhandledFault, p)
}

// finish writes the summary if still missing, the end line, prints the log location and closes the log.
func (r *runner) finish(ctx context.Context, err *error) {
	r.summarize(ctx)

	if *err != nil {
		r.log.Appendf("ERROR: %v", *err)
		logger.Errorf(ctx, "Upgrade run failed, details in log file %s", r.logPath())
	}

	finishedAt := r.deps.clock()
	r.log.Appendf("===== Upgrade run finished %s (took %s) =====",
		finishedAt.Format(stampLayout), finishedAt.Sub(r.startedAt).Round(time.Millisecond))

	r.console.Printf("Log file: %s", r.logPath())

	if closeErr := r.log.Close(); closeErr != nil {
		logger.WarnKV(ctx, "Unable to close log file", "error", closeErr)
	}

	if failures := r.log.Failures(); failures > 0 {
		logger.WarnKV(ctx, "Some log lines did not reach the log file", "count", failures)
	}
}

func (r *runner) logPath() string {
	if p := r.log.Path(); p != "" {
		return p
	}

	return "(stderr)"
}
