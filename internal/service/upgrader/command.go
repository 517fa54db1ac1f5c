package upgrader

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/config"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/console"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/drain"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/elevation"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/logger"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/process"
)

// ElevatedFlag marks an instance started by the elevation relaunch.
const ElevatedFlag = "--elevated"

// Options are inputs accepted by the upgrader entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// LogDirectory overrides the configured log directory.
	LogDirectory string
	// LogLevel overrides the configured console log level.
	LogLevel string
	// Timeout overrides the configured per-invocation timeout.
	Timeout time.Duration
	// Quiet disables echoing child output.
	Quiet bool
	// SkipElevation runs without requesting administrative rights.
	SkipElevation bool
	// Elevated is set when this instance is the result of a relaunch.
	Elevated bool
	// Args are the command-line arguments re-supplied to the elevated instance.
	Args []string
}

// executor runs one invocation and streams its lines.
type executor interface {
	Run(ctx context.Context, inv drain.Invocation, onLine func(drain.OutputLine)) (*drain.RunResult, error)
}

// elevator checks for and acquires administrative rights.
type elevator interface {
	IsElevated() bool
	Relaunch(ctx context.Context, exe string, args []string) (int, error)
}

// dependencies are the collaborators of a run; unset fields get real implementations.
type dependencies struct {
	executor       executor
	elevator       elevator
	console        *console.Writer
	fallback       io.Writer
	clock          func() time.Time
	executable     func() (string, error)
	otherInstances func() (int, error)
}

// Run executes the upgrade lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	return execute(ctx, opts, dependencies{})
}

func execute(ctx context.Context, opts *Options, deps dependencies) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "winget-upgrade")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = opts.apply(cfg); err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	deps, err = deps.withDefaults(cfg)
	if err != nil {
		return err
	}

	if !cfg.SkipElevation && !deps.elevator.IsElevated() {
		return relaunch(ctx, cfg, opts, deps)
	}

	if !cfg.AllowConcurrent {
		if err = ensureSingleInstance(ctx, deps); err != nil {
			return err
		}
	}

	return newRunner(cfg, deps).run(ctx)
}

// relaunch starts the elevated instance, waits for it and maps its exit code.
func relaunch(ctx context.Context, cfg *config.Config, opts *Options, deps dependencies) error {
	if opts.Elevated {
		return errElevationFailed
	}

	exe, err := deps.executable()
	if err != nil {
		return fmt.Errorf("resolve own executable: %w", err)
	}

	args := append(slices.Clone(opts.Args), ElevatedFlag)

	logger.InfoKV(ctx, "Administrative rights required, relaunching elevated", "executable", exe)

	code, err := deps.elevator.Relaunch(ctx, exe, args)
	if err != nil {
		return fmt.Errorf("relaunch elevated: %w", err)
	}

	logger.InfoKV(ctx, "Elevated instance finished", "exit_code", code)

	if code != 0 && cfg.PropagatesElevatedExit() {
		return &ExitCodeError{Code: code}
	}

	return nil
}

// ensureSingleInstance refuses to run next to another active instance.
// A process table that cannot be read does not block the run.
func ensureSingleInstance(ctx context.Context, deps dependencies) error {
	count, err := deps.otherInstances()
	if err != nil {
		logger.WarnKV(ctx, "Unable to check for other instances", "error", err)
		return nil
	}

	if count > 0 {
		return fmt.Errorf("%w (%d found)", errAlreadyRunning, count)
	}

	return nil
}

// apply copies command-line overrides into cfg.
func (o *Options) apply(cfg *config.Config) error {
	if o.LogDirectory != "" {
		cfg.LogDirectory = o.LogDirectory
	}

	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}

	cfg.Quiet = cfg.Quiet || o.Quiet
	cfg.SkipElevation = cfg.SkipElevation || o.SkipElevation

	return config.Validate(cfg)
}

func (d dependencies) withDefaults(cfg *config.Config) (dependencies, error) {
	if d.executor == nil {
		enc, err := drain.LookupEncoding(cfg.ChildEncoding)
		if err != nil {
			return d, err
		}

		d.executor = &drain.Drainer{
			Encoding:          enc,
			MaxLineBytes:      cfg.MaxLineBytes,
			Timeout:           cfg.Timeout,
			WaitDelay:         cfg.WaitDelay,
			HeartbeatInterval: cfg.HeartbeatInterval,
		}
	}

	if d.elevator == nil {
		d.elevator = elevation.Host{}
	}

	if d.console == nil {
		d.console = console.NewWriter(console.Options{
			ShowEmpty: cfg.ShowEmptyLines,
			Disabled:  cfg.Quiet,
		})
	}

	if d.fallback == nil {
		d.fallback = os.Stderr
	}

	if d.clock == nil {
		d.clock = time.Now
	}

	if d.executable == nil {
		d.executable = os.Executable
	}

	if d.otherInstances == nil {
		d.otherInstances = countOtherInstances
	}

	return d, nil
}

func countOtherInstances() (int, error) {
	name, err := process.Executable()
	if err != nil {
		return 0, err
	}

	others, err := process.Others(name)
	if err != nil {
		return 0, err
	}

	return len(others), nil
}
