package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/logger"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/service/upgrader"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/version"
)

var (
	// options collects the flag values passed to the upgrader.
	//nolint:gochecknoglobals // Bound to Cobra flags.
	options upgrader.Options

	// rootCmd refreshes package sources and upgrades every installed package.
	//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
	rootCmd = &cobra.Command{
		Use:   version.Name,
		Short: "Upgrade every installed package and keep a log of the run.",
		Long: `Run the package manager's update and upgrade commands unattended.

The program relaunches itself with administrative rights when needed, refreshes
the package sources, then upgrades every installed package. Child output is
written verbatim to a timestamped log file and echoed to the console with
spinners, progress bars and box drawing cleaned up.

A summary with both exit codes closes every log. A failing update does not stop
the upgrade from running.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options.Args = os.Args[1:]

			return upgrader.Run(ctx, &options)
		},
	}
)

// Execute runs the CLI and exits with the elevated instance's code or 1 on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()
	if err != nil {
		logger.Errorf(context.Background(), "%v", err)
	}

	logger.Sync()

	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}

// exitCode maps the run error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *upgrader.ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return 1
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&options.ConfigPath, "config", "c", "", "path to configuration file (default ./winget-upgrade.yaml when present)")
	flags.StringVar(&options.LogDirectory, "log-dir", "", "directory for run log files")
	flags.StringVar(&options.LogLevel, "log-level", "", "console log level: debug, info, warn, error")
	flags.BoolVarP(&options.Quiet, "quiet", "q", false, "do not echo package manager output")
	flags.BoolVar(&options.SkipElevation, "no-elevate", false, "run without requesting administrative rights")
	flags.DurationVar(&options.Timeout, "timeout", time.Duration(0), "stop an invocation after this long (0 disables)")

	// Hidden marker set by the elevation relaunch.
	elevated := strings.TrimPrefix(upgrader.ElevatedFlag, "--")
	flags.BoolVar(&options.Elevated, elevated, false, "instance was relaunched with administrative rights")

	err := flags.MarkHidden(elevated)
	if err != nil {
		panic(err)
	}
}
