package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/drain"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/logger"
)

// Config holds the settings of one upgrade run.
type Config struct {
	// LogDirectory is where the timestamp-named run logs are created.
	LogDirectory string `yaml:"log_directory"`
	// LogPrefix starts every log file name.
	LogPrefix string `yaml:"log_prefix"`
	// LogLevel is the console notice level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Update refreshes the package sources.
	Update drain.Invocation `yaml:"update"`
	// Upgrade upgrades every installed package.
	Upgrade drain.Invocation `yaml:"upgrade"`
	// Timeout stops a hung invocation; zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	// WaitDelay bounds draining after the child exits.
	WaitDelay time.Duration `yaml:"wait_delay"`
	// HeartbeatInterval logs progress of long invocations at debug level.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	// MaxLineBytes splits longer output lines.
	MaxLineBytes int `yaml:"max_line_bytes"`
	// ChildEncoding is the IANA charset of the child's output; empty means UTF-8.
	ChildEncoding string `yaml:"child_encoding"`
	// Quiet disables echoing child lines to the console.
	Quiet bool `yaml:"quiet"`
	// ShowEmptyLines echoes lines that sanitize to an empty string.
	ShowEmptyLines bool `yaml:"show_empty_lines"`
	// PropagateElevatedExit makes the launcher exit with the elevated instance's code.
	// Nil means true.
	PropagateElevatedExit *bool `yaml:"propagate_elevated_exit,omitempty"`
	// SkipElevation runs without checking for or requesting elevation.
	SkipElevation bool `yaml:"skip_elevation"`
	// AllowConcurrent permits a run while another instance is active.
	AllowConcurrent bool `yaml:"allow_concurrent"`
}

const (
	// DefaultConfigFilename is looked up in the working directory when no path is given.
	DefaultConfigFilename = "winget-upgrade.yaml"

	// DefaultLogFolder is created under the user's Documents folder.
	DefaultLogFolder = "WingetUpgradeLogs"

	// DefaultHeartbeatInterval is how often a running invocation is reported at debug level.
	DefaultHeartbeatInterval = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errExecutableRequired is returned when an invocation has no program.
	errExecutableRequired = errors.New("executable must be provided")
	// errNegativeDuration is returned for negative timeouts and intervals.
	errNegativeDuration = errors.New("duration must not be negative")
	// errUnknownLogLevel is returned for an unparsable log_level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the settings used when no file is present, for goos.
func Default(goos string) *Config {
	cfg := &Config{
		LogDirectory:      defaultLogDirectory(),
		LogPrefix:         "winget-upgrade",
		LogLevel:          "info",
		WaitDelay:         drain.DefaultWaitDelay,
		HeartbeatInterval: DefaultHeartbeatInterval,
		MaxLineBytes:      drain.DefaultMaxLineBytes,
	}

	if goos == "windows" {
		cfg.Update = drain.NewInvocation("winget", "source", "update")
		cfg.Upgrade = drain.NewInvocation("winget",
			"upgrade", "--all",
			"--accept-source-agreements",
			"--accept-package-agreements")

		return cfg
	}

	cfg.Update = drain.NewInvocation("apt-get", "update")
	cfg.Update.Env = []string{"DEBIAN_FRONTEND=noninteractive"}
	cfg.Upgrade = drain.NewInvocation("apt-get", "upgrade", "-y")
	cfg.Upgrade.Env = []string{"DEBIAN_FRONTEND=noninteractive"}

	return cfg
}

// Load reads settings from path on top of the platform defaults.
// An empty path looks for DefaultConfigFilename and falls back to the defaults
// when it does not exist; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default(runtime.GOOS)

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
		// No file: defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// invocationOverrides captures the invocations present in a settings file.
type invocationOverrides struct {
	Update  *drain.Invocation `yaml:"update"`
	Upgrade *drain.Invocation `yaml:"upgrade"`
}

// unmarshal decodes contents on top of cfg. Scalar fields merge with the
// defaults, but an update or upgrade block replaces the default invocation
// as a whole, so its args and env are never inherited.
func unmarshal(contents []byte, cfg *Config) error {
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return err
	}

	var overrides invocationOverrides
	if err := yaml.Unmarshal(contents, &overrides); err != nil {
		return err
	}

	if overrides.Update != nil {
		cfg.Update = *overrides.Update
	}

	if overrides.Upgrade != nil {
		cfg.Upgrade = *overrides.Upgrade
	}

	return nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for unset optional fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Update.Executable == "" {
		return fmt.Errorf("update: %w", errExecutableRequired)
	}

	if cfg.Upgrade.Executable == "" {
		return fmt.Errorf("upgrade: %w", errExecutableRequired)
	}

	for name, d := range map[string]time.Duration{
		"timeout":            cfg.Timeout,
		"wait_delay":         cfg.WaitDelay,
		"heartbeat_interval": cfg.HeartbeatInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s: %w", name, errNegativeDuration)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if _, err := drain.LookupEncoding(cfg.ChildEncoding); err != nil {
		return fmt.Errorf("child_encoding: %w", err)
	}

	if cfg.LogDirectory == "" {
		cfg.LogDirectory = defaultLogDirectory()
	}

	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = drain.DefaultMaxLineBytes
	}

	if cfg.WaitDelay == 0 {
		cfg.WaitDelay = drain.DefaultWaitDelay
	}

	return nil
}

// PropagatesElevatedExit reports whether the launcher adopts the elevated exit code.
func (c *Config) PropagatesElevatedExit() bool {
	return c.PropagateElevatedExit == nil || *c.PropagateElevatedExit
}

// defaultLogDirectory is <home>/Documents/WingetUpgradeLogs, or the temp dir without a home.
func defaultLogDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), DefaultLogFolder)
	}

	return filepath.Join(home, "Documents", DefaultLogFolder)
}
