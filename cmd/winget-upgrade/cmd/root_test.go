package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/service/upgrader"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "elevated exit code", err: &upgrader.ExitCodeError{Code: 42}, want: 42},
		{name: "wrapped elevated exit code", err: fmt.Errorf("run: %w", &upgrader.ExitCodeError{Code: 3}), want: 3},
		{name: "other error", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRootFlags(t *testing.T) {
	t.Parallel()

	flags := rootCmd.Flags()

	for _, name := range []string{"config", "log-dir", "log-level", "quiet", "no-elevate", "timeout", "elevated"} {
		require.NotNil(t, flags.Lookup(name), name)
	}

	require.True(t, flags.Lookup("elevated").Hidden)
	require.Equal(t, "c", flags.ShorthandLookup("c").Shorthand)
}
