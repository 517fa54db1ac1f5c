package run

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSummaryLine renders every status the way the log shows it.
func TestSummaryLine(t *testing.T) {
	t.Parallel()

	s := NewSummary()
	require.Equal(t, "Summary: update exit code: not run, upgrade exit code: not run", s.Line())
	require.False(t, s.Succeeded())

	s.Update.Status, s.Update.ExitCode = Exited, 0
	s.Upgrade.Status, s.Upgrade.ExitCode = Exited, -1978335189
	require.Equal(t, "Summary: update exit code: 0, upgrade exit code: -1978335189", s.Line())
	require.False(t, s.Succeeded())

	s.Upgrade.ExitCode = 0
	require.True(t, s.Succeeded())

	s.Update.Status = SpawnFailed
	s.Upgrade.Status = Canceled
	require.Equal(t, "Summary: update exit code: spawn failed, upgrade exit code: canceled", s.Line())
}

// TestActorString handles a nil actor.
func TestActorString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "unknown", (*Actor)(nil).String())
	require.Equal(t, "alice@build-01", (&Actor{Hostname: "build-01", Username: "alice"}).String())
}
