package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/drain"
)

// TestWriteLine routes by stream, drops spinner art and hides empty lines by default.
func TestWriteLine(t *testing.T) {
	t.Parallel()

	var out, errs bytes.Buffer

	w := NewWriter(Options{Out: &out, Err: &errs})

	require.True(t, w.WriteLine(drain.OutputLine{Source: drain.Stdout, Text: "Found   Git  "}))
	require.False(t, w.WriteLine(drain.OutputLine{Source: drain.Stdout, Text: `-\|/`}))
	require.False(t, w.WriteLine(drain.OutputLine{Source: drain.Stdout, Text: "   "}))
	require.True(t, w.WriteLine(drain.OutputLine{Source: drain.Stderr, Text: "  1 MB / 2 MB"}))

	require.Equal(t, "Found Git\n", out.String())
	require.Equal(t, "Progress: 1 MB / 2 MB\n", errs.String())
}

// TestWriteLine_ShowEmpty prints blank lines when asked to.
func TestWriteLine_ShowEmpty(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	w := NewWriter(Options{Out: &out, ShowEmpty: true})

	require.True(t, w.WriteLine(drain.OutputLine{Text: ""}))
	require.Equal(t, "\n", out.String())
}

// TestWriteLine_Disabled keeps notices but drops child lines.
func TestWriteLine_Disabled(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	w := NewWriter(Options{Out: &out, Disabled: true})

	require.False(t, w.WriteLine(drain.OutputLine{Text: "hidden"}))
	w.Printf("Log file: %s", "C:\\logs\\run.log")
	require.Equal(t, "Log file: C:\\logs\\run.log\n", out.String())
}
