package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSanitize covers each rule in order of precedence.
func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "dashes are spinner art", input: "---", want: "", wantOK: false},
		{name: "mixed spinner", input: `  -\|/  `, want: "", wantOK: false},
		{name: "single pipe", input: "|", want: "", wantOK: false},
		{name: "blank stays empty", input: "   ", want: "", wantOK: true},
		{name: "empty stays empty", input: "", want: "", wantOK: true},
		{name: "progress", input: "12.5 MB / 40 MB", want: "Progress: 12.5 MB / 40 MB", wantOK: true},
		{
			name:   "progress inside bar",
			input:  "  ██████████████▒▒▒▒▒▒  3,2 KB / 1024 KB   ",
			want:   "Progress: 3,2 KB / 1024 KB",
			wantOK: true,
		},
		{name: "progress in bytes", input: "512 B / 2 GB", want: "Progress: 512 B / 2 GB", wantOK: true},
		{name: "collapse whitespace", input: "a    b", want: "a b", wantOK: true},
		{name: "tabs collapse", input: "Name\t\tId", want: "Name Id", wantOK: true},
		{
			name:   "box drawing removed",
			input:  "┌──────┐ Found Git [Git.Git] Version 2.47.0 └──┘",
			want:   "Found Git [Git.Git] Version 2.47.0",
			wantOK: true,
		},
		{name: "only art becomes empty", input: "─────────────", want: "", wantOK: true},
		{name: "art around spinner is suppressed", input: "── - ──", want: "", wantOK: false},
		{name: "escape codes removed", input: "\x1b[32mSuccessfully installed\x1b[0m", want: "Successfully installed", wantOK: true},
		{name: "backspace spinner", input: "\b-\b\\\b|", want: "", wantOK: false},
		{name: "trailing carriage return", input: "Done\r", want: "Done", wantOK: true},
		{name: "no-break spaces collapse", input: "Name\u00a0\u00a0\u00a0Id\u2003\u2003Version", want: "Name Id Version", wantOK: true},
		{name: "no-break spinner", input: "-\u00a0\u00a0|", want: "", wantOK: false},
		{name: "invalid bytes become replacement runes", input: "ok \xff done", want: "ok \ufffd done", wantOK: true},
		{name: "art between invalid bytes", input: "0000\xe2\x94└\x80", want: "0000\ufffd\ufffd", wantOK: true},
		{name: "plain", input: "No installed package found matching input criteria.", want: "No installed package found matching input criteria.", wantOK: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Sanitize(tc.input)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

// TestSanitize_Idempotent feeds every kept result back into Sanitize.
func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	corpus := []string{
		"", "   ", "a    b", "12.5 MB / 40 MB", "5 MB  /  9 MB",
		"5 MB ▕/ 9 MB", "── - ──", "─ a ─ -", "█▒▒ 10%", "Progress: 1 KB / 2 KB",
		"Name               Id                 Version      Available    Source",
		"-----------------------------------------------------------------------",
		"Microsoft.Edge     Microsoft.Edge     129.0        130.0        winget",
		"\x1b[2K\r  ━━━━━━━━━━━━━━━━━━━━  1.00 MB / 1.00 MB",
		"Starting package install...", "\tindented\t",
		"0000\xe2\x94└\x80", "\xe2\x94\x80\x80", "a\u00a0\u00a0b", "\u3000\u3000x\u2028\u2028y",
	}

	for _, input := range corpus {
		once, ok := Sanitize(input)
		if !ok {
			continue
		}

		twice, ok := Sanitize(once)
		require.True(t, ok, "input %q", input)
		require.Equal(t, once, twice, "input %q", input)
	}
}

// FuzzSanitize checks that a kept result is a fixed point.
func FuzzSanitize(f *testing.F) {
	for _, seed := range []string{"", "12.5 MB / 40 MB", "── - ──", "0000\xe2\x94└\x80", "a\u00a0\u00a0b", "\x1b[2K\r━━ 1 KB / 2 KB"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		once, ok := Sanitize(input)
		if !ok {
			return
		}

		twice, ok := Sanitize(once)
		require.True(t, ok, "input %q", input)
		require.Equal(t, once, twice, "input %q", input)
	})
}
