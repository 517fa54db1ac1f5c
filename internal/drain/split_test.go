package drain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, input string, maxLine int) []string {
	t.Helper()

	scanner := newScanner(strings.NewReader(input), maxLine)

	var got []string
	for scanner.Scan() {
		got = append(got, scanner.Text())
	}

	require.NoError(t, scanner.Err())

	return got
}

// TestSplitLines covers terminators and trailing data.
func TestSplitLines(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"":               nil,
		"one":            {"one"},
		"one\n":          {"one"},
		"a\r\nb\r\n":     {"a", "b"},
		"a\rb\r":         {"a", "b"},
		"\n\n":           {"", ""},
		"  10%\r  20%\r": {"  10%", "  20%"},
		"x\r\n\ry":       {"x", "", "y"},
	}

	for input, want := range cases {
		require.Equal(t, want, scanAll(t, input, DefaultMaxLineBytes), "input %q", input)
	}
}

// TestSplitLines_NeverTooLong chunks data without a terminator.
func TestSplitLines_NeverTooLong(t *testing.T) {
	t.Parallel()

	got := scanAll(t, strings.Repeat("a", 10)+"\r", 4)
	require.Equal(t, []string{"aaaa", "aaaa", "aa"}, got)
}

// TestSplitLines_CRLFAcrossReads keeps "\r\n" together when the reader splits it.
func TestSplitLines_CRLFAcrossReads(t *testing.T) {
	t.Parallel()

	fn := splitLines(DefaultMaxLineBytes)

	advance, token, err := fn([]byte("abc\r"), false)
	require.NoError(t, err)
	require.Zero(t, advance)
	require.Nil(t, token)

	advance, token, err = fn([]byte("abc\r\n"), false)
	require.NoError(t, err)
	require.Equal(t, 5, advance)
	require.Equal(t, "abc", string(token))
}

// TestSplitLines_ChunksEndOnRuneBoundary never cuts a multi-byte character in two.
func TestSplitLines_ChunksEndOnRuneBoundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		maxLine int
		want    []string
	}{
		{input: "ééé", maxLine: 3, want: []string{"é", "é", "é"}},
		{input: "ééé", maxLine: 4, want: []string{"éé", "é"}},
		{input: "a€€\n", maxLine: 5, want: []string{"a€", "€"}},
		{input: "\xff\xff\xff\xff\xff\xff", maxLine: 4, want: []string{"\xff\xff\xff\xff", "\xff\xff"}},
	}

	for _, tc := range cases {
		got := scanAll(t, tc.input, tc.maxLine)
		require.Equal(t, tc.want, got, "input %q max %d", tc.input, tc.maxLine)

		for _, chunk := range got {
			require.LessOrEqual(t, len(chunk), tc.maxLine)
		}

		if utf8.ValidString(tc.input) {
			for _, chunk := range got {
				require.True(t, utf8.ValidString(chunk), "chunk %q", chunk)
			}
		}
	}
}
