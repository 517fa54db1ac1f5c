package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ProgressPrefix is prepended to the byte-count fragment of a progress line.
const ProgressPrefix = "Progress: "

var (
	// escapeSequence matches ANSI CSI and OSC sequences emitted by terminal programs.
	escapeSequence = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)
	// spinnerOnly matches lines made of spinner art and nothing else.
	spinnerOnly = regexp.MustCompile(`^[-|\\/\s\x{85}\x{2028}\x{2029}\p{Zs}]+$`)
	// progress matches "<n>[.,<n>] <unit> / <n>[.,<n>] <unit>".
	progress = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:KB|MB|GB|B)\s*/\s*\d+(?:[.,]\d+)?\s*(?:KB|MB|GB|B)`)
	// terminalArt matches box drawing (U+2500-U+257F) and block/geometric shapes (U+2580-U+25FF).
	terminalArt = regexp.MustCompile(`[\x{2500}-\x{257F}\x{2580}-\x{25FF}]+`)
	// whitespaceRun matches two or more whitespace characters, Unicode spaces included.
	whitespaceRun = regexp.MustCompile(`[\s\x{85}\x{2028}\x{2029}\p{Zs}]{2,}`)
)

// Sanitize returns the console form of line and false when the line is suppressed.
//
// Rules apply in order; the first transforming rule that matches wins:
//  1. trailing whitespace is trimmed, an empty result is returned as "" (kept);
//  2. lines of spinner characters only are suppressed;
//  3. byte-count progress lines become "Progress: <fragment>";
//  4. box drawing and block characters are deleted;
//  5. whitespace runs collapse to one space and the ends are trimmed.
//
// Invalid UTF-8 is replaced with U+FFFD, and escape sequences and control
// characters are removed, before rule 1. Rules 2 and
// 3 are checked again on the cleaned text, so feeding a result back into Sanitize
// never changes it.
func Sanitize(line string) (string, bool) {
	// Invalid bytes would otherwise merge into new runes once art between them is deleted.
	line = strings.ToValidUTF8(line, string(utf8.RuneError))
	line = stripControl(line)

	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if trimmed == "" {
		return "", true
	}

	if spinnerOnly.MatchString(trimmed) {
		return "", false
	}

	if fragment := progress.FindString(trimmed); fragment != "" {
		return ProgressPrefix + fragment, true
	}

	cleaned := terminalArt.ReplaceAllString(trimmed, "")
	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))

	if cleaned != "" && spinnerOnly.MatchString(cleaned) {
		return "", false
	}

	// Deleting art can expose a progress fragment ("5 MB ▕/ 9 MB").
	if fragment := progress.FindString(cleaned); fragment != "" {
		return ProgressPrefix + fragment, true
	}

	return cleaned, true
}

// stripControl removes escape sequences and C0 controls other than tab.
func stripControl(line string) string {
	if strings.IndexFunc(line, isStripped) < 0 {
		return line
	}

	line = escapeSequence.ReplaceAllString(line, "")

	return strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}

		return r
	}, line)
}

func isStripped(r rune) bool {
	return (r < 0x20 && r != '\t') || r == 0x7f
}
