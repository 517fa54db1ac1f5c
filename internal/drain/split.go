package drain

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

// DefaultMaxLineBytes caps the length of one delivered line.
const DefaultMaxLineBytes = 1 << 20

// initialBufferSize is the scanner's starting buffer.
const initialBufferSize = 64 << 10

// splitLines returns a bufio.SplitFunc that ends lines at "\n", "\r\n" or a
// lone "\r", and emits a chunk of at most maxLine bytes, ending on a rune
// boundary, once more than maxLine bytes accumulate without a terminator.
func splitLines(maxLine int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}

		if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
			if data[i] == '\n' {
				return i + 1, data[:i], nil
			}

			// A '\r' at the end of the buffer may be the first half of "\r\n".
			if i+1 == len(data) && !atEOF && len(data) <= maxLine {
				return 0, nil, nil
			}

			if i+1 < len(data) && data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}

			return i + 1, data[:i], nil
		}

		// One byte past maxLine shows whether the cut lands inside a rune.
		if len(data) > maxLine {
			cut := runeBoundary(data, maxLine)
			return cut, data[:cut], nil
		}

		if atEOF {
			return len(data), data, nil
		}

		return 0, nil, nil
	}
}

// runeBoundary moves a cut at n back to the start of the UTF-8 sequence it
// splits. Data that is not UTF-8 is cut at n.
func runeBoundary(data []byte, n int) int {
	for cut := n; cut > 0 && cut > n-utf8.UTFMax; cut-- {
		if utf8.RuneStart(data[cut]) {
			return cut
		}
	}

	return n
}

// newScanner prepares a line scanner that never fails with bufio.ErrTooLong.
func newScanner(r io.Reader, maxLine int) *bufio.Scanner {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(initialBufferSize, maxLine)), maxLine+1)
	scanner.Split(splitLines(maxLine))

	return scanner
}
