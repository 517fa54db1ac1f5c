package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/drain"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/sanitize"
)

// Options selects where and how console lines are printed.
type Options struct {
	// Out receives child stdout lines and notices; os.Stdout when nil.
	Out io.Writer
	// Err receives child stderr lines; os.Stderr when nil.
	Err io.Writer
	// ShowEmpty prints lines that sanitize to an empty string.
	ShowEmpty bool
	// Disabled turns off echoing of child lines; notices are still printed.
	Disabled bool
}

// Writer echoes sanitized child lines. Stderr lines differ from stdout lines
// only by the writer they are printed to.
type Writer struct {
	out       io.Writer
	err       io.Writer
	showEmpty bool
	disabled  bool
	mu        sync.Mutex
}

// NewWriter returns a Writer configured by opts.
func NewWriter(opts Options) *Writer {
	w := &Writer{
		out:       opts.Out,
		err:       opts.Err,
		showEmpty: opts.ShowEmpty,
		disabled:  opts.Disabled,
	}

	if w.out == nil {
		w.out = os.Stdout
	}

	if w.err == nil {
		w.err = os.Stderr
	}

	return w
}

// WriteLine sanitizes line and prints it unless it is suppressed or empty.
// It reports whether anything was printed.
func (w *Writer) WriteLine(line drain.OutputLine) bool {
	if w.disabled {
		return false
	}

	text, ok := sanitize.Sanitize(line.Text)
	if !ok || (text == "" && !w.showEmpty) {
		return false
	}

	target := w.out
	if line.Source == drain.Stderr {
		target = w.err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	_, _ = fmt.Fprintln(target, text)

	return true
}

// Printf prints an orchestrator notice to the standard writer.
func (w *Writer) Printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}
