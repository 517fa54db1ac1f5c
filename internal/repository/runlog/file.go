package runlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPrefix starts every log file name.
	DefaultPrefix = "winget-upgrade"

	// DefaultDirectoryPermissions is used when the log directory has to be created.
	DefaultDirectoryPermissions = 0o755

	// DefaultFilePermissions is used for new log files.
	DefaultFilePermissions = 0o644

	// fileTimeLayout is the timestamp embedded in file names.
	fileTimeLayout = "20060102_150405"

	// lineTimeLayout prefixes every appended line.
	lineTimeLayout = "2006-01-02 15:04:05"
)

var (
	// errDirectoryRequired is returned when no log directory is configured.
	errDirectoryRequired = errors.New("log directory must be provided")
	// errNoFile is returned when a fallback log has no file behind it.
	errNoFile = errors.New("log has no backing file")
)

// Options configures a run log. All fields are optional.
type Options struct {
	// Prefix starts the file name; DefaultPrefix when empty.
	Prefix string
	// Clock supplies the time for file names and line stamps; time.Now when nil.
	Clock func() time.Time
	// Fallback receives lines that could not be written to the file; os.Stderr when nil.
	Fallback io.Writer
}

// File is an append-only run log. It is safe for concurrent use.
type File struct {
	// path is the log file location, empty for fallback-only logs.
	path string
	// file is the open append-mode handle.
	file *os.File
	// clock stamps each line.
	clock func() time.Time
	// fallback receives lines the file rejected.
	fallback io.Writer
	// failures counts lines that did not reach the file.
	failures int
	// closed stops further file writes after Close.
	closed bool
	// mu serializes writes so lines never interleave.
	mu sync.Mutex
}

// Open creates dir when missing and a new log file inside it named
// <prefix>_<YYYYMMDD_HHMMSS>.log. An existing file is never reused: on a name
// collision a short random suffix is added.
func Open(dir string, opts Options) (*File, error) {
	if dir == "" {
		return nil, errDirectoryRequired
	}

	l := newFile(opts)

	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, DefaultDirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	base := prefix + "_" + l.clock().Format(fileTimeLayout)

	path := filepath.Join(dir, base+".log")

	file, err := createExclusive(path)
	if errors.Is(err, os.ErrExist) {
		path = filepath.Join(dir, base+"_"+uuid.NewString()[:8]+".log")
		file, err = createExclusive(path)
	}

	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l.path = path
	l.file = file

	return l, nil
}

// NewFallback returns a log without a file; every line goes to w.
func NewFallback(w io.Writer, opts Options) *File {
	opts.Fallback = w

	return newFile(opts)
}

func newFile(opts Options) *File {
	l := &File{
		clock:    opts.Clock,
		fallback: opts.Fallback,
	}

	if l.clock == nil {
		l.clock = time.Now
	}

	if l.fallback == nil {
		l.fallback = os.Stderr
	}

	return l
}

// Path returns the log file location, or "" for a fallback-only log.
func (l *File) Path() string {
	return l.path
}

// Failures returns how many lines could not be written to the file.
func (l *File) Failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.failures
}

// Append writes text as one timestamped line. It never fails: if the file
// rejects the write, the handle is reopened once and the write retried, and
// after that the line goes to the fallback writer.
func (l *File) Append(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := l.clock().Format(lineTimeLayout) + " " + text + "\n"

	if l.closed {
		_, _ = io.WriteString(l.fallback, line)
		return
	}

	if l.write(line) == nil {
		return
	}

	if l.reopen() == nil && l.write(line) == nil {
		return
	}

	l.failures++
	_, _ = io.WriteString(l.fallback, line)
}

// Appendf formats according to a format specifier and appends the result.
func (l *File) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Close flushes the file to disk and closes it. Calling Close twice is safe.
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true

	if l.file == nil {
		return nil
	}

	syncErr := l.file.Sync()
	closeErr := l.file.Close()
	l.file = nil

	return errors.Join(syncErr, closeErr)
}

// write issues one append-mode write so a crash cannot leave half a line buffered.
func (l *File) write(line string) error {
	if l.file == nil {
		return errNoFile
	}

	_, err := l.file.WriteString(line)

	return err
}

// reopen replaces the handle with a fresh append-mode one.
func (l *File) reopen() error {
	if l.path == "" {
		return errNoFile
	}

	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}

	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, DefaultFilePermissions)
	if err != nil {
		return err
	}

	l.file = file

	return nil
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, DefaultFilePermissions)
}
