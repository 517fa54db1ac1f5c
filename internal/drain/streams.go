package drain

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// streams holds the OS pipes connected to the child's stdout and stderr.
type streams struct {
	stdoutReader, stdoutWriter *os.File
	stderrReader, stderrWriter *os.File
	closeOnce                  sync.Once
}

func newStreams() (*streams, error) {
	stdoutReader, stdoutWriter, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	stderrReader, stderrWriter, err := os.Pipe()
	if err != nil {
		_ = stdoutReader.Close()
		_ = stdoutWriter.Close()

		return nil, err
	}

	return &streams{
		stdoutReader: stdoutReader,
		stdoutWriter: stdoutWriter,
		stderrReader: stderrReader,
		stderrWriter: stderrWriter,
	}, nil
}

func (s *streams) closeWriters() {
	_ = s.stdoutWriter.Close()
	_ = s.stderrWriter.Close()
}

func (s *streams) closeReaders() {
	s.closeOnce.Do(func() {
		_ = s.stdoutReader.Close()
		_ = s.stderrReader.Close()
	})
}

// activity records when a stream last produced bytes.
type activity struct {
	unixNano atomic.Int64
}

func (a *activity) touch() {
	a.unixNano.Store(time.Now().UnixNano())
}

func (a *activity) last() time.Time {
	return time.Unix(0, a.unixNano.Load())
}

// activityReader touches activity on every read that returns data.
type activityReader struct {
	r        io.Reader
	activity *activity
}

func (r *activityReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.activity.touch()
	}

	return n, err
}
