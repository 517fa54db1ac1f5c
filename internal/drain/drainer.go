package drain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/mariokreitz/windows-winget-automatic-update/internal/logger"
	"github.com/mariokreitz/windows-winget-automatic-update/internal/process"
)

const (
	// DefaultWaitDelay is how long the streams may stay silent after the child
	// exits before they are abandoned.
	DefaultWaitDelay = 5 * time.Second
)

// Drainer runs invocations and streams their output. The zero value is ready to use.
type Drainer struct {
	// Encoding decodes child output to UTF-8; nil passes bytes through.
	Encoding encoding.Encoding
	// MaxLineBytes splits longer lines into chunks; zero means DefaultMaxLineBytes.
	MaxLineBytes int
	// Timeout stops the child after this long; zero disables it.
	Timeout time.Duration
	// WaitDelay is the silence allowed on the streams after the child exits
	// while another process keeps them open; zero means DefaultWaitDelay.
	WaitDelay time.Duration
	// HeartbeatInterval logs a debug entry while the child runs; zero disables it.
	HeartbeatInterval time.Duration
}

// Run starts inv, calls onLine for every line on either stream and returns
// once the child has exited and both streams are drained.
//
// onLine is always called from the goroutine that called Run. The child's
// streams are read at the child's pace no matter how slow onLine is, so a
// slow consumer never loses lines. A child that cannot be started yields a
// *SpawnError and no result. When ctx ends or the timeout expires the child's
// process tree is killed, the output produced so far is still delivered, and
// the result is returned with Canceled set along with an error wrapping
// ErrCanceled. A process that outlives the child and keeps a stream open is
// given WaitDelay of silence before the streams are abandoned; the result then
// has Abandoned set.
//
//nolint:funlen // Start, merge and wait belong together.
func (d *Drainer) Run(ctx context.Context, inv Invocation, onLine func(OutputLine)) (*RunResult, error) {
	if inv.Executable == "" {
		return nil, errEmptyExecutable
	}

	if onLine == nil {
		onLine = func(OutputLine) {}
	}

	if err := ctx.Err(); err != nil {
		return &RunResult{ExitCode: -1, Canceled: true}, fmt.Errorf("%s: %w: %w", inv.Executable, ErrCanceled, err)
	}

	runCtx, cancel := d.runContext(ctx)
	defer cancel()

	pipes, err := newStreams()
	if err != nil {
		return nil, &SpawnError{Executable: inv.Executable, Err: err}
	}

	defer pipes.closeReaders()

	cmd := exec.CommandContext(runCtx, inv.Executable, inv.Arguments...)
	// *os.File writers are handed to the child directly; no copy goroutines are involved.
	cmd.Stdout = pipes.stdoutWriter
	cmd.Stderr = pipes.stderrWriter
	// Escalates to Kill when the child survives Cancel.
	cmd.WaitDelay = d.waitDelay()
	cmd.Cancel = func() error {
		return process.KillTree(cmd.Process.Pid)
	}

	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	started := time.Now()

	err = cmd.Start()

	// The child holds its own copies; ours must go so the readers see EOF.
	pipes.closeWriters()

	if err != nil {
		return nil, &SpawnError{Executable: inv.Executable, Err: err}
	}

	logger.DebugKV(ctx, "Child process started", "pid", cmd.Process.Pid, "command", inv.String())

	queue := newLineQueue(2)
	lastRead := new(activity)
	lastRead.touch()

	go d.read(ctx, pipes.stdoutReader, Stdout, queue, lastRead)
	go d.read(ctx, pipes.stderrReader, Stderr, queue, lastRead)

	exited := make(chan struct{})

	var waitErr error

	go func() {
		waitErr = cmd.Wait()
		close(exited)
	}()

	abandoned := make(chan bool, 1)

	go func() {
		abandoned <- d.watchIdle(exited, queue, lastRead, pipes)
	}()

	result := new(RunResult)
	d.deliver(ctx, inv, started, queue, result, onLine)

	<-exited

	result.Duration = time.Since(started)
	result.ExitCode = exitCode(cmd.ProcessState)
	result.Abandoned = <-abandoned

	if result.Abandoned {
		logger.WarnKV(ctx, "Output streams held open after exit, remaining output abandoned",
			"executable", inv.Executable,
			"idle", d.waitDelay().String())
	}

	if waitErr != nil && runCtx.Err() != nil {
		result.Canceled = true

		return result, fmt.Errorf("%s: %w: %w", inv.Executable, ErrCanceled, context.Cause(runCtx))
	}

	var exitErr *exec.ExitError

	switch {
	case waitErr == nil, errors.As(waitErr, &exitErr):
		return result, nil
	default:
		return result, fmt.Errorf("wait for %s: %w", inv.Executable, waitErr)
	}
}

// deliver hands queued lines to onLine until the queue is finished.
func (d *Drainer) deliver(
	ctx context.Context,
	inv Invocation,
	started time.Time,
	queue *lineQueue,
	result *RunResult,
	onLine func(OutputLine),
) {
	var heartbeat <-chan time.Time

	if d.HeartbeatInterval > 0 {
		ticker := time.NewTicker(d.HeartbeatInterval)
		defer ticker.Stop()

		heartbeat = ticker.C
	}

	for {
		batch, finished := queue.take()

		for _, line := range batch {
			line.Sequence = result.LinesEmitted
			result.LinesEmitted++

			onLine(line)
		}

		if finished {
			return
		}

		if len(batch) > 0 {
			continue
		}

		select {
		case <-queue.ready:
		case <-heartbeat:
			logger.DebugKV(ctx, "Child process still running",
				"executable", inv.Executable,
				"elapsed", time.Since(started).Round(time.Second).String(),
				"lines", result.LinesEmitted)
		}
	}
}

// read scans one stream and queues its lines in order.
func (d *Drainer) read(
	ctx context.Context,
	f *os.File,
	source Source,
	queue *lineQueue,
	lastRead *activity,
) {
	defer queue.finish()

	var src io.Reader = &activityReader{r: f, activity: lastRead}
	if d.Encoding != nil {
		src = transform.NewReader(src, d.Encoding.NewDecoder())
	}

	scanner := newScanner(src, d.MaxLineBytes)
	for scanner.Scan() {
		queue.push(OutputLine{Source: source, Text: scanner.Text()})
	}

	err := scanner.Err()
	if err == nil || errors.Is(err, os.ErrClosed) {
		return
	}

	logger.WarnKV(ctx, "Reading child output failed", "stream", source.String(), "error", err)

	// Keep the pipe moving so the child never blocks on a full buffer.
	_, _ = io.Copy(io.Discard, f)
}

// watchIdle waits for the child to exit, then abandons the streams once they
// have been silent for WaitDelay. It reports whether it abandoned them.
func (d *Drainer) watchIdle(exited <-chan struct{}, queue *lineQueue, lastRead *activity, pipes *streams) bool {
	select {
	case <-queue.Done():
		return false
	case <-exited:
	}

	delay := d.waitDelay()
	exitedAt := time.Now()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-queue.Done():
			return false
		case <-timer.C:
			last := lastRead.last()
			if last.Before(exitedAt) {
				last = exitedAt
			}

			idle := time.Since(last)
			if idle < delay {
				timer.Reset(delay - idle)
				continue
			}

			// Closing may not interrupt a blocked read on every platform; abandoning
			// the queue ends delivery either way.
			queue.abandon()
			pipes.closeReaders()

			return true
		}
	}
}

func (d *Drainer) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout > 0 {
		return context.WithTimeout(ctx, d.Timeout)
	}

	return context.WithCancel(ctx)
}

func (d *Drainer) waitDelay() time.Duration {
	if d.WaitDelay > 0 {
		return d.WaitDelay
	}

	return DefaultWaitDelay
}

func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}

	return state.ExitCode()
}
