package drain

import "sync"

// lineQueue is an unbounded multi-producer queue of lines. Producers never
// block, so child pipes are read as fast as the child writes them.
type lineQueue struct {
	mu        sync.Mutex
	items     []OutputLine
	producers int
	abandoned bool
	// ready holds a pending wake-up for the consumer.
	ready chan struct{}
	// done is closed once every producer finished or the queue was abandoned.
	done chan struct{}
}

func newLineQueue(producers int) *lineQueue {
	q := &lineQueue{
		producers: producers,
		ready:     make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	if producers <= 0 {
		close(q.done)
	}

	return q
}

// push appends line. It is a no-op after abandon.
func (q *lineQueue) push(line OutputLine) {
	q.mu.Lock()
	if !q.abandoned {
		q.items = append(q.items, line)
	}
	q.mu.Unlock()

	q.wake()
}

// finish marks one producer as done.
func (q *lineQueue) finish() {
	q.mu.Lock()
	q.producers--
	if q.producers == 0 && !q.abandoned {
		close(q.done)
	}
	q.mu.Unlock()

	q.wake()
}

// abandon stops accepting lines and ends the queue while producers may still be blocked.
func (q *lineQueue) abandon() {
	q.mu.Lock()
	if !q.abandoned && q.producers > 0 {
		close(q.done)
	}
	q.abandoned = true
	q.mu.Unlock()

	q.wake()
}

// take removes every queued line. finished reports that no more lines will arrive.
func (q *lineQueue) take() (batch []OutputLine, finished bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch, q.items = q.items, nil

	return batch, q.producers == 0 || q.abandoned
}

// Done is closed once no more lines will be pushed.
func (q *lineQueue) Done() <-chan struct{} {
	return q.done
}

func (q *lineQueue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
