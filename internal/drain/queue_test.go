package drain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineQueue_PushNeverBlocks(t *testing.T) {
	t.Parallel()

	q := newLineQueue(2)

	var wg sync.WaitGroup

	for _, source := range []Source{Stdout, Stderr} {
		wg.Add(1)

		go func() {
			defer wg.Done()
			defer q.finish()

			for i := range 10000 {
				q.push(OutputLine{Source: source, Sequence: i})
			}
		}()
	}

	// Nothing consumes until both producers are done.
	wg.Wait()
	<-q.Done()

	batch, finished := q.take()
	require.True(t, finished)
	require.Len(t, batch, 20000)

	next := map[Source]int{}

	for _, line := range batch {
		require.Equal(t, next[line.Source], line.Sequence)
		next[line.Source]++
	}
}

func TestLineQueue_Abandon(t *testing.T) {
	t.Parallel()

	q := newLineQueue(1)
	q.push(OutputLine{Text: "kept"})
	q.abandon()
	q.push(OutputLine{Text: "dropped"})
	q.finish()

	<-q.Done()

	batch, finished := q.take()
	require.True(t, finished)
	require.Equal(t, []OutputLine{{Text: "kept"}}, batch)
}
