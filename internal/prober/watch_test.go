package prober

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

// cancellingTester cancels the watch context after a fixed number of calls.
type cancellingTester struct {
	mu     sync.Mutex
	calls  int
	after  int
	cancel context.CancelFunc
}

func (c *cancellingTester) TestConnection(ctx context.Context) (repository.ConnectionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls >= c.after {
		c.cancel()
	}
	return repository.Succeeded("m"), nil
}

func (c *cancellingTester) Name() string { return "cancelling" }

func TestWatcher_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tester := &cancellingTester{after: 3, cancel: cancel}
	history := &memoryHistory{}
	var out bytes.Buffer

	w := &Watcher{
		Out:      &out,
		Interval: 5 * time.Millisecond,
		Probers:  []*Prober{New("gemini", tester, WithHistory(history))},
	}
	rounds := w.Run(ctx)

	assert.Equal(t, 3, rounds)
	assert.Equal(t, 3, tester.calls)
	assert.Len(t, history.records, 3)
	assert.Equal(t, 3, strings.Count(out.String(), "✅"))
}

func TestWatcher_StopsImmediatelyOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubTester{result: repository.Succeeded("m")}
	w := &Watcher{Out: &bytes.Buffer{}, Interval: time.Hour, Probers: []*Prober{New("gemini", stub)}}

	assert.Equal(t, 1, w.Run(ctx))
	assert.Equal(t, 0, stub.Calls())
}

func TestWatcher_NonPositiveIntervalUsesDefault(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		ctx, cancel := context.WithCancel(context.Background())
		tester := &cancellingTester{after: 1, cancel: cancel}
		w := &Watcher{Out: &bytes.Buffer{}, Interval: interval, Probers: []*Prober{New("gemini", tester)}}

		assert.NotPanics(t, func() {
			assert.Equal(t, 1, w.Run(ctx))
		})
		assert.Equal(t, 1, tester.calls)
		cancel()
	}
}
