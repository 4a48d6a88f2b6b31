package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, timeout time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker(threshold, timeout)
	cb.now = clock.now
	return cb, clock
}

func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cb.CurrentState() != StateClosed {
		t.Errorf("Expected closed, got %s", cb.CurrentState())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	testErr := errors.New("fail")

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return testErr })
	}

	if cb.CurrentState() != StateOpen {
		t.Errorf("Expected open after 3 failures, got %s", cb.CurrentState())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("fn must not run while the breaker is open")
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Minute)
	testErr := errors.New("fail")

	_ = cb.Execute(func() error { return testErr })
	_ = cb.Execute(func() error { return testErr })
	if cb.CurrentState() != StateOpen {
		t.Fatalf("Expected open, got %s", cb.CurrentState())
	}

	clock.advance(time.Minute)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Expected success in half-open, got %v", err)
	}
	if cb.CurrentState() != StateClosed {
		t.Errorf("Expected closed after successful half-open call, got %s", cb.CurrentState())
	}
}

func TestCircuitBreaker_HalfOpenFailure(t *testing.T) {
	cb, clock := newTestBreaker(3, time.Minute)
	testErr := errors.New("fail")

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return testErr })
	}
	clock.advance(2 * time.Minute)

	// A single failure in half-open reopens regardless of the threshold.
	_ = cb.Execute(func() error { return testErr })
	if cb.CurrentState() != StateOpen {
		t.Errorf("Expected open after half-open failure, got %s", cb.CurrentState())
	}
}

type scriptedTester struct {
	results []repository.ConnectionResult
	calls   int
}

func (s *scriptedTester) TestConnection(ctx context.Context) (repository.ConnectionResult, error) {
	res := s.results[s.calls%len(s.results)]
	s.calls++
	return res, nil
}

func (s *scriptedTester) Name() string { return "scripted" }

func TestGuardedTester_ReportedFailuresTripBreaker(t *testing.T) {
	cb, clock := newTestBreaker(2, time.Minute)
	inner := &scriptedTester{results: []repository.ConnectionResult{repository.Failed("quota exceeded")}}
	guarded := Guard(inner, cb)

	for i := 0; i < 2; i++ {
		res, err := guarded.TestConnection(context.Background())
		if err != nil || res.Success {
			t.Fatalf("call %d: expected reported failure, got %+v, %v", i, res, err)
		}
	}

	if _, err := guarded.TestConnection(context.Background()); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("Expected inner tester to be called twice, got %d", inner.calls)
	}

	inner.results = []repository.ConnectionResult{repository.Succeeded("m")}
	clock.advance(time.Minute)
	res, err := guarded.TestConnection(context.Background())
	if err != nil || !res.Success {
		t.Fatalf("Expected recovery, got %+v, %v", res, err)
	}
	if guarded.Breaker().CurrentState() != StateClosed {
		t.Errorf("Expected closed, got %s", guarded.Breaker().CurrentState())
	}
	if guarded.Name() != "scripted" {
		t.Errorf("Unexpected name %q", guarded.Name())
	}
}

type failingTester struct {
	err   error
	calls int
}

func (f *failingTester) TestConnection(ctx context.Context) (repository.ConnectionResult, error) {
	f.calls++
	return repository.ConnectionResult{}, f.err
}

func (f *failingTester) Name() string { return "failing" }

func TestGuardedTester_TransportErrorsPassThroughAndTrip(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)
	dialErr := errors.New("connection refused")
	inner := &failingTester{err: dialErr}
	guarded := Guard(inner, cb)

	for i := 0; i < 2; i++ {
		if _, err := guarded.TestConnection(context.Background()); !errors.Is(err, dialErr) {
			t.Fatalf("call %d: expected inner error, got %v", i, err)
		}
	}
	if cb.CurrentState() != StateOpen {
		t.Fatalf("Expected open, got %s", cb.CurrentState())
	}

	_, err := guarded.TestConnection(context.Background())
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("Expected 2 inner calls, got %d", inner.calls)
	}
}
