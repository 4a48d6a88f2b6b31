package resilience

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Failing, reject calls
	StateHalfOpen              // Testing if service recovered
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker guards repeated connectivity checks.
// Transitions: Closed → Open (after failThreshold consecutive failures)
//
//	Open → HalfOpen (after openTimeout expires)
//	HalfOpen → Closed (on success) or Open (on failure)
type CircuitBreaker struct {
	mu            sync.Mutex
	state         State
	failCount     int
	failThreshold int
	openTimeout   time.Duration
	openedAt      time.Time
	now           func() time.Time
}

func NewCircuitBreaker(failThreshold int, openTimeout time.Duration) *CircuitBreaker {
	if failThreshold < 1 {
		failThreshold = 1
	}
	return &CircuitBreaker{
		state:         StateClosed,
		failThreshold: failThreshold,
		openTimeout:   openTimeout,
		now:           time.Now,
	}
}

// allow reports whether a call may proceed, moving Open → HalfOpen once the timeout elapsed.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.openTimeout {
			return false
		}
		cb.state = StateHalfOpen
	}
	return true
}

func (cb *CircuitBreaker) record(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !failed {
		cb.failCount = 0
		cb.state = StateClosed
		return
	}

	cb.failCount++
	if cb.state == StateHalfOpen || cb.failCount >= cb.failThreshold {
		if cb.state != StateOpen {
			log.Printf("[Breaker] 🔌 Opening after %d consecutive failures", cb.failCount)
		}
		cb.state = StateOpen
		cb.openedAt = cb.now()
	}
}

// Execute runs fn through the circuit breaker.
// Returns ErrCircuitOpen if the circuit is open and the timeout hasn't elapsed.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err != nil)
	return err
}

// CurrentState returns the current state of the circuit breaker.
func (cb *CircuitBreaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GuardedTester counts both reported failures and transport errors against the breaker.
type GuardedTester struct {
	inner   repository.ConnectionTester
	breaker *CircuitBreaker
}

var _ repository.ConnectionTester = (*GuardedTester)(nil)

func Guard(inner repository.ConnectionTester, breaker *CircuitBreaker) *GuardedTester {
	return &GuardedTester{inner: inner, breaker: breaker}
}

// errReportedFailure marks a reported failure so Execute counts it.
var errReportedFailure = errors.New("reported failure")

// TestConnection returns ErrCircuitOpen without calling the inner tester while the breaker is open.
func (g *GuardedTester) TestConnection(ctx context.Context) (repository.ConnectionResult, error) {
	var (
		res    repository.ConnectionResult
		err    error
		called bool
	)
	breakerErr := g.breaker.Execute(func() error {
		called = true
		res, err = g.inner.TestConnection(ctx)
		if err != nil {
			return err
		}
		if !res.Success {
			return errReportedFailure
		}
		return nil
	})
	if !called {
		return repository.ConnectionResult{}, breakerErr
	}
	return res, err
}

func (g *GuardedTester) Name() string {
	return g.inner.Name()
}

func (g *GuardedTester) Breaker() *CircuitBreaker {
	return g.breaker
}
