// Package prober performs connectivity checks against AI vision services and
// reports their outcome to the operator.
package prober

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/infrastructure/resilience"
)

// Outcome is the terminal state of one check.
type Outcome struct {
	Target    string
	Kind      repository.OutcomeKind
	Result    repository.ConnectionResult
	Err       error
	Latency   time.Duration
	CheckedAt time.Time
}

func (o Outcome) Succeeded() bool {
	return o.Kind == repository.KindSuccess
}

// Message is the human-readable detail: the model on success, the reason otherwise.
func (o Outcome) Message() string {
	switch o.Kind {
	case repository.KindSuccess:
		return o.Result.Model
	case repository.KindReported:
		return o.Result.Error
	case repository.KindTransport, repository.KindSkipped:
		if o.Err != nil {
			return o.Err.Error()
		}
	}
	return ""
}

// ExitCode maps the outcome to the process status: 0 on success, 1 otherwise.
// Reported failures and transport errors both map to 1.
func (o Outcome) ExitCode() int {
	if o.Succeeded() {
		return 0
	}
	return 1
}

func (o Outcome) record() repository.ProbeRecord {
	rec := repository.ProbeRecord{
		Target:    o.Target,
		Kind:      o.Kind,
		Latency:   o.Latency,
		CheckedAt: o.CheckedAt,
	}
	if o.Succeeded() {
		rec.Model = o.Result.Model
	} else {
		rec.Error = o.Message()
	}
	return rec
}

// Prober drives a single collaborator.
type Prober struct {
	target  string
	tester  repository.ConnectionTester
	history repository.HistoryRepository
	now     func() time.Time
}

// Option customises a Prober.
type Option func(*Prober)

// WithHistory records every outcome in repo. Recording errors are logged only.
func WithHistory(repo repository.HistoryRepository) Option {
	return func(p *Prober) { p.history = repo }
}

func withClock(now func() time.Time) Option {
	return func(p *Prober) { p.now = now }
}

func New(target string, tester repository.ConnectionTester, opts ...Option) *Prober {
	p := &Prober{
		target: target,
		tester: tester,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Prober) Name() string {
	return p.tester.Name()
}

// Check invokes the collaborator exactly once and classifies the result.
func (p *Prober) Check(ctx context.Context) Outcome {
	start := p.now()
	res, err := p.tester.TestConnection(ctx)
	out := Outcome{
		Target:    p.target,
		Result:    res,
		Err:       err,
		Latency:   p.now().Sub(start),
		CheckedAt: start,
	}

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		out.Kind = repository.KindSkipped
	case err != nil:
		out.Kind = repository.KindTransport
	case res.Success:
		out.Kind = repository.KindSuccess
	default:
		out.Kind = repository.KindReported
	}

	if p.history != nil {
		// Recording outlives caller cancellation.
		if recErr := p.history.Record(context.WithoutCancel(ctx), out.record()); recErr != nil {
			log.Printf("[Prober] ⚠️ Failed to record %s outcome: %v", p.target, recErr)
		}
	}
	return out
}
