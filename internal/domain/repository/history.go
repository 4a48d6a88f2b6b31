package repository

import (
	"context"
	"time"
)

// OutcomeKind classifies how a probe ended.
type OutcomeKind string

const (
	KindSuccess   OutcomeKind = "success"
	KindReported  OutcomeKind = "reported_failure"
	KindTransport OutcomeKind = "transport_error"
	KindSkipped   OutcomeKind = "skipped"
)

// ProbeRecord is the persisted form of one probe outcome.
type ProbeRecord struct {
	Target    string
	Kind      OutcomeKind
	Model     string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// Success reports whether the recorded probe passed.
func (r ProbeRecord) Success() bool {
	return r.Kind == KindSuccess
}

// HistoryRepository persists probe outcomes.
type HistoryRepository interface {
	Record(ctx context.Context, rec ProbeRecord) error
	// Recent returns at most limit records, newest first. An empty target matches all.
	Recent(ctx context.Context, target string, limit int) ([]ProbeRecord, error)
	Close() error
}
