package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ProbeRecord is one stored connectivity check outcome.
type ProbeRecord struct {
	bun.BaseModel `bun:"table:probe_records,alias:pr"`

	ID        int64     `bun:",pk,autoincrement"`
	Target    string    `bun:",notnull"`
	Success   bool      `bun:",notnull"`
	Kind      string    `bun:",notnull"`
	Model     string    `bun:",nullzero"`
	Error     string    `bun:",nullzero"`
	LatencyMS int64     `bun:"latency_ms,notnull"`
	CheckedAt time.Time `bun:",notnull"`
}
