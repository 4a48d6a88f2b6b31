package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/database/models"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

type BunStore struct {
	db *bun.DB
}

var _ repository.HistoryRepository = (*BunStore)(nil)

// OpenSQLite opens a SQLite database at dsn and prepares the history schema.
func OpenSQLite(ctx context.Context, dsn string) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One connection keeps in-memory databases alive.
	sqldb.SetMaxOpenConns(1)

	store, err := NewBunStore(ctx, sqldb, sqlitedialect.New())
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return store, nil
}

func NewBunStore(ctx context.Context, db *sql.DB, dialect schema.Dialect) (*BunStore, error) {
	bunDB := bun.NewDB(db, dialect)

	if _, err := bunDB.NewCreateTable().Model((*models.ProbeRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create probe_records table: %w", err)
	}
	if _, err := bunDB.NewCreateIndex().
		Model((*models.ProbeRecord)(nil)).
		Index("idx_probe_records_target_checked_at").
		IfNotExists().
		Column("target", "checked_at").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create probe_records index: %w", err)
	}

	return &BunStore{db: bunDB}, nil
}

func (s *BunStore) Record(ctx context.Context, rec repository.ProbeRecord) error {
	row := &models.ProbeRecord{
		Target:    rec.Target,
		Success:   rec.Success(),
		Kind:      string(rec.Kind),
		Model:     rec.Model,
		Error:     rec.Error,
		LatencyMS: rec.Latency.Milliseconds(),
		CheckedAt: rec.CheckedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert probe record: %w", err)
	}
	return nil
}

func (s *BunStore) Recent(ctx context.Context, target string, limit int) ([]repository.ProbeRecord, error) {
	var rows []models.ProbeRecord
	q := s.db.NewSelect().Model(&rows).Order("checked_at DESC", "id DESC")
	if target != "" {
		q = q.Where("target = ?", target)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query probe records: %w", err)
	}

	out := make([]repository.ProbeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, repository.ProbeRecord{
			Target:    r.Target,
			Kind:      repository.OutcomeKind(r.Kind),
			Model:     r.Model,
			Error:     r.Error,
			Latency:   time.Duration(r.LatencyMS) * time.Millisecond,
			CheckedAt: r.CheckedAt,
		})
	}
	return out, nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
