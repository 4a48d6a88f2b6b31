package bunstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBunStore_RecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	records := []repository.ProbeRecord{
		{Target: "gemini", Kind: repository.KindSuccess, Model: "gemini-1.5-flash", Latency: 420 * time.Millisecond, CheckedAt: base},
		{Target: "medsiglip", Kind: repository.KindTransport, Error: "connection refused", CheckedAt: base.Add(time.Minute)},
		{Target: "gemini", Kind: repository.KindReported, Error: "API key not valid", Latency: 90 * time.Millisecond, CheckedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		require.NoError(t, store.Record(ctx, rec))
	}

	all, err := store.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, repository.KindReported, all[0].Kind)
	assert.Equal(t, "medsiglip", all[1].Target)
	assert.Equal(t, repository.KindSuccess, all[2].Kind)
	assert.True(t, all[2].Success())
	assert.Equal(t, 420*time.Millisecond, all[2].Latency)
	assert.True(t, all[2].CheckedAt.Equal(base))

	gemini, err := store.Recent(ctx, "gemini", 1)
	require.NoError(t, err)
	require.Len(t, gemini, 1)
	assert.Equal(t, "API key not valid", gemini[0].Error)
	assert.False(t, gemini[0].Success())
}

func TestBunStore_ReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, repository.ProbeRecord{Target: "gemini", Kind: repository.KindSuccess, CheckedAt: time.Now()}))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	recs, err := store.Recent(ctx, "gemini", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
