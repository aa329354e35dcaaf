package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore creates a migrated in-memory Store for testing.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	runner := NewMigrationRunner(db, "")
	require.NoError(t, runner.Run())

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestPut_Get_Roundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Put(ctx, KeySettings, []byte(`{"goal":2000,"unit":"ml"}`)))

	got, err := store.Get(ctx, KeySettings)
	require.NoError(t, err)
	assert.Equal(t, KeySettings, got.Key)
	assert.JSONEq(t, `{"goal":2000,"unit":"ml"}`, string(got.Value))
	assert.True(t, fixed.Equal(got.UpdatedAt))
}

func TestPut_ReplacesWholeRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeyIntakeLog, []byte(`{"date":"2026-03-01","entries":[1,2]}`)))
	require.NoError(t, store.Put(ctx, KeyIntakeLog, []byte(`{"date":"2026-03-02","entries":[]}`)))

	got, err := store.Get(ctx, KeyIntakeLog)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-03-02","entries":[]}`, string(got.Value))
}

func TestGet_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, KeySettings, []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, KeySettings))
	require.NoError(t, store.Delete(ctx, KeySettings), "deleting an absent key is fine")

	_, err := store.Get(ctx, KeySettings)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApply_WritesRecordsAndAudit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Apply(ctx, Batch{
		Puts: []Record{
			{Key: KeyIntakeHistory, Value: []byte(`[]`)},
			{Key: KeyIntakeLog, Value: []byte(`{"date":"2026-03-02","entries":[]}`)},
		},
		Audit: []AuditEntry{{Action: ActionArchive, Detail: "2026-03-01", RecordKey: KeyIntakeHistory}},
	})
	require.NoError(t, err)

	_, err = store.Get(ctx, KeyIntakeHistory)
	require.NoError(t, err)
	_, err = store.Get(ctx, KeyIntakeLog)
	require.NoError(t, err)

	audit, err := store.RecentAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, ActionArchive, audit[0].Action)
	assert.Equal(t, "2026-03-01", audit[0].Detail)
	assert.Equal(t, KeyIntakeHistory, audit[0].RecordKey)
}

func TestApply_CancelledContextWritesNothing(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Apply(ctx, Batch{Puts: []Record{{Key: KeySettings, Value: []byte(`{}`)}}})
	require.Error(t, err)

	_, err = store.Get(context.Background(), KeySettings)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, key := range AllKeys {
		require.NoError(t, store.Put(ctx, key, []byte(`[]`)))
	}

	require.NoError(t, store.PurgeAll(ctx))

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalRecords)
	require.NotEmpty(t, stats.RecentAudit)
	assert.Equal(t, ActionPurge, stats.RecentAudit[0].Action)
	assert.Equal(t, "deleted 9 records", stats.RecentAudit[0].Detail)
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalRecords)
	assert.True(t, stats.LastUpdated.IsZero())
	assert.Empty(t, stats.Keys)

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	require.NoError(t, store.Put(ctx, KeySettings, []byte(`{"goal":2000}`)))
	require.NoError(t, store.Put(ctx, KeyIntakeLog, []byte(`{}`)))

	stats, err = store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRecords)
	assert.Equal(t, int64(len(`{"goal":2000}`)+2), stats.TotalBytes)
	assert.True(t, fixed.Equal(stats.LastUpdated))
	assert.Greater(t, stats.DatabaseSizeBytes, int64(0))
	assert.Equal(t, []KeySize{
		{Key: KeyIntakeLog, Bytes: 2},
		{Key: KeySettings, Bytes: int64(len(`{"goal":2000}`))},
	}, stats.Keys)
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hydrolog.db")

	store, err := OpenSQLite(path, "wal")
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), KeySettings, []byte(`{}`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path, "wal")
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.Get(context.Background(), KeySettings)
	assert.NoError(t, err)
}
