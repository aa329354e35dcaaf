package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hydrolog/internal/config"
	"github.com/runnerr0/hydrolog/internal/logging"
	"github.com/runnerr0/hydrolog/internal/observability"
	"github.com/runnerr0/hydrolog/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testNow is the fixed clock used by test sessions: Monday 2 March 2026, 9am UTC.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// newTestSession builds a session over a fresh database in a temp dir with
// default config, a fixed clock and UTC.
func newTestSession(t *testing.T) *session {
	t.Helper()
	cfg := config.DefaultConfig()
	dbPath := filepath.Join(t.TempDir(), "hydrolog.db")

	store, err := storage.OpenSQLite(dbPath, cfg.Storage.SQLiteJournalMode)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := testNow
	s := &session{
		cfg:     cfg,
		dbPath:  dbPath,
		store:   store,
		log:     logging.Discard(),
		metrics: observability.New(),
		now:     func() time.Time { return clock },
	}
	s.svc = newService(s, cfg, time.UTC)
	return s
}
