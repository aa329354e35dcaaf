package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record key has never been written.
var ErrNotFound = errors.New("record not found")

// Store defines the raw record operations the Gateway is built on.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, value []byte) error
	Apply(ctx context.Context, b Batch) error
	Delete(ctx context.Context, key string) error
	Audit(ctx context.Context, action, detail, key string) error
	GetStats(ctx context.Context) (*Stats, error)
	PurgeAll(ctx context.Context) error
	Close() error
}

// Batch is a set of record writes and audit rows committed together.
type Batch struct {
	Puts  []Record
	Audit []AuditEntry
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	ownsDB bool
	now    func() time.Time

	// Prepared statements
	getRecord    *sql.Stmt
	putRecord    *sql.Stmt
	deleteRecord *sql.Stmt
	insertAudit  *sql.Stmt
}

const upsertRecordSQL = `
	INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

const insertAuditSQL = `INSERT INTO audit_log (action, detail, record_key, ts) VALUES (?, ?, ?, ?)`

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, now: time.Now}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// OpenSQLite opens the database file at path, creating its directory, runs
// pending migrations and returns a store that closes the database on Close.
func OpenSQLite(path, journalMode string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: hydrolog is a single writer and :memory: databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	if err := NewMigrationRunner(db, journalMode).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getRecord, err = s.db.Prepare(`SELECT key, value, updated_at FROM records WHERE key = ?`)
	if err != nil {
		return err
	}

	s.putRecord, err = s.db.Prepare(upsertRecordSQL)
	if err != nil {
		return err
	}

	s.deleteRecord, err = s.db.Prepare(`DELETE FROM records WHERE key = ?`)
	if err != nil {
		return err
	}

	s.insertAudit, err = s.db.Prepare(insertAuditSQL)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// Get retrieves a record by key. It returns ErrNotFound when the key is absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Record, error) {
	var r Record
	var value, tsStr string

	err := s.getRecord.QueryRowContext(ctx, key).Scan(&r.Key, &value, &tsStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	r.Value = []byte(value)
	r.UpdatedAt, _ = parseTimestamp(tsStr)
	return &r, nil
}

// Put replaces the record stored under key.
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.putRecord.ExecContext(ctx, key, string(value), s.stamp()); err != nil {
		return fmt.Errorf("put record %s: %w", key, err)
	}
	return nil
}

// Apply writes every record and audit row in b inside one transaction.
func (s *SQLiteStore) Apply(ctx context.Context, b Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ts := s.stamp()
	for _, r := range b.Puts {
		if _, err := tx.ExecContext(ctx, upsertRecordSQL, r.Key, string(r.Value), ts); err != nil {
			return fmt.Errorf("put record %s: %w", r.Key, err)
		}
	}
	for _, a := range b.Audit {
		if _, err := tx.ExecContext(ctx, insertAuditSQL, a.Action, a.Detail, nullable(a.RecordKey), ts); err != nil {
			return fmt.Errorf("insert audit: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes a record. Deleting an absent key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.deleteRecord.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

// Audit appends one row to the audit log.
func (s *SQLiteStore) Audit(ctx context.Context, action, detail, key string) error {
	if _, err := s.insertAudit.ExecContext(ctx, action, detail, nullable(key), s.stamp()); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// PurgeAll deletes every record and logs the purge.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "DELETE FROM records")
	if err != nil {
		return fmt.Errorf("purge records: %w", err)
	}
	n, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, insertAuditSQL,
		ActionPurge, fmt.Sprintf("deleted %d records", n), nil, s.stamp(),
	); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}

	return tx.Commit()
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Keys: []KeySize{}, RecentAudit: []AuditEntry{}}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM records",
	).Scan(&stats.TotalRecords, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	if stats.TotalRecords > 0 {
		var lastStr string
		err = s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM records").Scan(&lastStr)
		if err != nil {
			return nil, fmt.Errorf("last update: %w", err)
		}
		stats.LastUpdated, _ = parseTimestamp(lastStr)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("page size: %w", err)
	}
	stats.DatabaseSizeBytes = pageCount * pageSize

	rows, err := s.db.QueryContext(ctx, "SELECT key, LENGTH(value) FROM records ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("key sizes: %w", err)
	}
	for rows.Next() {
		var ks KeySize
		if err := rows.Scan(&ks.Key, &ks.Bytes); err != nil {
			rows.Close()
			return nil, err
		}
		stats.Keys = append(stats.Keys, ks)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentAudit, err = s.RecentAudit(ctx, 10)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// RecentAudit returns up to limit audit rows, newest first.
func (s *SQLiteStore) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT action, detail, record_key, ts FROM audit_log ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent audit: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var a AuditEntry
		var key sql.NullString
		var tsStr string
		if err := rows.Scan(&a.Action, &a.Detail, &key, &tsStr); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		a.RecordKey = key.String
		a.Timestamp, _ = parseTimestamp(tsStr)
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is closed
// only when the store opened it.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.getRecord, s.putRecord, s.deleteRecord, s.insertAudit}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
