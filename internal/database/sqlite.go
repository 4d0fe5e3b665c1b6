package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leca/menudesk/internal/localstore"
	"github.com/leca/menudesk/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Compile-time checks that SQLiteDB implements Database and localstore.Store.
var (
	_ Database         = (*SQLiteDB)(nil)
	_ localstore.Store = (*SQLiteDB)(nil)
)

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteDB implements Database backed by SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) an SQLite database at dsn and runs migrations.
// For an isolated in-memory database pass "file:<name>?mode=memory&cache=shared".
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	} else if !strings.Contains(dsn, "busy_timeout") {
		dsn += "&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Local key-value slots
// ---------------------------------------------------------------------------

func (s *SQLiteDB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get local value: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteDB) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("set local value: %w", err)
	}
	return nil
}

// Remove deletes all keys in one statement.
func (s *SQLiteDB) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `DELETE FROM local_store WHERE key IN (` + placeholders(len(keys)) + `)`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove local values: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Bill sessions
// ---------------------------------------------------------------------------

func (s *SQLiteDB) CreateBillSession(ctx context.Context, bs *model.BillSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bill_sessions (id, code, owner, expires_at)
		VALUES (?, ?, ?, ?)`,
		bs.ID, bs.Code, bs.Owner, formatTime(bs.ExpiresAt),
	)
	if isSQLiteDuplicateCode(err) {
		return fmt.Errorf("insert bill session %q: %w", bs.Code, ErrDuplicateCode)
	}
	if err != nil {
		return fmt.Errorf("insert bill session: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetBillSessionByCode(ctx context.Context, code string) (*model.BillSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, owner, expires_at
		FROM bill_sessions WHERE code = ?`,
		code,
	)

	bs := &model.BillSession{}
	var expiresStr string
	err := row.Scan(&bs.ID, &bs.Code, &bs.Owner, &expiresStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bill session %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bill session: %w", err)
	}
	bs.ExpiresAt, err = time.Parse(timeLayout, expiresStr)
	if err != nil {
		return nil, fmt.Errorf("parse bill session expiry: %w", err)
	}
	return bs, nil
}

func (s *SQLiteDB) DeleteExpiredBillSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bill_sessions WHERE expires_at < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("delete expired bill sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func isSQLiteDuplicateCode(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "bill_sessions.code")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
