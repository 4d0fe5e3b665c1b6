package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leca/menudesk/internal/model"
	"github.com/lib/pq"
)

// Compile-time check that Postgres implements SessionStore.
var _ SessionStore = (*Postgres)(nil)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// Postgres stores the remote bill session table in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and ensures the bill session table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an already opened connection pool without migrating.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) CreateBillSession(ctx context.Context, bs *model.BillSession) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bill_sessions (id, code, owner, expires_at)
		VALUES ($1, $2, $3, $4)`,
		bs.ID, bs.Code, bs.Owner, bs.ExpiresAt.UTC(),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint != "bill_sessions_pkey" {
		return fmt.Errorf("insert bill session %q: %w", bs.Code, ErrDuplicateCode)
	}
	if err != nil {
		return fmt.Errorf("insert bill session: %w", err)
	}
	return nil
}

func (p *Postgres) GetBillSessionByCode(ctx context.Context, code string) (*model.BillSession, error) {
	bs := &model.BillSession{}
	err := p.db.QueryRowContext(ctx, `
		SELECT id, code, owner, expires_at
		FROM bill_sessions WHERE code = $1`,
		code,
	).Scan(&bs.ID, &bs.Code, &bs.Owner, &bs.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bill session %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bill session: %w", err)
	}
	return bs, nil
}

func (p *Postgres) DeleteExpiredBillSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bill_sessions WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired bill sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
