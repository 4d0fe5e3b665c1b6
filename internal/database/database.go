package database

import (
	"context"
	"time"

	"github.com/leca/menudesk/internal/model"
)

// Database defines the persistence interface for all domain objects.
type Database interface {
	// Local key-value slots (localstore.Store)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error

	// Bill sessions
	SessionStore

	Close() error
}

// SessionStore persists the remote bill session table.
type SessionStore interface {
	CreateBillSession(ctx context.Context, s *model.BillSession) error
	GetBillSessionByCode(ctx context.Context, code string) (*model.BillSession, error)
	DeleteExpiredBillSessions(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
