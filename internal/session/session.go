// Package session tracks collaborative bill sessions: the subset cached on
// this device and the full records in the remote session table.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leca/menudesk/internal/database"
	"github.com/leca/menudesk/internal/localstore"
	"github.com/leca/menudesk/internal/metrics"
	"github.com/leca/menudesk/internal/model"
)

// Local cache keys.
const (
	IDKey        = "billSessionId"
	CodeKey      = "billSessionCode"
	OwnerKey     = "billSessionOwner"
	ExpiresAtKey = "billSessionExpiresAt"
)

// localKeys lists every locally cached session field.
var localKeys = []string{IDKey, CodeKey, OwnerKey, ExpiresAtKey}

var (
	// ErrRemoteDelete wraps failures of the remote expired-session purge.
	ErrRemoteDelete = errors.New("remote delete failure")
	// ErrMissingExpiry means no usable expiry is cached locally.
	ErrMissingExpiry = errors.New("missing expiry")
	// ErrExpired is returned when joining a session past its expiry.
	ErrExpired = errors.New("session expired")
)

// codeAlphabet omits characters that are easy to confuse when read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a shareable session code.
const CodeLength = 6

// maxCodeAttempts bounds code regeneration when a code is already taken.
const maxCodeAttempts = 5

// Repository is the remote session table.
type Repository interface {
	CreateBillSession(ctx context.Context, s *model.BillSession) error
	GetBillSessionByCode(ctx context.Context, code string) (*model.BillSession, error)
	DeleteExpiredBillSessions(ctx context.Context, before time.Time) (int64, error)
}

// Manager reconciles local and remote bill session state.
type Manager struct {
	local    localstore.Store
	remote   Repository
	observer metrics.Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates a Manager. observer and logger may be nil.
func NewManager(local localstore.Store, remote Repository, observer metrics.Observer, logger *slog.Logger) *Manager {
	if observer == nil {
		observer = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{local: local, remote: remote, observer: observer, logger: logger, now: time.Now}
}

// PurgeExpiredRemote deletes every remote session whose expiry is strictly
// before now. It is best-effort housekeeping: failures are logged and
// swallowed, and there is no retry.
func (m *Manager) PurgeExpiredRemote(ctx context.Context) {
	n, err := m.remote.DeleteExpiredBillSessions(ctx, m.now())
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrRemoteDelete, err)
		m.observer.RecordPurge(0, err)
		m.logger.ErrorContext(ctx, "purge expired bill sessions", "error", err)
		return
	}
	m.observer.RecordPurge(n, nil)
	if n > 0 {
		m.logger.InfoContext(ctx, "purged expired bill sessions", "removed", n)
	}
}

// IsLocalSessionExpired reports whether the locally cached session is no
// longer valid. An unknown expiry counts as expired.
func (m *Manager) IsLocalSessionExpired(ctx context.Context) bool {
	expiresAt, err := m.localExpiry(ctx)
	if err != nil {
		return true
	}
	return m.now().After(expiresAt)
}

// ClearIfExpired removes all locally cached session fields when the local
// session is expired and reports whether it did.
func (m *Manager) ClearIfExpired(ctx context.Context) bool {
	if !m.IsLocalSessionExpired(ctx) {
		return false
	}
	if err := m.local.Remove(ctx, localKeys...); err != nil {
		m.logger.WarnContext(ctx, "clear local bill session", "error", err)
		return false
	}
	return true
}

// Current returns the locally cached session if it has not expired.
func (m *Manager) Current(ctx context.Context) (*model.BillSession, bool) {
	expiresAt, err := m.localExpiry(ctx)
	if err != nil || m.now().After(expiresAt) {
		return nil, false
	}
	s := &model.BillSession{ExpiresAt: expiresAt}
	for key, dst := range map[string]*string{IDKey: &s.ID, CodeKey: &s.Code, OwnerKey: &s.Owner} {
		v, ok, err := m.local.Get(ctx, key)
		if err != nil || !ok {
			return nil, false
		}
		*dst = v
	}
	return s, true
}

// Begin opens a new session owned by owner for ttl, stores it remotely and
// caches it locally.
func (m *Manager) Begin(ctx context.Context, owner string, ttl time.Duration) (*model.BillSession, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	s := &model.BillSession{
		Owner:     owner,
		ExpiresAt: m.now().Add(ttl).UTC(),
	}
	var err error
	for range maxCodeAttempts {
		if s.Code, err = NewCode(); err != nil {
			return nil, err
		}
		s.ID = uuid.NewString()
		err = m.remote.CreateBillSession(ctx, s)
		if !errors.Is(err, database.ErrDuplicateCode) {
			break
		}
		m.logger.DebugContext(ctx, "bill session code taken, retrying", "code", s.Code)
	}
	if err != nil {
		return nil, fmt.Errorf("create bill session: %w", err)
	}
	if err := m.cache(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Join looks code up remotely and caches the session locally if it is
// still valid.
func (m *Manager) Join(ctx context.Context, code string) (*model.BillSession, error) {
	s, err := m.remote.GetBillSessionByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("join bill session: %w", err)
	}
	if s.Expired(m.now()) {
		return nil, fmt.Errorf("join bill session %s: %w", code, ErrExpired)
	}
	if err := m.cache(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) cache(ctx context.Context, s *model.BillSession) error {
	fields := []struct{ key, value string }{
		{IDKey, s.ID},
		{CodeKey, s.Code},
		{OwnerKey, s.Owner},
		{ExpiresAtKey, s.ExpiresAt.UTC().Format(time.RFC3339Nano)},
	}
	for _, f := range fields {
		if err := m.local.Set(ctx, f.key, f.value); err != nil {
			return fmt.Errorf("cache bill session: %w", err)
		}
	}
	return nil
}

func (m *Manager) localExpiry(ctx context.Context) (time.Time, error) {
	raw, ok, err := m.local.Get(ctx, ExpiresAtKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMissingExpiry, err)
	}
	if !ok || raw == "" {
		return time.Time{}, ErrMissingExpiry
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMissingExpiry, err)
	}
	return t, nil
}

// NewCode returns a random human-shareable session code.
func NewCode() (string, error) {
	b := make([]byte, CodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session code: %w", err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}
