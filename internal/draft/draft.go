// Package draft persists the menu editor's in-progress document in a single
// fixed local slot, together with a dirty flag.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/leca/menudesk/internal/localstore"
	"github.com/leca/menudesk/internal/model"
)

// Fixed local storage keys.
const (
	StateKey   = "menu_editor_state"
	UnsavedKey = "menu_editor_unsaved_changes"
)

// Store saves, loads and clears the editor draft.
//
// Calls are not serialized against each other: overlapping Save and Clear
// calls resolve as last writer wins.
type Store struct {
	local  localstore.Store
	logger *slog.Logger
}

// New creates a draft Store on local.
func New(local localstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{local: local, logger: logger}
}

// Save writes doc and then raises the dirty flag. If the flag write fails
// after the document was written the draft is still recoverable, and the
// error is returned.
func (s *Store) Save(ctx context.Context, doc *model.MenuDraft) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.local.Set(ctx, StateKey, string(raw)); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := s.local.Set(ctx, UnsavedKey, "true"); err != nil {
		return fmt.Errorf("write unsaved flag: %w", err)
	}
	return nil
}

// Load returns the stored draft. A missing, unreadable or corrupt draft is
// reported as absent; corruption is logged.
func (s *Store) Load(ctx context.Context) (*model.MenuDraft, bool) {
	raw, ok, err := s.local.Get(ctx, StateKey)
	if err != nil {
		s.logger.WarnContext(ctx, "draft read failed", "key", StateKey, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var doc model.MenuDraft
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.logger.WarnContext(ctx, "ignoring corrupt draft", "key", StateKey,
			"error", fmt.Errorf("%w: %v", localstore.ErrCorrupt, err))
		return nil, false
	}
	return &doc, true
}

// Clear removes both the draft and the dirty flag.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.local.Remove(ctx, StateKey, UnsavedKey); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// MarkSaved lowers the dirty flag without touching the stored draft.
func (s *Store) MarkSaved(ctx context.Context) error {
	if err := s.local.Set(ctx, UnsavedKey, "false"); err != nil {
		return fmt.Errorf("write unsaved flag: %w", err)
	}
	return nil
}

// HasUnsavedChanges reports whether the dirty flag is raised.
//
// It never fails. When the flag cannot be read it answers false, i.e.
// "nothing pending"; this is accepted behaviour, not an oversight.
func (s *Store) HasUnsavedChanges(ctx context.Context) bool {
	v, ok, err := s.local.Get(ctx, UnsavedKey)
	if err != nil {
		s.logger.WarnContext(ctx, "unsaved flag read failed", "key", UnsavedKey, "error", err)
		return false
	}
	return ok && v == "true"
}
