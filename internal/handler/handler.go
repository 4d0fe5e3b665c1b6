package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/leca/menudesk/internal/cache"
	"github.com/leca/menudesk/internal/config"
	"github.com/leca/menudesk/internal/draft"
	"github.com/leca/menudesk/internal/session"
	"github.com/leca/menudesk/internal/storage"
	"github.com/leca/menudesk/internal/upload"
)

// maxUploadBytes bounds the size of a multipart asset upload.
const maxUploadBytes = 25 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Uploads  *upload.Service
	Assets   storage.Opener // nil when objects are served by the object store itself
	Drafts   *draft.Store
	Cache    *cache.Store[json.RawMessage]
	Sessions *session.Manager
	Config   *config.Config
	Logger   *slog.Logger
}
