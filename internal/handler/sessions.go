package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/leca/menudesk/internal/api"
	"github.com/leca/menudesk/internal/database"
	"github.com/leca/menudesk/internal/session"
)

type beginSessionRequest struct {
	Owner    string  `json:"owner"`
	TTLHours float64 `json:"ttl_hours"`
}

type joinSessionRequest struct {
	Code string `json:"code"`
}

// BeginSession handles POST /v1/sessions.
func (h *Handler) BeginSession(w http.ResponseWriter, r *http.Request) {
	var req beginSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Owner == "" {
		api.MissingField(w, "owner")
		return
	}
	ttl := h.Config.SessionTTL()
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours * float64(time.Hour))
	}

	s, err := h.Sessions.Begin(r.Context(), req.Owner, ttl)
	if err != nil {
		api.InternalError(w, "failed to begin session: "+err.Error())
		return
	}
	api.Respond(w, r, http.StatusCreated, api.SuccessResponse(s))
}

// JoinSession handles POST /v1/sessions/join.
func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Code == "" {
		api.MissingField(w, "code")
		return
	}

	s, err := h.Sessions.Join(r.Context(), req.Code)
	switch {
	case err == nil:
		api.Respond(w, r, http.StatusOK, api.SuccessResponse(s))
	case errors.Is(err, database.ErrNotFound):
		api.NotFound(w, "session not found")
	case errors.Is(err, session.ErrExpired):
		api.Gone(w, "session expired")
	default:
		api.InternalError(w, "failed to join session: "+err.Error())
	}
}

// CurrentSession handles GET /v1/sessions/current.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Sessions.Current(r.Context())
	if !ok {
		api.NotFound(w, "no active session")
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(s))
}

// ClearExpiredSession handles POST /v1/sessions/clear-expired.
func (h *Handler) ClearExpiredSession(w http.ResponseWriter, r *http.Request) {
	cleared := h.Sessions.ClearIfExpired(r.Context())
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(map[string]bool{"cleared": cleared}))
}

// PurgeSessions handles POST /v1/sessions/purge. The purge is best-effort;
// failures only show up in the logs.
func (h *Handler) PurgeSessions(w http.ResponseWriter, r *http.Request) {
	h.Sessions.PurgeExpiredRemote(r.Context())
	api.Respond(w, r, http.StatusAccepted, api.SuccessResponse(nil))
}
