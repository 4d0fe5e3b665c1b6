package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leca/menudesk/internal/api"
)

type cacheEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type putCacheRequest struct {
	Value    json.RawMessage `json:"value"`
	TTLHours *float64        `json:"ttl_hours"`
}

// GetCacheEntry handles GET /v1/cache/{key}.
func (h *Handler) GetCacheEntry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, ok := h.Cache.Get(r.Context(), key)
	if !ok {
		api.NotFound(w, "cache entry not found")
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(cacheEntry{Key: key, Value: v}))
}

// PutCacheEntry handles PUT /v1/cache/{key}.
func (h *Handler) PutCacheEntry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req putCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Value) == 0 {
		api.MissingField(w, "value")
		return
	}
	if req.TTLHours == nil {
		api.MissingField(w, "ttl_hours")
		return
	}
	if err := h.Cache.Set(r.Context(), key, req.Value, *req.TTLHours); err != nil {
		api.InternalError(w, "failed to store cache entry: "+err.Error())
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(cacheEntry{Key: key, Value: req.Value}))
}

// DeleteCacheEntry handles DELETE /v1/cache/{key}.
func (h *Handler) DeleteCacheEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Cache.Remove(r.Context(), chi.URLParam(r, "key")); err != nil {
		api.InternalError(w, "failed to remove cache entry: "+err.Error())
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(nil))
}
