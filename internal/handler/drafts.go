package handler

import (
	"encoding/json"
	"net/http"

	"github.com/leca/menudesk/internal/api"
	"github.com/leca/menudesk/internal/model"
)

type draftResult struct {
	Draft   *model.MenuDraft `json:"draft"`
	Unsaved bool             `json:"unsaved"`
}

// GetDraft handles GET /v1/draft.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.Drafts.Load(r.Context())
	if !ok {
		api.NotFound(w, "no saved draft")
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(draftResult{
		Draft:   doc,
		Unsaved: h.Drafts.HasUnsavedChanges(r.Context()),
	}))
}

// SaveDraft handles PUT /v1/draft.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var doc model.MenuDraft
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		api.BadRequest(w, "invalid draft JSON: "+err.Error())
		return
	}
	if err := h.Drafts.Save(r.Context(), &doc); err != nil {
		api.InternalError(w, "failed to save draft: "+err.Error())
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(draftResult{Draft: &doc, Unsaved: true}))
}

// DeleteDraft handles DELETE /v1/draft.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.Drafts.Clear(r.Context()); err != nil {
		api.InternalError(w, "failed to clear draft: "+err.Error())
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(nil))
}

// MarkDraftSaved handles POST /v1/draft/saved -- the editor calls it once
// the draft has been published.
func (h *Handler) MarkDraftSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.Drafts.MarkSaved(r.Context()); err != nil {
		api.InternalError(w, "failed to mark draft saved: "+err.Error())
		return
	}
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(map[string]bool{"unsaved": false}))
}

// DraftStatus handles GET /v1/draft/status.
func (h *Handler) DraftStatus(w http.ResponseWriter, r *http.Request) {
	api.Respond(w, r, http.StatusOK, api.SuccessResponse(map[string]bool{
		"unsaved": h.Drafts.HasUnsavedChanges(r.Context()),
	}))
}
