package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/leca/menudesk/internal/api"
	"github.com/leca/menudesk/internal/imageproc"
	"github.com/leca/menudesk/internal/model"
	"github.com/leca/menudesk/internal/notify"
	"github.com/leca/menudesk/internal/storage"
	"github.com/leca/menudesk/internal/upload"
)

// UploadAsset handles POST /v1/assets/{namespace...} -- multipart file upload.
// Images are optimized first unless optimize=false is given.
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	namespace := strings.Trim(chi.URLParam(r, "*"), "/")
	if err := upload.ValidateNamespace(namespace); err != nil {
		api.BadRequest(w, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.TooLarge(w, "asset exceeds upload limit")
			return
		}
		api.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.MissingField(w, "file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.BadRequest(w, "failed to read file: "+err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = imageproc.SniffContentType(data)
	}
	asset := &model.Asset{Name: header.Filename, ContentType: contentType, Data: data}

	var ref *model.UploadedReference
	if r.FormValue("optimize") == "false" {
		ref, err = h.Uploads.Upload(r.Context(), asset, namespace)
	} else {
		ref, err = h.Uploads.OptimizeAndUpload(r.Context(), asset, namespace)
	}
	switch {
	case err == nil:
		api.Respond(w, r, http.StatusOK, api.SuccessResponse(ref))
	case errors.Is(err, upload.ErrRemoteWrite):
		if c := notify.CollectorFrom(r.Context()); c != nil {
			c.Notify(r.Context(), "Upload failed, please try again", notify.SeverityError)
		}
		api.BadGateway(w, r, err.Error())
	default:
		api.BadRequest(w, err.Error())
	}
}

// ServeAsset handles GET /assets/* -- serves objects written by the
// filesystem object store with their stored headers.
func (h *Handler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	if h.Assets == nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	obj, err := h.Assets.Open(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.Logger.WarnContext(r.Context(), "open asset", "path", r.URL.Path, "error", err)
		}
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if cc := cacheControlHeader(obj.CacheControl); cc != "" {
		w.Header().Set("Cache-Control", cc)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.Logger.WarnContext(r.Context(), "write asset", "path", r.URL.Path, "error", err)
	}
}

// cacheControlHeader turns a bare number of seconds into a max-age directive
// and passes anything else through.
func cacheControlHeader(v string) string {
	if v == "" {
		return ""
	}
	if _, err := strconv.Atoi(v); err == nil {
		return "public, max-age=" + v
	}
	return v
}
