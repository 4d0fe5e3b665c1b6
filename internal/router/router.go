package router

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/menudesk/internal/api"
	"github.com/leca/menudesk/internal/app"
	"github.com/leca/menudesk/internal/handler"
	"github.com/leca/menudesk/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	App    *app.App
	Router chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(a *app.App) *Server {
	s := &Server{App: a}

	h := &handler.Handler{
		Uploads:  a.Uploads,
		Drafts:   a.Drafts,
		Cache:    a.Cache,
		Sessions: a.Manager,
		Config:   a.Config,
		Logger:   a.Logger,
	}
	if opener, ok := a.Objects.(storage.Opener); ok {
		h.Assets = opener
	}

	r := chi.NewRouter()

	// CORS must run before other middleware to answer preflight requests.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Unauthenticated endpoints.
	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	r.Get("/assets/*", h.ServeAsset)

	r.Route("/v1", func(r chi.Router) {
		r.Use(api.AuthMiddleware(a.Config.AuthToken))
		r.Use(api.NoticeMiddleware)

		r.Post("/assets/*", h.UploadAsset)

		r.Get("/draft", h.GetDraft)
		r.Put("/draft", h.SaveDraft)
		r.Delete("/draft", h.DeleteDraft)
		r.Post("/draft/saved", h.MarkDraftSaved)
		r.Get("/draft/status", h.DraftStatus)

		r.Get("/cache/{key}", h.GetCacheEntry)
		r.Put("/cache/{key}", h.PutCacheEntry)
		r.Delete("/cache/{key}", h.DeleteCacheEntry)

		r.Post("/sessions", h.BeginSession)
		r.Post("/sessions/join", h.JoinSession)
		r.Get("/sessions/current", h.CurrentSession)
		r.Post("/sessions/clear-expired", h.ClearExpiredSession)
		r.Post("/sessions/purge", h.PurgeSessions)
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		log.Printf("Health: failed to encode response: %v", err)
	}
}
