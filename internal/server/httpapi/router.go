// Package httpapi exposes the dev backend over HTTP: signed upload URLs and
// per-customer attachment records.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/attachkeeper/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts h with request ID, real IP, logging, panic recovery and
// CORS middleware.
func NewRouter(h *Handler, logger logging.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/uploads/signed_s3_upload_url", h.SignedUploadURL)
	r.Route("/customers/{ref}/attachments", func(r chi.Router) {
		r.Post("/", h.CreateAttachment)
		r.Get("/", h.ListAttachments)
	})

	return r
}
