package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postmigrate/internal/migrator"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// onBatch, if non-nil, is called after every POST /migrate run.
func NewRouter(svc *migrator.Service, authEnabled bool, token string, sseHandler http.Handler, onBatch BatchHook) chi.Router {
	h := NewHandler(svc, onBatch)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Conversion.
	r.Post("/convert", h.Convert)
	r.Post("/migrate", h.Migrate)

	// Journal.
	r.Get("/migrations", h.ListMigrations)
	r.Get("/migrations/{filename}", h.GetMigration)

	// Converted output.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/*", h.GetPost)
	r.Get("/verify", h.Verify)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
