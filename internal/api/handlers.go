package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postmigrate/internal/checksum"
	"github.com/starford/postmigrate/internal/migrator"
	"github.com/starford/postmigrate/internal/models"
)

// BatchHook receives the result of a run started over HTTP.
type BatchHook func(b *migrator.Batch)

// Handler holds API route handlers.
type Handler struct {
	svc     *migrator.Service
	onBatch BatchHook
}

// NewHandler creates a new Handler.
func NewHandler(svc *migrator.Service, onBatch BatchHook) *Handler {
	return &Handler{svc: svc, onBatch: onBatch}
}

// postPath extracts the post path from the URL (everything after /api/posts/).
// Supports encoded slashes (e.g. hello-world%2Findex.md).
func postPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Convert handles POST /api/convert.
//
//	@Summary		Convert one legacy post without writing it
//	@Tags			convert
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConvertRequest	true	"Legacy post"
//	@Success		200		{object}	ConvertResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/convert [post]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("filename is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Preview(req.Filename, req.Content))
}

// Migrate handles POST /api/migrate.
//
//	@Summary		Run a full migration over the input directory
//	@Tags			convert
//	@Produce		json
//	@Success		200	{object}	MigrateResponse
//	@Security		BearerAuth
//	@Router			/migrate [post]
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.RunBatch(r.Context())
	if err != nil {
		writeError(w, "migrate failed", err)
		return
	}
	if h.onBatch != nil {
		h.onBatch(b)
	}
	writeJSON(w, http.StatusOK, MigrateResponse{
		Migrated:  b.Report.Migrated(),
		Skipped:   b.Report.Skipped(),
		Unchanged: b.Report.Unchanged(),
		Outcomes:  b.Report.Outcomes,
		Diffs:     b.Diffs,
	})
}

// ListMigrations handles GET /api/migrations.
//
//	@Summary		List journal rows, optionally filtered or searched
//	@Tags			migrations
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(migrated, skipped)
//	@Param			q		query		string	false	"Match filename, title or tags"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	MigrationListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/migrations [get]
func (h *Handler) ListMigrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	status := models.Status(q.Get("status"))
	switch status {
	case "", models.StatusMigrated, models.StatusSkipped:
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("status must be migrated or skipped"))
		return
	}

	var (
		rows  []models.Outcome
		total int
		err   error
	)
	if query := q.Get("q"); query != "" {
		rows, err = h.svc.SearchMigrations(r.Context(), query, limit)
		total = len(rows)
	} else {
		rows, total, err = h.svc.Migrations(r.Context(), status, limit, offset)
	}
	if err != nil {
		writeError(w, "list migrations failed", err)
		return
	}
	writeJSON(w, http.StatusOK, MigrationListResponse{Migrations: rows, Total: total})
}

// GetMigration handles GET /api/migrations/{filename}.
//
//	@Summary		Get the journal row for one source file
//	@Tags			migrations
//	@Produce		json
//	@Param			filename	path		string	true	"Source filename"
//	@Success		200			{object}	models.Outcome
//	@Failure		404			{object}	errResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/migrations/{filename} [get]
func (h *Handler) GetMigration(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	row, err := h.svc.Migration(r.Context(), filename)
	if err != nil {
		writeError(w, "get migration failed", err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List converted posts
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Outputs(r.Context())
	if err != nil {
		writeError(w, "list posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items})
}

// GetPost handles GET /api/posts/*.
//
//	@Summary		Get one converted post by path
//	@Tags			posts
//	@Produce		json
//	@Param			path	path		string	true	"Post path"
//	@Success		200		{object}	PostResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{path} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.svc.Output(r.Context(), path)
	if err != nil {
		writeError(w, "get post failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{
		Path:     path,
		Content:  string(data),
		Checksum: checksum.Sum(data),
	})
}

// Verify handles GET /api/verify.
//
//	@Summary		Re-check converted posts in the output directory
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	VerifyResponse
//	@Security		BearerAuth
//	@Router			/verify [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.VerifyOutputs(r.Context())
	if err != nil {
		writeError(w, "verify failed", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Files: files})
}
