package api

import (
	"github.com/starford/postmigrate/internal/migrator"
	"github.com/starford/postmigrate/internal/models"
)

// ConvertRequest is the request body for converting one legacy post.
type ConvertRequest struct {
	Filename string `json:"filename" example:"2020-01-15-hello-world.md" validate:"required"`
	Content  string `json:"content" example:"---\ntitle: Hello\n---\nBody" validate:"required"`
}

// ConvertResponse is the preview of a conversion (aliased from the domain layer).
type ConvertResponse = migrator.Preview

// MigrateResponse summarizes a full run.
type MigrateResponse struct {
	Migrated  int                 `json:"migrated" example:"12"`
	Skipped   int                 `json:"skipped" example:"1"`
	Unchanged int                 `json:"unchanged" example:"0"`
	Outcomes  []models.Outcome    `json:"outcomes" validate:"required"`
	Diffs     []migrator.FileDiff `json:"diffs,omitempty"`
}

// MigrationListResponse wraps paginated journal rows.
type MigrationListResponse struct {
	Migrations []models.Outcome `json:"migrations" validate:"required"`
	Total      int              `json:"total" example:"42" validate:"required"`
}

// PostListResponse wraps converted post listings.
type PostListResponse struct {
	Posts []models.PostMetadata `json:"posts" validate:"required"`
}

// PostResponse is one converted post.
type PostResponse struct {
	Path     string `json:"path" example:"2020-01-15-hello-world.md" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Checksum string `json:"checksum" example:"abc123..." validate:"required"`
}

// VerifyResponse lists output files that produced warnings.
type VerifyResponse struct {
	Files []migrator.FileCheck `json:"files" validate:"required"`
}
