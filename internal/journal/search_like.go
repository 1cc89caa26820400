//go:build !sqlite_fts5

package journal

import (
	"database/sql"
	"fmt"

	"github.com/starford/postmigrate/internal/models"
)

// Without FTS5 the migrations table is searched directly.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.DB, _ models.Outcome) error { return nil }

func ftsDelete(_ *sql.DB, _ string) {}

// Search matches query against filename, title and tags with LIKE.
func (db *DB) Search(query string, limit int) ([]models.Outcome, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`SELECT `+selectColumns+` FROM migrations
		WHERE filename LIKE ? OR title LIKE ? OR tags LIKE ?
		ORDER BY pub_date DESC, filename ASC
		LIMIT ?`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: search: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}
