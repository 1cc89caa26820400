//go:build sqlite_fts5

package journal

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/postmigrate/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS migrations_fts USING fts5(
			filename,
			title,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(conn *sql.DB, o models.Outcome) error {
	_, _ = conn.Exec(`DELETE FROM migrations_fts WHERE filename = ?`, o.Filename)
	_, err := conn.Exec(`INSERT INTO migrations_fts (filename, title, tags) VALUES (?, ?, ?)`,
		o.Filename, o.Title, strings.Join(o.Tags, " "))
	if err != nil {
		return fmt.Errorf("journal: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(conn *sql.DB, filename string) {
	_, _ = conn.Exec(`DELETE FROM migrations_fts WHERE filename = ?`, filename)
}

// Search runs an FTS5 match over filename, title and tags.
func (db *DB) Search(query string, limit int) ([]models.Outcome, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`SELECT `+selectColumns+` FROM migrations
		WHERE filename IN (SELECT filename FROM migrations_fts WHERE migrations_fts MATCH ?)
		ORDER BY pub_date DESC, filename ASC
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: search: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}
