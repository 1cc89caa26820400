package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/models"
)

const selectColumns = `filename, status, reason, stage, source_checksum, output_path,
	title, pub_date, tags, warnings, migrated_at`

// Record inserts or replaces the outcome for a filename.
func (db *DB) Record(o models.Outcome) error {
	tagsJSON, _ := json.Marshal(nonNil(o.Tags))
	warningsJSON, _ := json.Marshal(nonNil(o.Warnings))
	if o.MigratedAt.IsZero() {
		o.MigratedAt = time.Now().UTC()
	}

	_, err := db.conn.Exec(`
		INSERT INTO migrations (filename, status, reason, stage, source_checksum, output_path,
			title, pub_date, tags, warnings, migrated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			status          = excluded.status,
			reason          = excluded.reason,
			stage           = excluded.stage,
			source_checksum = excluded.source_checksum,
			output_path     = excluded.output_path,
			title           = excluded.title,
			pub_date        = excluded.pub_date,
			tags            = excluded.tags,
			warnings        = excluded.warnings,
			migrated_at     = excluded.migrated_at
	`, o.Filename, string(o.Status), o.Reason, string(o.Stage), o.SourceChecksum, o.OutputPath,
		o.Title, o.PubDate, string(tagsJSON), string(warningsJSON), o.MigratedAt)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", o.Filename, err)
	}
	return ftsUpsert(db.conn, o)
}

// Get returns the recorded outcome for filename or apperr.ErrNotFound.
func (db *DB) Get(filename string) (*models.Outcome, error) {
	row := db.conn.QueryRow(`SELECT `+selectColumns+` FROM migrations WHERE filename = ?`, filename)
	o, err := scanOutcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: get %s: %w", filename, err)
	}
	return o, nil
}

// List returns outcomes newest publish date first, optionally filtered by
// status, with the total count before paging.
func (db *DB) List(status models.Status, limit, offset int) ([]models.Outcome, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, string(status))
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM migrations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("journal: count: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+selectColumns+` FROM migrations`+where+
		` ORDER BY pub_date DESC, filename ASC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	out, err := scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Checksums returns the source checksum of every migrated filename.
func (db *DB) Checksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT filename, source_checksum FROM migrations WHERE status = ?`,
		string(models.StatusMigrated))
	if err != nil {
		return nil, fmt.Errorf("journal: checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}

// Delete removes the entry for filename. Missing entries are not an error.
func (db *DB) Delete(filename string) error {
	if _, err := db.conn.Exec(`DELETE FROM migrations WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("journal: delete %s: %w", filename, err)
	}
	ftsDelete(db.conn, filename)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(s scanner) (*models.Outcome, error) {
	var (
		o                  models.Outcome
		status, stage      string
		tagsJSON, warnJSON string
	)
	if err := s.Scan(&o.Filename, &status, &o.Reason, &stage, &o.SourceChecksum, &o.OutputPath,
		&o.Title, &o.PubDate, &tagsJSON, &warnJSON, &o.MigratedAt); err != nil {
		return nil, err
	}
	o.Status = models.Status(status)
	o.Stage = models.Stage(stage)
	_ = json.Unmarshal([]byte(tagsJSON), &o.Tags)
	_ = json.Unmarshal([]byte(warnJSON), &o.Warnings)
	return &o, nil
}

func scanAll(rows *sql.Rows) ([]models.Outcome, error) {
	out := []models.Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
