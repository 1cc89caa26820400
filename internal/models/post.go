// Package models defines the domain types for postmigrate.
package models

import (
	"strings"
	"time"
)

// RawDocument is one legacy post as handed over by the input enumerator.
type RawDocument struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// FieldKind tells how a legacy header value was written.
type FieldKind int

const (
	// FieldString is a bare or double-quoted scalar.
	FieldString FieldKind = iota
	// FieldList is a bracketed, comma-separated list.
	FieldList
)

// FieldValue is a single legacy header value.
type FieldValue struct {
	Kind FieldKind `json:"kind"`
	Str  string    `json:"str,omitempty"`
	List []string  `json:"list,omitempty"`
}

// String renders the value as text. Lists come back in their bracketed form.
func (v FieldValue) String() string {
	if v.Kind == FieldList {
		return "[" + strings.Join(v.List, ", ") + "]"
	}
	return v.Str
}

// LegacyFields maps header keys to their values. A missing key is absent;
// an empty FieldString is present-but-empty.
type LegacyFields map[string]FieldValue

// Text returns the textual form of key and whether it was present.
func (f LegacyFields) Text(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	return v.String(), true
}

// List returns key as a list. ok is false when key is absent or was not
// written as a bracketed list.
func (f LegacyFields) List(key string) ([]string, bool) {
	v, ok := f[key]
	if !ok || v.Kind != FieldList {
		return nil, false
	}
	return v.List, true
}

// FilenameDerived holds the date and slug taken from a YYYY-MM-DD-slug.md name.
type FilenameDerived struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Slug  string `json:"slug"`
}

// Date returns the YYYY-MM-DD form.
func (d FilenameDerived) Date() string {
	return d.Year + "-" + d.Month + "-" + d.Day
}

// CanonicalMetadata is the target header. Every field is always present.
type CanonicalMetadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PubDate     time.Time `json:"pubDate"`
	Tags        []string  `json:"tags"`
}

// ConvertedDocument is the final output for one post.
type ConvertedDocument struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Stage is the last step of the conversion state machine a document reached.
// A skipped document stops at StageStart (bad filename), StageDateChecked
// (no header block) or StageHeaderChecked (converted, but its output path
// belongs to another post).
type Stage string

const (
	StageStart         Stage = "start"
	StageDateChecked   Stage = "date_checked"
	StageHeaderChecked Stage = "header_checked"
	StageConverted     Stage = "converted"
)

// Status is the final outcome of a document within a batch.
type Status string

const (
	StatusMigrated  Status = "migrated"
	StatusSkipped   Status = "skipped"
	StatusUnchanged Status = "unchanged"
)

// Outcome records what happened to one document.
type Outcome struct {
	Filename       string    `json:"filename"`
	Status         Status    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	Stage          Stage     `json:"stage"`
	Warnings       []string  `json:"warnings,omitempty"`
	OutputPath     string    `json:"output_path,omitempty"`
	SourceChecksum string    `json:"source_checksum,omitempty"`
	Title          string    `json:"title,omitempty"`
	PubDate        string    `json:"pub_date,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	MigratedAt     time.Time `json:"migrated_at"`
}

// PostMetadata is a lightweight listing entry for an input or output file.
type PostMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
