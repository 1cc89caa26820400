// Package convert rewrites legacy Jekyll posts into the canonical Astro
// content format.
package convert

import (
	"errors"
	"fmt"
	"time"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/models"
	"github.com/starford/postmigrate/internal/parser"
)

// Result is a successful conversion of one document.
type Result struct {
	Document models.ConvertedDocument
	Derived  models.FilenameDerived
	Metadata models.CanonicalMetadata
	Warnings []string
}

// Convert runs one document through the pipeline. Documents whose filename
// is not dated or which lack a leading header block are reported as
// *apperr.SkipError; in that case nothing else is parsed.
func Convert(doc models.RawDocument) (*Result, error) {
	// start
	derived, err := parser.ParseFilename(doc.Filename)
	if err != nil {
		return nil, err
	}

	// date checked
	block, ok := parser.FindHeader(doc.Text)
	if !ok {
		return nil, apperr.Skip(doc.Filename, apperr.ErrNoFrontmatter, "")
	}

	// header checked
	fields := parser.ParseHeader(block.Content)
	meta := Normalize(fields, derived)
	header := SerializeHeader(meta)
	body, err := parser.TransformBody(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", doc.Filename, err)
	}

	// converted
	return &Result{
		Document: models.ConvertedDocument{
			Filename: doc.Filename,
			Text:     "---\n" + header + "\n---\n" + body,
		},
		Derived:  derived,
		Metadata: meta,
		Warnings: normalizeWarnings(fields),
	}, nil
}

// Emitter receives each converted document, in input order. It may append
// to res.Warnings. Returning apperr.ErrUnchanged marks the document as
// unchanged instead of migrated; returning a *apperr.SkipError records it
// as skipped.
type Emitter func(res *Result) (outputPath string, err error)

// ConvertAll converts docs in order. Skipped documents are recorded and the
// batch goes on; any other emit error stops the batch and is returned
// together with the report so far.
func ConvertAll(docs []models.RawDocument, emit Emitter) (*Report, error) {
	report := NewReport()
	for _, doc := range docs {
		res, err := Convert(doc)
		if err != nil {
			if se, ok := apperr.IsSkip(err); ok {
				report.Add(SkippedOutcome(doc.Filename, se))
				continue
			}
			return report, err
		}

		var path string
		if emit != nil {
			path, err = emit(res)
			if se, ok := apperr.IsSkip(err); ok {
				report.Add(SkippedOutcome(doc.Filename, se))
				continue
			}
			if err != nil && !errors.Is(err, apperr.ErrUnchanged) {
				return report, err
			}
		}
		out := MigratedOutcome(res)
		out.OutputPath = path
		if errors.Is(err, apperr.ErrUnchanged) {
			out.Status = models.StatusUnchanged
			out.Reason = apperr.ErrUnchanged.Error()
		}
		report.Add(out)
	}
	return report, nil
}

// MigratedOutcome builds the outcome record for a converted document.
func MigratedOutcome(res *Result) models.Outcome {
	return models.Outcome{
		Filename:   res.Document.Filename,
		Status:     models.StatusMigrated,
		Stage:      models.StageConverted,
		Warnings:   append([]string(nil), res.Warnings...),
		Title:      res.Metadata.Title,
		PubDate:    res.Metadata.PubDate.Format(time.DateOnly),
		Tags:       append([]string{}, res.Metadata.Tags...),
		MigratedAt: time.Now().UTC(),
	}
}

// SkippedOutcome builds the outcome record for a skipped document.
func SkippedOutcome(filename string, se *apperr.SkipError) models.Outcome {
	stage := models.StageStart
	switch {
	case errors.Is(se.Err, apperr.ErrNoFrontmatter):
		stage = models.StageDateChecked
	case errors.Is(se.Err, apperr.ErrOutputCollision):
		stage = models.StageHeaderChecked
	}
	o := models.Outcome{
		Filename:   filename,
		Status:     models.StatusSkipped,
		Reason:     se.Reason(),
		Stage:      stage,
		MigratedAt: time.Now().UTC(),
	}
	if se.Detail != "" {
		o.Warnings = []string{se.Detail}
	}
	return o
}
