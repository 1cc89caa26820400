// Package migrator wires conversion to storage: it enumerates legacy posts,
// writes converted ones, keeps the journal current and follows changes to the
// input directory.
package migrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/checksum"
	"github.com/starford/postmigrate/internal/convert"
	"github.com/starford/postmigrate/internal/journal"
	"github.com/starford/postmigrate/internal/models"
	"github.com/starford/postmigrate/internal/parser"
	"github.com/starford/postmigrate/internal/report"
	"github.com/starford/postmigrate/internal/storage"
	"github.com/starford/postmigrate/internal/verify"
)

// Layout selects where a converted post is written.
type Layout string

const (
	// LayoutFlat writes the post under its original filename.
	LayoutFlat Layout = "flat"
	// LayoutBundle writes the post to <slug>/index.md.
	LayoutBundle Layout = "bundle"
)

// Options tune a Service.
type Options struct {
	// Include is the doublestar pattern selecting input files.
	Include string
	Layout  Layout
	// DryRun converts without writing outputs or journal rows.
	DryRun bool
	// Incremental leaves sources whose checksum matches the journal alone.
	Incremental bool
	// Force converts everything, even when Incremental would skip it.
	Force bool
}

// FileDiff is the dry-run change for one post.
type FileDiff struct {
	Filename string `json:"filename"`
	Output   string `json:"output"`
	Diff     string `json:"diff"`
}

// Batch is the result of a full run.
type Batch struct {
	Report *convert.Report `json:"report"`
	Diffs  []FileDiff      `json:"diffs,omitempty"`
}

// Preview is a conversion of caller-supplied text. Nothing is written.
type Preview struct {
	Outcome models.Outcome `json:"outcome"`
	Text    string         `json:"text,omitempty"`
	Diff    string         `json:"diff,omitempty"`
}

// Service coordinates input storage, output storage and the journal.
type Service struct {
	in      storage.Provider
	out     storage.Provider
	journal journal.Journal // nil when disabled
	checker *verify.Checker // nil when disabled
	opts    Options
	logger  *slog.Logger

	mu sync.Mutex // serializes batches and single-file migrations
}

// New creates a Service. j and checker may be nil.
func New(in, out storage.Provider, j journal.Journal, checker *verify.Checker, opts Options, logger *slog.Logger) *Service {
	if opts.Include == "" {
		opts.Include = "*.md"
	}
	if opts.Layout == "" {
		opts.Layout = LayoutFlat
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{in: in, out: out, journal: j, checker: checker, opts: opts, logger: logger}
}

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// OutputPath returns where a converted post lands for the given layout.
func OutputPath(layout Layout, d models.FilenameDerived, filename string) string {
	if layout == LayoutBundle {
		return d.Slug + "/index.md"
	}
	return filename
}

// source is one enumerated input file.
type source struct {
	doc models.RawDocument
	sum string
}

// RunBatch converts every input file matching the include pattern.
func (s *Service) RunBatch(ctx context.Context) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas, err := s.in.List(s.opts.Include)
	if err != nil {
		return nil, err
	}
	s.logger.Info("migrate: found posts", slog.Int("count", len(metas)), slog.String("root", s.in.Root()))

	sources := make([]source, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := s.readSource(m.Path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return s.run(ctx, sources)
}

// MigrateFile converts a single input file given by its path relative to
// the input root.
func (s *Service) MigrateFile(ctx context.Context, rel string) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.readSource(rel)
	if err != nil {
		return models.Outcome{}, err
	}
	b, err := s.run(ctx, []source{src})
	if err != nil {
		return models.Outcome{}, err
	}
	return b.Report.Outcomes[0], nil
}

// Preview converts text as if it were stored under filename.
func (s *Service) Preview(filename, text string) Preview {
	res, err := convert.Convert(models.RawDocument{Filename: filename, Text: text})
	if err != nil {
		se, ok := apperr.IsSkip(err)
		if !ok {
			se = &apperr.SkipError{Filename: filename, Err: apperr.ErrMalformedDocument}
		}
		return Preview{Outcome: convert.SkippedOutcome(filename, se)}
	}
	if s.checker != nil {
		res.Warnings = append(res.Warnings, s.checker.Check(res.Document, res.Metadata)...)
	}
	o := convert.MigratedOutcome(res)
	o.OutputPath = OutputPath(s.opts.Layout, res.Derived, filename)
	o.SourceChecksum = checksum.SumString(text)
	return Preview{
		Outcome: o,
		Text:    res.Document.Text,
		Diff:    report.LineDiff(text, res.Document.Text),
	}
}

// Remove deletes the converted output and journal row for an input path that
// no longer exists.
func (s *Service) Remove(_ context.Context, rel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(path.Base(rel))
}

func (s *Service) remove(filename string) error {
	var outPath string
	if s.journal != nil {
		if o, err := s.journal.Get(filename); err == nil {
			outPath = o.OutputPath
		}
	}
	if outPath == "" {
		d, err := parser.ParseFilename(filename)
		if err != nil {
			return nil
		}
		outPath = OutputPath(s.opts.Layout, d, filename)
	}

	// An earlier post owns the output; filename never wrote it.
	owners, err := s.outputOwners(filename)
	if err != nil {
		return err
	}
	if owner, ok := owners[outPath]; ok && owner < filename {
		outPath = ""
	}

	if !s.opts.DryRun {
		if outPath != "" {
			if err := s.out.Delete(outPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		if s.journal != nil {
			if err := s.journal.Delete(filename); err != nil {
				return err
			}
		}
	}
	s.logger.Debug("migrate: removed", slog.String("filename", filename), slog.String("output", outPath))
	return nil
}

func (s *Service) readSource(rel string) (source, error) {
	data, err := s.in.Read(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return source{}, apperr.ErrNotFound
		}
		return source{}, err
	}
	return source{
		doc: models.RawDocument{Filename: path.Base(rel), Text: string(data)},
		sum: checksum.Sum(data),
	}, nil
}

// outputOwners maps each output path to the first input file, in listing
// order, that lands on it. except is left out of the listing.
func (s *Service) outputOwners(except string) (map[string]string, error) {
	metas, err := s.in.List(s.opts.Include)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]string, len(metas))
	for _, m := range metas {
		name := path.Base(m.Path)
		if name == except {
			continue
		}
		d, err := parser.ParseFilename(name)
		if err != nil {
			continue
		}
		p := OutputPath(s.opts.Layout, d, name)
		if _, ok := owners[p]; !ok {
			owners[p] = name
		}
	}
	return owners, nil
}

func (s *Service) run(ctx context.Context, sources []source) (*Batch, error) {
	owners, err := s.outputOwners("")
	if err != nil {
		return nil, err
	}

	known := map[string]string{}
	if s.journal != nil && s.opts.Incremental && !s.opts.Force {
		sums, err := s.journal.Checksums()
		if err != nil {
			return nil, err
		}
		known = sums
	}

	sums := make(map[string]string, len(sources))
	texts := make(map[string]string, len(sources))
	docs := make([]models.RawDocument, len(sources))
	for i, src := range sources {
		docs[i] = src.doc
		sums[src.doc.Filename] = src.sum
		texts[src.doc.Filename] = src.doc.Text
	}

	batch := &Batch{}
	emit := func(res *convert.Result) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := res.Document.Filename
		outPath := OutputPath(s.opts.Layout, res.Derived, name)
		if owner, ok := owners[outPath]; ok && owner != name {
			return "", apperr.Skip(name, apperr.ErrOutputCollision, outPath+" is written by "+owner)
		}
		if s.checker != nil {
			res.Warnings = append(res.Warnings, s.checker.Check(res.Document, res.Metadata)...)
		}

		if cs, ok := known[name]; ok && cs == sums[name] {
			if _, err := s.out.Read(outPath); err == nil {
				return outPath, apperr.ErrUnchanged
			}
		}

		if s.opts.DryRun {
			batch.Diffs = append(batch.Diffs, FileDiff{
				Filename: name,
				Output:   outPath,
				Diff:     report.LineDiff(texts[name], res.Document.Text),
			})
			return outPath, nil
		}
		if err := s.out.Write(outPath, []byte(res.Document.Text)); err != nil {
			return "", fmt.Errorf("migrate: write %s: %w", outPath, err)
		}
		return outPath, nil
	}

	rep, err := convert.ConvertAll(docs, emit)
	for i := range rep.Outcomes {
		o := &rep.Outcomes[i]
		o.SourceChecksum = sums[o.Filename]
		s.log(*o)
		if s.journal != nil && !s.opts.DryRun && o.Status != models.StatusUnchanged {
			if jerr := s.journal.Record(*o); jerr != nil {
				s.logger.Warn("migrate: journal record failed",
					slog.String("filename", o.Filename), slog.String("error", jerr.Error()))
			}
		}
	}
	batch.Report = rep
	return batch, err
}

func (s *Service) log(o models.Outcome) {
	switch o.Status {
	case models.StatusSkipped:
		s.logger.Warn("migrate: skipped", slog.String("filename", o.Filename), slog.String("reason", o.Reason))
	case models.StatusUnchanged:
		s.logger.Debug("migrate: unchanged", slog.String("filename", o.Filename))
	default:
		s.logger.Info("migrate: migrated", slog.String("filename", o.Filename), slog.String("output", o.OutputPath))
		for _, w := range o.Warnings {
			s.logger.Warn("migrate: warning", slog.String("filename", o.Filename), slog.String("warning", w))
		}
	}
}

// Migrations lists journal rows.
func (s *Service) Migrations(_ context.Context, status models.Status, limit, offset int) ([]models.Outcome, int, error) {
	if s.journal == nil {
		return nil, 0, apperr.ErrJournalDisabled
	}
	return s.journal.List(status, limit, offset)
}

// Migration returns the journal row for filename.
func (s *Service) Migration(_ context.Context, filename string) (*models.Outcome, error) {
	if s.journal == nil {
		return nil, apperr.ErrJournalDisabled
	}
	return s.journal.Get(filename)
}

// SearchMigrations matches query against journal rows.
func (s *Service) SearchMigrations(_ context.Context, query string, limit int) ([]models.Outcome, error) {
	if s.journal == nil {
		return nil, apperr.ErrJournalDisabled
	}
	return s.journal.Search(query, limit)
}

// Outputs lists converted posts in the output directory.
func (s *Service) Outputs(_ context.Context) ([]models.PostMetadata, error) {
	items, err := s.out.List("**/*.md")
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.PostMetadata{}
	}
	return items, nil
}

// Output returns the content of one converted post.
func (s *Service) Output(_ context.Context, rel string) ([]byte, error) {
	data, err := s.out.Read(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// FileCheck holds the verifier warnings for one output file.
type FileCheck struct {
	Path     string   `json:"path"`
	Warnings []string `json:"warnings"`
}

// VerifyOutputs re-checks every converted post in the output directory and
// returns the files that produced warnings.
func (s *Service) VerifyOutputs(ctx context.Context) ([]FileCheck, error) {
	checker := s.checker
	if checker == nil {
		checker = verify.New(nil)
	}
	items, err := s.out.List("**/*.md")
	if err != nil {
		return nil, err
	}
	out := []FileCheck{}
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.out.Read(it.Path)
		if err != nil {
			return nil, err
		}
		if w := checker.CheckText(path.Base(it.Path), string(data)); len(w) > 0 {
			out = append(out, FileCheck{Path: it.Path, Warnings: w})
		}
	}
	return out, nil
}
