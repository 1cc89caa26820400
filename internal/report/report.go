// Package report renders batch outcomes for humans (styled status lines and
// dry-run diffs) and for machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/postmigrate/internal/convert"
	"github.com/starford/postmigrate/internal/models"
)

// Printer writes outcome lines to an io.Writer.
type Printer struct {
	w        io.Writer
	colorize bool

	ok   lipgloss.Style
	warn lipgloss.Style
	dim  lipgloss.Style
	bold lipgloss.Style
}

// NewPrinter creates a Printer. With colorize false output is plain text.
func NewPrinter(w io.Writer, colorize bool) *Printer {
	return &Printer{
		w:        w,
		colorize: colorize,
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		bold:     lipgloss.NewStyle().Bold(true),
	}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.colorize {
		return text
	}
	return s.Render(text)
}

// Found prints the number of candidate posts before a batch starts.
func (p *Printer) Found(n int) {
	fmt.Fprintf(p.w, "Found %d posts to migrate\n", n)
}

// Outcome prints the status line for one document.
func (p *Printer) Outcome(o models.Outcome) {
	switch o.Status {
	case models.StatusMigrated:
		target := o.OutputPath
		if target == "" {
			target = o.Filename
		}
		fmt.Fprintf(p.w, "%s %s %s\n", p.render(p.ok, "✓"), o.Filename, p.render(p.dim, "→ "+target))
	case models.StatusUnchanged:
		fmt.Fprintf(p.w, "%s %s %s\n", p.render(p.dim, "="), o.Filename, p.render(p.dim, "unchanged"))
	default:
		fmt.Fprintf(p.w, "%s %s %s\n", p.render(p.warn, "⚠"), o.Filename, p.render(p.warn, "skipped - "+o.Reason))
	}
	for _, w := range o.Warnings {
		fmt.Fprintf(p.w, "    %s\n", p.render(p.dim, w))
	}
}

// Removed prints the line for a source that disappeared in watch mode.
func (p *Printer) Removed(filename string) {
	fmt.Fprintf(p.w, "%s %s %s\n", p.render(p.dim, "-"), filename, p.render(p.dim, "removed"))
}

// FileWarnings prints the verifier findings for one converted file.
func (p *Printer) FileWarnings(path string, warnings []string) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(p.warn, "⚠"), path)
	for _, w := range warnings {
		fmt.Fprintf(p.w, "    %s\n", w)
	}
}

// Summary prints the final count line.
func (p *Printer) Summary(r *convert.Report) {
	line := fmt.Sprintf("Migration complete! Migrated %d posts.", r.Migrated())
	var extra []string
	if n := r.Skipped(); n > 0 {
		extra = append(extra, fmt.Sprintf("%d skipped", n))
	}
	if n := r.Unchanged(); n > 0 {
		extra = append(extra, fmt.Sprintf("%d unchanged", n))
	}
	if len(extra) > 0 {
		line += " (" + strings.Join(extra, ", ") + ")"
	}
	fmt.Fprintf(p.w, "\n%s\n", p.render(p.bold, line))
}

// Report prints every outcome followed by the summary.
func (p *Printer) Report(r *convert.Report) {
	for _, o := range r.Outcomes {
		p.Outcome(o)
	}
	p.Summary(r)
}

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, r *convert.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Migrated  int              `json:"migrated"`
		Skipped   int              `json:"skipped"`
		Unchanged int              `json:"unchanged"`
		Outcomes  []models.Outcome `json:"outcomes"`
	}{r.Migrated(), r.Skipped(), r.Unchanged(), r.Outcomes})
}
