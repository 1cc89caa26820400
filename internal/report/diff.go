package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiff returns a unified-style line diff of before and after. Equal
// lines are prefixed with two spaces, removed with "- ", added with "+ ".
func LineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// Diff prints the diff for one document under a header line.
func (p *Printer) Diff(filename, before, after string) {
	p.DiffText(filename, LineDiff(before, after))
}

// DiffText prints a diff already produced by LineDiff.
func (p *Printer) DiffText(filename, diff string) {
	p.w.Write([]byte(p.render(p.bold, "--- "+filename) + "\n"))
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "- "):
			line = p.render(p.warn, strings.TrimSuffix(line, "\n")) + "\n"
		case strings.HasPrefix(line, "+ "):
			line = p.render(p.ok, strings.TrimSuffix(line, "\n")) + "\n"
		}
		p.w.Write([]byte(line))
	}
}
