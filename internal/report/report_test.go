package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/postmigrate/internal/convert"
	"github.com/starford/postmigrate/internal/models"
)

func sampleReport() *convert.Report {
	r := convert.NewReport()
	r.Add(models.Outcome{Filename: "2020-01-15-hello.md", Status: models.StatusMigrated, OutputPath: "2020-01-15-hello.md"})
	r.Add(models.Outcome{Filename: "notes.md", Status: models.StatusSkipped, Reason: "invalid filename format"})
	r.Add(models.Outcome{Filename: "2020-02-01-x.md", Status: models.StatusMigrated, Warnings: []string{"tags dropped"}})
	return r
}

func TestPrinter_Report(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Report(sampleReport())
	out := buf.String()

	assert.Contains(t, out, "✓ 2020-01-15-hello.md → 2020-01-15-hello.md")
	assert.Contains(t, out, "⚠ notes.md skipped - invalid filename format")
	assert.Contains(t, out, "    tags dropped")
	assert.Contains(t, out, "Migrated 2 posts. (1 skipped)")
}

func TestPrinter_SummaryCountsMigratedOnly(t *testing.T) {
	r := convert.NewReport()
	r.Add(models.Outcome{Filename: "a.md", Status: models.StatusSkipped, Reason: "no frontmatter found"})
	r.Add(models.Outcome{Filename: "b.md", Status: models.StatusUnchanged})

	var buf bytes.Buffer
	NewPrinter(&buf, false).Summary(r)
	assert.Contains(t, buf.String(), "Migrated 0 posts. (1 skipped, 1 unchanged)")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var got struct {
		Migrated int              `json:"migrated"`
		Skipped  int              `json:"skipped"`
		Outcomes []models.Outcome `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.Migrated)
	assert.Equal(t, 1, got.Skipped)
	assert.Len(t, got.Outcomes, 3)
}

func TestLineDiff(t *testing.T) {
	before := "---\ntitle: x\nlayout: post\n---\nbody\n"
	after := "---\ntitle: x\ndescription: \n---\nbody\n"

	d := LineDiff(before, after)
	assert.Contains(t, d, "  title: x\n")
	assert.Contains(t, d, "- layout: post\n")
	assert.Contains(t, d, "+ description: \n")
	assert.Contains(t, d, "  body\n")
}

func TestLineDiff_Identical(t *testing.T) {
	d := LineDiff("a\nb\n", "a\nb\n")
	assert.Equal(t, "  a\n  b\n", d)
}

func TestPrinter_DiffPlain(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Diff("a.md", "x\n", "y\n")
	assert.Equal(t, "--- a.md\n- x\n+ y\n", buf.String())
}

func TestPrinter_RemovedAndFileWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Removed("2020-01-15-hello.md")
	p.FileWarnings("2020-01-15-hello.md", []string{"no header block"})
	assert.Equal(t, "- 2020-01-15-hello.md removed\n⚠ 2020-01-15-hello.md\n    no header block\n", buf.String())
}
