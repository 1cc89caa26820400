package convert

import "github.com/starford/postmigrate/internal/models"

// Report accumulates the outcomes of one batch. It is owned by the caller
// running the batch; nothing is shared between batches.
type Report struct {
	Outcomes []models.Outcome `json:"outcomes"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{Outcomes: []models.Outcome{}}
}

// Add appends one outcome.
func (r *Report) Add(o models.Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Migrated returns the number of documents converted in this batch.
func (r *Report) Migrated() int { return r.count(models.StatusMigrated) }

// Skipped returns the number of documents skipped in this batch.
func (r *Report) Skipped() int { return r.count(models.StatusSkipped) }

// Unchanged returns the number of documents left alone because the journal
// already had them.
func (r *Report) Unchanged() int { return r.count(models.StatusUnchanged) }

// Total returns the number of documents seen.
func (r *Report) Total() int { return len(r.Outcomes) }

func (r *Report) count(s models.Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
