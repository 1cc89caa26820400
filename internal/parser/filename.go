package parser

import (
	"regexp"
	"time"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/models"
)

var filenameRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)\.md$`)

// ParseFilename extracts the publish date and slug from a YYYY-MM-DD-slug.md
// filename. The slug is returned as written.
func ParseFilename(name string) (models.FilenameDerived, error) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return models.FilenameDerived{}, apperr.Skip(name, apperr.ErrInvalidFilename, "")
	}
	d := models.FilenameDerived{Year: m[1], Month: m[2], Day: m[3], Slug: m[4]}
	if _, err := time.Parse(time.DateOnly, d.Date()); err != nil {
		return models.FilenameDerived{}, apperr.Skip(name, apperr.ErrInvalidFilename, "not a calendar date: "+d.Date())
	}
	return d, nil
}

// PubDate returns the calendar date of d at UTC midnight.
func PubDate(d models.FilenameDerived) time.Time {
	t, _ := time.Parse(time.DateOnly, d.Date())
	return t
}
