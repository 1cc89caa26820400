package convert

import (
	"github.com/starford/postmigrate/internal/models"
	"github.com/starford/postmigrate/internal/parser"
)

// Normalize maps legacy fields and the filename date onto canonical metadata.
// Missing title and description become empty strings; tags that were not
// written as a bracketed list become an empty list.
func Normalize(fields models.LegacyFields, derived models.FilenameDerived) models.CanonicalMetadata {
	title, _ := fields.Text("title")
	description, _ := fields.Text("description")

	tags, ok := fields.List("tags")
	if !ok {
		tags = []string{}
	}

	return models.CanonicalMetadata{
		Title:       title,
		Description: description,
		PubDate:     parser.PubDate(derived),
		Tags:        append([]string{}, tags...),
	}
}

// normalizeWarnings lists lossy choices Normalize made for fields.
func normalizeWarnings(fields models.LegacyFields) []string {
	var out []string
	if v, ok := fields["tags"]; ok && v.Kind == models.FieldString && v.Str != "" {
		out = append(out, "tags is not a bracketed list and was dropped: "+v.Str)
	}
	return out
}
