package convert

import (
	"strings"
	"time"

	"github.com/starford/postmigrate/internal/models"
)

// SerializeHeader renders meta as header lines in the fixed order title,
// description, pubDate, tags. The --- delimiters are not included.
func SerializeHeader(meta models.CanonicalMetadata) string {
	var lines []string
	lines = appendString(lines, "title", meta.Title)
	lines = appendString(lines, "description", meta.Description)
	lines = appendDate(lines, "pubDate", meta.PubDate)
	lines = appendList(lines, "tags", meta.Tags)
	return strings.Join(lines, "\n")
}

// appendString quotes values containing a colon. Content is not escaped, so
// a value holding both : and " will not read back cleanly.
func appendString(lines []string, key, value string) []string {
	if strings.Contains(value, ":") {
		return append(lines, key+`: "`+value+`"`)
	}
	return append(lines, key+": "+value)
}

func appendDate(lines []string, key string, t time.Time) []string {
	return append(lines, key+": "+t.Format(time.DateOnly))
}

// appendList omits the line entirely for an empty list.
func appendList(lines []string, key string, values []string) []string {
	if len(values) == 0 {
		return lines
	}
	return append(lines, key+": ["+strings.Join(values, ", ")+"]")
}
