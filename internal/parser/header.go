package parser

import (
	"regexp"
	"strings"

	"github.com/starford/postmigrate/internal/models"
)

var headerLineRe = regexp.MustCompile(`^(\w+):\s*(.*)$`)

// ParseHeader turns the content of a header block into legacy fields.
//
// Only `identifier: value` lines are recognised; anything else is dropped.
// Values written as [a, b] become lists, values wrapped in one pair of double
// quotes are unquoted verbatim, everything else is kept as trimmed text.
// ParseHeader never fails.
func ParseHeader(block string) models.LegacyFields {
	fields := make(models.LegacyFields)
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		m := headerLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fields[m[1]] = parseValue(m[2])
	}
	return fields
}

func parseValue(raw string) models.FieldValue {
	v := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]"):
		return models.FieldValue{Kind: models.FieldList, List: splitList(v[1 : len(v)-1])}
	case len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`):
		return models.FieldValue{Kind: models.FieldString, Str: v[1 : len(v)-1]}
	default:
		return models.FieldValue{Kind: models.FieldString, Str: v}
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
