// Package parser reads legacy Jekyll posts: the leading header block, the
// key/value lines inside it, the dated filename and the Liquid highlight tags
// in the body.
package parser

import (
	"regexp"

	"github.com/starford/postmigrate/internal/apperr"
)

// headerRe matches a header block at the very start of a document. The
// closing delimiter must end its line (newline or end of text) so the gate
// and the strip step always agree on the same span.
var headerRe = regexp.MustCompile(`(?s)\A---\n(.+?)\n---(?:\n|\z)`)

// Block is a located header block.
type Block struct {
	// Content is the text strictly between the two delimiter lines.
	Content string
	// End is the byte offset just past the closing delimiter line.
	End int
}

// FindHeader locates the header block at the start of text.
func FindHeader(text string) (Block, bool) {
	m := headerRe.FindStringSubmatchIndex(text)
	if m == nil {
		return Block{}, false
	}
	return Block{Content: text[m[2]:m[3]], End: m[1]}, true
}

// StripHeader removes the leading header block, delimiters included.
func StripHeader(text string) (string, error) {
	b, ok := FindHeader(text)
	if !ok {
		return "", apperr.ErrMalformedDocument
	}
	return text[b.End:], nil
}
