package parser

import "regexp"

var (
	highlightOpenRe  = regexp.MustCompile(`\{%\s*highlight\s+(\w+)\s*%\}`)
	highlightCloseRe = regexp.MustCompile(`\{%\s*endhighlight\s*%\}`)
)

const fence = "```"

// RewriteHighlights turns Liquid highlight tags into fenced code block
// markers. Tags are rewritten one by one; pairing is not checked.
func RewriteHighlights(body string) string {
	body = highlightOpenRe.ReplaceAllString(body, fence+"${1}")
	return highlightCloseRe.ReplaceAllLiteralString(body, fence)
}

// TransformBody strips the leading header block from text and rewrites the
// highlight tags in what remains.
func TransformBody(text string) (string, error) {
	body, err := StripHeader(text)
	if err != nil {
		return "", err
	}
	return RewriteHighlights(body), nil
}
