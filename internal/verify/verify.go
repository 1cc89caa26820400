// Package verify re-reads converted posts the way the static-site toolchain
// will, and reports anything that would not survive that trip.
package verify

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/starford/postmigrate/internal/models"
	"github.com/starford/postmigrate/internal/parser"
)

// envelope is the header as a YAML reader sees it.
type envelope struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	PubDate     time.Time `yaml:"pubDate"`
	Tags        []string  `yaml:"tags"`
}

// Checker validates converted documents. It is safe for concurrent use.
type Checker struct {
	languages map[string]struct{}
	md        goldmark.Markdown
}

// New creates a Checker. Fenced code languages outside languages are
// reported; an empty list turns that check off.
func New(languages []string) *Checker {
	set := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			set[l] = struct{}{}
		}
	}
	return &Checker{languages: set, md: goldmark.New()}
}

// Check returns one warning per problem found in doc. want is the metadata
// the header was serialized from.
func (c *Checker) Check(doc models.ConvertedDocument, want models.CanonicalMetadata) []string {
	var env envelope
	body, err := frontmatter.Parse(strings.NewReader(doc.Text), &env)
	if err != nil {
		return []string{fmt.Sprintf("header does not parse as YAML: %v", err)}
	}

	var warnings []string
	if env.Title != want.Title {
		warnings = append(warnings, fmt.Sprintf("title reads back as %q, want %q", env.Title, want.Title))
	}
	if env.Description != want.Description {
		warnings = append(warnings, fmt.Sprintf("description reads back as %q, want %q", env.Description, want.Description))
	}
	if !env.PubDate.Equal(want.PubDate) {
		warnings = append(warnings, fmt.Sprintf("pubDate reads back as %s, want %s",
			env.PubDate.Format(time.DateOnly), want.PubDate.Format(time.DateOnly)))
	}
	if !(len(env.Tags) == 0 && len(want.Tags) == 0) && !slices.Equal(env.Tags, want.Tags) {
		warnings = append(warnings, fmt.Sprintf("tags read back as %v, want %v", env.Tags, want.Tags))
	}

	return append(warnings, c.CheckBody(body)...)
}

// CheckText checks an already converted post read back from disk. The
// expected metadata is taken from the header as the converter wrote it.
func (c *Checker) CheckText(filename, text string) []string {
	block, ok := parser.FindHeader(text)
	if !ok {
		return []string{"no header block"}
	}
	fields := parser.ParseHeader(block.Content)

	var want models.CanonicalMetadata
	var missing []string
	for _, key := range []string{"title", "description", "pubDate"} {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	want.Title, _ = fields.Text("title")
	want.Description, _ = fields.Text("description")
	if raw, ok := fields.Text("pubDate"); ok {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return []string{fmt.Sprintf("pubDate %q is not a YYYY-MM-DD date", raw)}
		}
		want.PubDate = d
	}
	if tags, ok := fields.List("tags"); ok {
		want.Tags = tags
	}

	var warnings []string
	if len(missing) > 0 {
		warnings = append(warnings, "header is missing "+strings.Join(missing, ", "))
	}
	return append(warnings, c.Check(models.ConvertedDocument{Filename: filename, Text: text}, want)...)
}

// CheckBody reports leftover template tags and fenced code blocks whose
// language is not configured.
func (c *Checker) CheckBody(body []byte) []string {
	var warnings []string
	if strings.Contains(string(body), "{%") {
		warnings = append(warnings, "body still contains {% template tags")
	}
	if len(c.languages) == 0 {
		return warnings
	}

	seen := map[string]bool{}
	doc := c.md.Parser().Parse(text.NewReader(body))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fence.Language(body)))
		if lang == "" || seen[lang] {
			return ast.WalkSkipChildren, nil
		}
		seen[lang] = true
		if _, ok := c.languages[lang]; !ok {
			warnings = append(warnings, fmt.Sprintf("code fence language %q is not configured for highlighting", lang))
		}
		return ast.WalkSkipChildren, nil
	})
	return warnings
}
