package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/models"
)

func TestFindHeader_Basic(t *testing.T) {
	text := "---\ntitle: Hello\n---\nBody text.\n"
	b, ok := FindHeader(text)
	if !ok {
		t.Fatal("expected header block")
	}
	if b.Content != "title: Hello" {
		t.Errorf("content = %q", b.Content)
	}
	if text[b.End:] != "Body text.\n" {
		t.Errorf("rest = %q", text[b.End:])
	}
}

func TestFindHeader_Missing(t *testing.T) {
	cases := []string{
		"",
		"Just a body\n",
		"\n---\ntitle: x\n---\n",
		"---\n---\nbody\n",
		"---\n\n---\nbody\n",
		"---\ntitle: unclosed\n",
	}
	for _, c := range cases {
		if _, ok := FindHeader(c); ok {
			t.Errorf("expected no header for %q", c)
		}
	}
}

func TestFindHeader_ClosingAtEOF(t *testing.T) {
	b, ok := FindHeader("---\ntitle: x\n---")
	if !ok {
		t.Fatal("expected header block closing at end of text")
	}
	if b.Content != "title: x" {
		t.Errorf("content = %q", b.Content)
	}
}

func TestFindHeader_ClosingMustEndLine(t *testing.T) {
	text := "---\ntitle: x\n---x\nmiddle\n---\nbody"
	b, ok := FindHeader(text)
	if !ok {
		t.Fatal("expected header block")
	}
	if b.Content != "title: x\n---x\nmiddle" {
		t.Errorf("content = %q", b.Content)
	}
	if text[b.End:] != "body" {
		t.Errorf("rest = %q", text[b.End:])
	}
}

func TestStripHeader_Malformed(t *testing.T) {
	_, err := StripHeader("no header here")
	if !errors.Is(err, apperr.ErrMalformedDocument) {
		t.Errorf("err = %v, want ErrMalformedDocument", err)
	}
}

func TestParseHeader_ValueShapes(t *testing.T) {
	block := "title: \"Hello, World\"\n" +
		"tags: [intro, meta]\n" +
		"description:\n" +
		"layout: post  \n" +
		"empty: []\n" +
		"dupes: [a, , a ,b]\n"
	got := ParseHeader(block)

	want := models.LegacyFields{
		"title":       {Kind: models.FieldString, Str: "Hello, World"},
		"tags":        {Kind: models.FieldList, List: []string{"intro", "meta"}},
		"description": {Kind: models.FieldString, Str: ""},
		"layout":      {Kind: models.FieldString, Str: "post"},
		"empty":       {Kind: models.FieldList, List: []string{}},
		"dupes":       {Kind: models.FieldList, List: []string{"a", "a", "b"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %#v\nwant %#v", got, want)
	}
}

func TestParseHeader_IgnoresUnrecognisedLines(t *testing.T) {
	block := "# a comment\n  indented: nope\nkey-with-dash: x\n- item\nok: yes"
	got := ParseHeader(block)
	if len(got) != 1 {
		t.Fatalf("fields = %#v, want only ok", got)
	}
	if v, _ := got.Text("ok"); v != "yes" {
		t.Errorf("ok = %q", v)
	}
}

func TestParseHeader_QuotesVerbatim(t *testing.T) {
	got := ParseHeader(`title: "say \"hi\""` + "\nsingle: \"\nlone: 'x'")
	if v, _ := got.Text("title"); v != `say \"hi\"` {
		t.Errorf("title = %q", v)
	}
	if v, _ := got.Text("single"); v != `"` {
		t.Errorf("single = %q", v)
	}
	if v, _ := got.Text("lone"); v != "'x'" {
		t.Errorf("lone = %q", v)
	}
}

func TestParseHeader_LaterKeyWins(t *testing.T) {
	got := ParseHeader("title: one\ntitle: two")
	if v, _ := got.Text("title"); v != "two" {
		t.Errorf("title = %q, want two", v)
	}
}

func TestParseHeader_CRLF(t *testing.T) {
	got := ParseHeader("title: crlf\r\ntags: [a, b]\r")
	if v, _ := got.Text("title"); v != "crlf" {
		t.Errorf("title = %q", v)
	}
	if l, ok := got.List("tags"); !ok || !reflect.DeepEqual(l, []string{"a", "b"}) {
		t.Errorf("tags = %v", l)
	}
}

func TestParseHeader_Total(t *testing.T) {
	for _, in := range []string{"", "\n\n", ":::", "[", "\x00"} {
		if got := ParseHeader(in); got == nil {
			t.Errorf("ParseHeader(%q) returned nil", in)
		}
	}
}

func TestParseFilename_Match(t *testing.T) {
	d, err := ParseFilename("2020-01-15-hello-world.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.FilenameDerived{Year: "2020", Month: "01", Day: "15", Slug: "hello-world"}
	if d != want {
		t.Errorf("derived = %+v, want %+v", d, want)
	}
	if got := PubDate(d).Format("2006-01-02"); got != "2020-01-15" {
		t.Errorf("pub date = %s", got)
	}
}

func TestParseFilename_SlugVerbatim(t *testing.T) {
	d, err := ParseFilename("2019-12-31-Some Post.v2.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Slug != "Some Post.v2" {
		t.Errorf("slug = %q", d.Slug)
	}
}

func TestParseFilename_Rejects(t *testing.T) {
	cases := []string{
		"notes.md",
		"2020-01-15.md",
		"2020-01-15-.md",
		"2020-1-15-x.md",
		"x2020-01-15-x.md",
		"2020-01-15-x.markdown",
		"2020-01-15-x.md.bak",
		"2020-13-45-bad-date.md",
	}
	for _, c := range cases {
		_, err := ParseFilename(c)
		if !errors.Is(err, apperr.ErrInvalidFilename) {
			t.Errorf("ParseFilename(%q) err = %v, want ErrInvalidFilename", c, err)
		}
	}
}

func TestRewriteHighlights(t *testing.T) {
	in := "{% highlight python %}\nprint(1)\n{% endhighlight %}\n{%highlight go%}x{%endhighlight%}"
	want := "```python\nprint(1)\n```\n```gox```"
	if got := RewriteHighlights(in); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestRewriteHighlights_Unpaired(t *testing.T) {
	in := "{% endhighlight %}\ntext\n{% highlight ruby %}"
	want := "```\ntext\n```ruby"
	if got := RewriteHighlights(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteHighlights_LeavesOtherTags(t *testing.T) {
	in := "{% highlight ruby linenos %}\n{% include foo.html %}"
	if got := RewriteHighlights(in); got != in {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestRewriteHighlights_Idempotent(t *testing.T) {
	once := RewriteHighlights("a\n{% highlight js %}\nx\n{% endhighlight %}\n")
	if twice := RewriteHighlights(once); twice != once {
		t.Errorf("second pass changed text: %q -> %q", once, twice)
	}
}

func TestTransformBody(t *testing.T) {
	got, err := TransformBody("---\ntitle: a\n---\nBody.\n{% highlight sh %}\nls\n{% endhighlight %}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Body.\n```sh\nls\n```\n" {
		t.Errorf("body = %q", got)
	}
}

func TestFindHeader_TrailingSpaceOnDelimiter(t *testing.T) {
	for _, text := range []string{
		"---\ntitle: x\n--- \nbody\n",
		"--- \ntitle: x\n---\nbody\n",
	} {
		if _, ok := FindHeader(text); ok {
			t.Errorf("expected no header for %q", text)
		}
	}
}
