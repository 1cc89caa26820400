package mcpserver

// FormatContract describes the legacy input and canonical output formats so
// LLM clients know what convert_post accepts and returns.
const FormatContract = `# Post Format Contract

## Input: legacy Jekyll post

- Filename MUST be ` + "`" + `YYYY-MM-DD-slug.md` + "`" + `. Other names are skipped with
  "invalid filename format". The date must be a real calendar date.
- The file MUST start with a header block: a ` + "`" + `---` + "`" + ` line, one or more
  ` + "`" + `key: value` + "`" + ` lines, and a closing ` + "`" + `---` + "`" + ` line. Without it the post is
  skipped with "no frontmatter found".
- Header values are read line by line, not as general YAML:
  - ` + "`" + `[a, b]` + "`" + ` is a list;
  - ` + "`" + `"text"` + "`" + ` is text with the quotes removed;
  - anything else is taken as trimmed text.
  Lines that do not look like ` + "`" + `key: value` + "`" + ` are ignored. Only ` + "`" + `title` + "`" + `,
  ` + "`" + `description` + "`" + ` and ` + "`" + `tags` + "`" + ` are carried over.
- Code blocks written as ` + "`" + `{% highlight lang %}` + "`" + ` ... ` + "`" + `{% endhighlight %}` + "`" + ` become
  fenced code blocks. Other ` + "`" + `{% ... %}` + "`" + ` tags are left untouched.

## Output: canonical post

` + "```" + `markdown
---
title: Hello, World
description:
pubDate: 2020-01-15
tags: [intro, meta]
---
Body text.
` + "```" + `

1. Fields appear in the order title, description, pubDate, tags.
2. ` + "`" + `title` + "`" + ` and ` + "`" + `description` + "`" + ` are always present; a missing value is empty.
   Values containing ` + "`" + `:` + "`" + ` are wrapped in double quotes.
3. ` + "`" + `pubDate` + "`" + ` comes from the filename, never from the header.
4. ` + "`" + `tags` + "`" + ` is omitted when there are none. A tags value that is not a
   bracketed list is dropped.
5. The body follows the closing ` + "`" + `---` + "`" + ` line unchanged except for the
   highlight rewrite.
`
