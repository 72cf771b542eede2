// Package markdown renders analysis reports to HTML for the results page.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

type Renderer interface {
	Render(src string) (template.HTML, error)
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a GFM renderer. Raw HTML embedded in the report is
// omitted from the output.
func NewRenderer() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return &goldmarkRenderer{md: md}
}

func (r *goldmarkRenderer) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
