package markdown

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// A Renderer converts Markdown documents into HTML.
// Raw HTML embedded in documents is omitted from the output.
type Renderer struct {
	engine goldmark.Markdown
}

// New returns a Renderer supporting GitHub Flavored Markdown.
func New(hardWraps bool) *Renderer {
	var options []renderer.Option
	if hardWraps {
		options = append(options, html.WithHardWraps())
	}
	options = append(options, html.WithXHTML())

	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(options...),
		),
	}
}

// Render returns the HTML of the given Markdown document.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Wrap(err, "could not render markdown")
	}
	return buf.String(), nil
}
