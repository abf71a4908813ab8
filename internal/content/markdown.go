package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdown indicates a body could not be converted to HTML.
var ErrMarkdown = errors.New("markdown conversion failed")

// Converter turns a Markdown body into HTML.
type Converter interface {
	Convert(src []byte) (template.HTML, error)
}

// GoldmarkConverter converts Markdown with goldmark (GFM dialect).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter. A non-empty style enables
// chroma highlighting of fenced code blocks with inline styles.
func NewGoldmarkConverter(style string) *GoldmarkConverter {
	exts := []goldmark.Extender{extension.GFM}
	if style != "" {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(false),
			),
		))
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Authors embed raw HTML in posts; pass it through.
			gmhtml.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// Convert implements Converter.
func (c *GoldmarkConverter) Convert(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkdown, err)
	}
	// #nosec G203 -- body is author-controlled site content
	return template.HTML(buf.String()), nil
}
