// Package render converts page markdown into complete HTML documents.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Generator is written into the generator meta tag of every page.
const Generator = "ztk"

// Renderer turns one page of markdown into a full document. Implementations
// must be safe for concurrent use.
type Renderer interface {
	Render(markdown, title, styleHref string) ([]byte, error)
	// Extension is the file extension of rendered pages, without the dot.
	Extension() string
}

// Options controls the goldmark engine.
type Options struct {
	// SafeMode drops raw HTML from the output. Listings rely on <small>, so
	// it is off by default.
	SafeMode  bool
	HardWraps bool
}

// Goldmark renders pages with the goldmark engine.
// It holds no per-call state.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds a renderer with permissive autolinks and strikethrough.
func NewGoldmark(opts Options) *Goldmark {
	rendererOptions := []renderer.Option{}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, gmhtml.WithUnsafe())
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Goldmark{md: md}
}

// Extension implements Renderer.
func (g *Goldmark) Extension() string {
	return "html"
}

// Render implements Renderer.
func (g *Goldmark) Render(markdown, title, styleHref string) ([]byte, error) {
	var body bytes.Buffer
	if err := g.md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("render: convert: %w", err)
	}
	return Document(bytes.TrimSpace(body.Bytes()), title, styleHref), nil
}

// Document wraps an HTML fragment with the fixed page header.
func Document(body []byte, title, styleHref string) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<meta name=\"generator\" content=\"%s\">\n", Generator)
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	if styleHref != "" {
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\">\n", html.EscapeString(styleHref))
	}
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.Bytes()
}
