// Package markdown renders mail bodies written in Markdown to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer is stateless and safe to share.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer uses GFM with hard wraps so that single newlines in a mail body
// stay line breaks. Raw HTML in the source is escaped.
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// ToHTML converts Markdown source into an HTML fragment.
func (r *Renderer) ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

// Document wraps the fragment in a minimal HTML document suitable for mail clients.
func (r *Renderer) Document(source string) (string, error) {
	body, err := r.ToHTML(source)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n" + body + "</body></html>\n", nil
}
