package utils

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

func init() {
	// Force links to open in new tab
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts review text to sanitized HTML ready to be stored
// and served as-is.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		// Fallback: escape everything
		return html.EscapeString(source)
	}
	return strings.TrimSpace(policy.Sanitize(buf.String()))
}

// SanitizeText strips every tag from user text and returns plain text.
// The strict policy entity-escapes what remains, so the result is unescaped
// once: "Tom & Jerry" stays "Tom & Jerry" and never grows past the input.
func SanitizeText(source string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(source)))
}

// IsBlank reports whether s has no visible characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
