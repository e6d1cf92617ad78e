package utils

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	// strict strips every tag; stored comment content is plain text.
	strict = bluemonday.StrictPolicy()
	// ugc guards the rendered markdown
	ugc = bluemonday.UGCPolicy()
)

func init() {
	ugc.AddTargetBlankToFullyQualifiedLinks(true)
	ugc.RequireNoReferrerOnLinks(true)
}

// Sanitize strips markup from user supplied text and escapes what is left.
func Sanitize(s string) string {
	return strict.Sanitize(s)
}

// CleanContent trims then sanitizes comment content.
func CleanContent(s string) string {
	return strings.TrimSpace(Sanitize(strings.TrimSpace(s)))
}

// RenderMarkdown renders a sanitized comment body for display.
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return EnhanceHTMLContent(string(ugc.SanitizeBytes(buf.Bytes())))
}
