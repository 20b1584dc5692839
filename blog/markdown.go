package blog

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// on error, fall back to the raw content
		return content
	}
	return buf.String()
}

var htmlTag = regexp.MustCompile(`<.*?>`)

func cleanHTML(raw string) string {
	return htmlTag.ReplaceAllString(raw, "")
}

// excerpt is the first 128 plain-text characters of the rendered body.
func excerpt(body string) string {
	text := cleanHTML(renderMarkdown(body))
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 128 {
		text = text[:128]
	}
	return text
}

// estimateReadingMinutes assumes roughly 200 words per minute and
// never reports less than one minute for a non-empty body.
func estimateReadingMinutes(body string) int {
	words := len(strings.Fields(cleanHTML(body)))
	if words == 0 {
		return 0
	}
	minutes := words / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
