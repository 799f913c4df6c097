// Package richtext renders a content.Document to HTML, as a string or as a
// templ component.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/bedrock/content"
)

// Empty is the output for a missing or empty document.
const Empty = "<p>No content available</p>"

const (
	headingClass    = "font-bold"
	ruleHTML        = `<hr class="my-8 border-[#333333]"/>`
	figureClass     = "my-6 sm:my-8"
	figcaptionClass = "mt-2 text-sm text-[#8d8d8d]"
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Component returns a templ.Component that writes the rendered document.
// Media paths under /api are resolved against origin.
func Component(doc *content.Document, origin string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Write(&buf, doc, origin)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render returns the HTML for doc.
func Render(doc *content.Document, origin string) string {
	var buf bytes.Buffer
	Write(&buf, doc, origin)
	return buf.String()
}

// Write writes the HTML for doc to buf. Blocks keep their stored order;
// unknown block and inline kinds write nothing. Text is HTML-escaped and
// URLs with unsafe schemes are neutralized.
func Write(buf *bytes.Buffer, doc *content.Document, origin string) {
	if doc == nil || len(doc.Blocks) == 0 {
		buf.WriteString(Empty)
		return
	}
	for _, b := range doc.Blocks {
		writeBlock(buf, b, origin)
	}
}

func writeBlock(buf *bytes.Buffer, b content.Block, origin string) {
	switch b := b.(type) {
	case content.Paragraph:
		buf.WriteString("<p>")
		for _, in := range b.Children {
			writeInline(buf, in)
		}
		buf.WriteString("</p>")
	case content.Heading:
		tag := b.Tag
		if !headingTags[tag] {
			tag = "h2"
		}
		buf.WriteString("<" + tag + ` class="` + headingClass + `">`)
		// Heading styling comes from the tag; run formats are not applied.
		for _, in := range b.Children {
			if run, ok := in.(content.TextRun); ok {
				buf.WriteString(html.EscapeString(run.Text))
			}
		}
		buf.WriteString("</" + tag + ">")
	case content.HorizontalRule:
		buf.WriteString(ruleHTML)
	case content.MediaBlock:
		writeMedia(buf, b.Media, origin)
	case content.UnknownBlock:
	}
}

func writeInline(buf *bytes.Buffer, in content.Inline) {
	switch in := in.(type) {
	case content.TextRun:
		writeText(buf, in)
	case content.Link:
		href := SafeURL(in.URL)
		if href == "" {
			href = "#"
		}
		buf.WriteString(`<a href="` + href + `"`)
		if in.NewTab {
			buf.WriteString(` target="_blank" rel="noopener noreferrer"`)
		}
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(in.Text()))
		buf.WriteString("</a>")
	case content.UnknownInline:
	}
}

func writeText(buf *bytes.Buffer, run content.TextRun) {
	if run.Text == "" {
		return
	}
	text := html.EscapeString(run.Text)
	switch run.Format {
	case content.FormatBold:
		buf.WriteString("<strong>" + text + "</strong>")
	case content.FormatItalic:
		buf.WriteString("<em>" + text + "</em>")
	case content.FormatBoldItalic:
		buf.WriteString("<strong><em>" + text + "</em></strong>")
	default:
		buf.WriteString(text)
	}
}

func writeMedia(buf *bytes.Buffer, m content.Media, origin string) {
	if m.URL == "" {
		return
	}
	src := SafeURL(content.ResolveFullURL(m.URL, origin))
	if src == "" {
		return
	}
	buf.WriteString(`<figure class="` + figureClass + `">`)
	buf.WriteString(`<img src="` + src + `" alt="` + html.EscapeString(m.Alt) + `" loading="lazy" decoding="async"/>`)
	if m.Caption != "" {
		buf.WriteString(`<figcaption class="` + figcaptionClass + `">`)
		buf.WriteString(html.EscapeString(m.Caption))
		buf.WriteString("</figcaption>")
	}
	buf.WriteString("</figure>")
}

// SafeURL returns raw escaped for use in an HTML attribute, or "" when it is
// empty, unparseable or uses a scheme other than http, https, mailto or tel.
// Relative references are kept.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		return html.EscapeString(val)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
