package richtext

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eringen/bedrock/content"
)

const origin = "https://cms.example"

func doc(blocks ...content.Block) *content.Document {
	return &content.Document{Blocks: blocks}
}

func para(children ...content.Inline) content.Paragraph {
	return content.Paragraph{Children: children}
}

func TestRenderEmpty(t *testing.T) {
	tests := []struct {
		name string
		doc  *content.Document
	}{
		{"nil", nil},
		{"no blocks", &content.Document{}},
	}
	for _, tt := range tests {
		if got := Render(tt.doc, origin); got != Empty {
			t.Errorf("%s: Render() = %q, want %q", tt.name, got, Empty)
		}
	}
	if Empty != "<p>No content available</p>" {
		t.Errorf("Empty = %q", Empty)
	}
}

func TestRenderTextFormats(t *testing.T) {
	tests := []struct {
		run      content.TextRun
		expected string
	}{
		{content.TextRun{Text: "hi", Format: content.FormatBold}, "<p><strong>hi</strong></p>"},
		{content.TextRun{Text: "hi", Format: content.FormatItalic}, "<p><em>hi</em></p>"},
		{content.TextRun{Text: "hi", Format: content.FormatBoldItalic}, "<p><strong><em>hi</em></strong></p>"},
		{content.TextRun{Text: "hi"}, "<p>hi</p>"},
		{content.TextRun{Text: "", Format: content.FormatBold}, "<p></p>"},
	}
	for _, tt := range tests {
		got := Render(doc(para(tt.run)), origin)
		if got != tt.expected {
			t.Errorf("Render(%+v) = %q, want %q", tt.run, got, tt.expected)
		}
	}
}

func TestRenderParagraphConcatenatesInOrder(t *testing.T) {
	d := doc(para(
		content.TextRun{Text: "a "},
		content.TextRun{Text: "b", Format: content.FormatBold},
		content.UnknownInline{Type: "linebreak"},
		content.TextRun{Text: " c"},
	))
	want := "<p>a <strong>b</strong> c</p>"
	if got := Render(d, origin); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderEscapesText(t *testing.T) {
	d := doc(para(content.TextRun{Text: `<script>alert("x")</script>`}))
	got := Render(d, origin)
	if strings.Contains(got, "<script>") {
		t.Errorf("Render() = %q, should escape markup", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Render() = %q, want escaped script tag", got)
	}
}

func TestRenderLinks(t *testing.T) {
	tests := []struct {
		name     string
		link     content.Link
		expected string
	}{
		{
			"flat text ignores formats",
			content.Link{URL: "https://example.com", Children: []content.TextRun{
				{Text: "read ", Format: content.FormatBold},
				{Text: "more", Format: content.FormatItalic},
			}},
			`<p><a href="https://example.com">read more</a></p>`,
		},
		{
			"new tab",
			content.Link{URL: "https://example.com", NewTab: true, Children: []content.TextRun{{Text: "x"}}},
			`<p><a href="https://example.com" target="_blank" rel="noopener noreferrer">x</a></p>`,
		},
		{
			"missing url",
			content.Link{Children: []content.TextRun{{Text: "x"}}},
			`<p><a href="#">x</a></p>`,
		},
		{
			"unsafe scheme",
			content.Link{URL: "javascript:alert(1)", Children: []content.TextRun{{Text: "x"}}},
			`<p><a href="#">x</a></p>`,
		},
		{
			"relative path",
			content.Link{URL: "/article/a-b", Children: []content.TextRun{{Text: "x"}}},
			`<p><a href="/article/a-b">x</a></p>`,
		},
		{
			"relative reference",
			content.Link{URL: "page.html", Children: []content.TextRun{{Text: "x"}}},
			`<p><a href="page.html">x</a></p>`,
		},
	}
	for _, tt := range tests {
		if got := Render(doc(para(tt.link)), origin); got != tt.expected {
			t.Errorf("%s: Render() = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		heading  content.Heading
		expected string
	}{
		{
			content.Heading{Tag: "h3", Children: []content.Inline{content.TextRun{Text: "Title"}}},
			`<h3 class="font-bold">Title</h3>`,
		},
		{
			content.Heading{Children: []content.Inline{content.TextRun{Text: "Default"}}},
			`<h2 class="font-bold">Default</h2>`,
		},
		{
			content.Heading{Tag: "h9", Children: []content.Inline{content.TextRun{Text: "Bad"}}},
			`<h2 class="font-bold">Bad</h2>`,
		},
		{
			content.Heading{Tag: "h4", Children: []content.Inline{
				content.TextRun{Text: "Never ", Format: content.FormatBold},
				content.TextRun{Text: "double", Format: content.FormatBoldItalic},
			}},
			`<h4 class="font-bold">Never double</h4>`,
		},
	}
	for _, tt := range tests {
		got := Render(doc(tt.heading), origin)
		if got != tt.expected {
			t.Errorf("Render(%+v) = %q, want %q", tt.heading, got, tt.expected)
		}
		if strings.Contains(got, "<strong>") {
			t.Errorf("heading should not be double-bolded: %q", got)
		}
	}
}

func TestRenderHorizontalRule(t *testing.T) {
	got := Render(doc(content.HorizontalRule{}), origin)
	if !strings.HasPrefix(got, "<hr") || !strings.HasSuffix(got, "/>") {
		t.Errorf("Render(hr) = %q, want self-closing rule", got)
	}
}

func TestRenderMedia(t *testing.T) {
	withCaption := Render(doc(content.MediaBlock{Media: content.Media{
		URL: "/api/media/file/a.png", Alt: "A", Caption: "A caption",
	}}), origin)
	if !strings.HasPrefix(withCaption, "<figure") || !strings.HasSuffix(withCaption, "</figure>") {
		t.Errorf("media should render a figure: %q", withCaption)
	}
	if !strings.Contains(withCaption, `src="https://cms.example/api/media/file/a.png"`) {
		t.Errorf("media src should resolve against origin: %q", withCaption)
	}
	if !strings.Contains(withCaption, `alt="A"`) {
		t.Errorf("media should carry alt text: %q", withCaption)
	}
	if !strings.Contains(withCaption, ">A caption</figcaption>") {
		t.Errorf("media should carry caption: %q", withCaption)
	}

	noCaption := Render(doc(content.MediaBlock{Media: content.Media{URL: "https://cdn.example/b.png"}}), origin)
	if strings.Contains(noCaption, "figcaption") {
		t.Errorf("media without caption should not have figcaption: %q", noCaption)
	}
	if !strings.Contains(noCaption, `src="https://cdn.example/b.png"`) || !strings.Contains(noCaption, `alt=""`) {
		t.Errorf("absolute src and empty alt expected: %q", noCaption)
	}

	relative := Render(doc(content.MediaBlock{Media: content.Media{URL: "media/x.png", Alt: "x"}}), origin)
	if !strings.HasPrefix(relative, "<figure") || !strings.Contains(relative, `src="media/x.png"`) {
		t.Errorf("relative media should render a figure: %q", relative)
	}

	noURL := Render(doc(content.MediaBlock{Media: content.Media{Alt: "x", Caption: "y"}}, para(content.TextRun{Text: "after"})), origin)
	if noURL != "<p>after</p>" {
		t.Errorf("media without url should render nothing, got %q", noURL)
	}
}

func TestRenderSkipsUnknownBlocks(t *testing.T) {
	d := doc(
		para(content.TextRun{Text: "one"}),
		content.UnknownBlock{Type: "quote"},
		para(content.TextRun{Text: "two"}),
	)
	want := "<p>one</p><p>two</p>"
	if got := Render(d, origin); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderOnlyUnknownBlocks(t *testing.T) {
	d := doc(content.UnknownBlock{Type: "quote"})
	if got := Render(d, origin); got != "" {
		t.Errorf("Render() = %q, want empty string", got)
	}
}

func TestComponentMatchesRender(t *testing.T) {
	d := doc(para(content.TextRun{Text: "hi", Format: content.FormatBold}), content.HorizontalRule{})
	var buf bytes.Buffer
	if err := Component(d, origin).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Component.Render: %v", err)
	}
	if buf.String() != Render(d, origin) {
		t.Errorf("Component output %q differs from Render %q", buf.String(), Render(d, origin))
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/a?b=1&c=2", "https://example.com/a?b=1&amp;c=2"},
		{"/relative", "/relative"},
		{"#anchor", "#anchor"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"data:text/html,x", ""},
		{"page.html", "page.html"},
		{"?page=2&sort=new", "?page=2&amp;sort=new"},
		{"media/x.png", "media/x.png"},
		{"vbscript:msgbox", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
