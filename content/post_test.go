package content

import (
	"encoding/json"
	"testing"
	"time"
)

const samplePost = `{
  "id": 42,
  "slug": "mars-starships",
  "title": "What Can We Send to Mars on the First Starships?",
  "description": "Everything we need to build the first base.",
  "publishedAt": "2025-03-03T12:00:00.000Z",
  "heroImage": {
    "id": "abc",
    "url": "/api/media/file/mars.png",
    "sizes": {"medium": {"url": "/api/media/file/mars-600.png", "width": 600, "height": 400}}
  },
  "categories": [{"id": 3, "title": "Consumer", "slug": "consumer"}, 4],
  "authors": [9],
  "populatedAuthors": [{"id": 9, "name": "Jihad"}],
  "content": {
    "root": {
      "type": "root",
      "children": [
        {"type": "paragraph", "format": "", "children": [
          {"type": "text", "text": "Hello ", "format": 0},
          {"type": "text", "text": "world", "format": 3},
          {"type": "linebreak"},
          {"type": "link", "fields": {"url": "https://example.com", "newTab": true}, "children": [
            {"type": "text", "text": "read", "format": 1}
          ]}
        ]},
        {"type": "heading", "tag": "h3", "children": [{"type": "text", "text": "Title", "format": 1}]},
        {"type": "horizontalrule"},
        {"type": "upload", "value": {"url": "/api/media/file/a.png", "alt": "A", "caption": "Cap"}},
        {"type": "block", "fields": {"blockType": "mediaBlock", "media": {"url": "/b.png"}}},
        {"type": "block", "fields": {"blockType": "code"}},
        {"type": "quote", "children": []}
      ]
    }
  }
}`

func TestPostUnmarshal(t *testing.T) {
	var p Post
	if err := json.Unmarshal([]byte(samplePost), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "42" {
		t.Errorf("ID = %q, want %q", p.ID, "42")
	}
	want := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	if !p.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", p.PublishedAt, want)
	}
	if p.HeroImage == nil || p.HeroImage.Sizes["medium"].Width != 600 {
		t.Errorf("HeroImage = %+v, want medium size decoded", p.HeroImage)
	}
	if len(p.Categories) != 2 || p.Categories[0].Slug != "consumer" || p.Categories[1].ID != "4" {
		t.Errorf("Categories = %+v", p.Categories)
	}
	if len(p.Authors) != 1 || p.Authors[0].ID != "9" || p.Authors[0].Name != "" {
		t.Errorf("Authors = %+v", p.Authors)
	}
	if p.Content == nil {
		t.Fatal("Content is nil")
	}

	blocks := p.Content.Blocks
	if len(blocks) != 7 {
		t.Fatalf("len(Blocks) = %d, want 7", len(blocks))
	}
	para, ok := blocks[0].(Paragraph)
	if !ok {
		t.Fatalf("Blocks[0] = %T, want Paragraph", blocks[0])
	}
	if len(para.Children) != 4 {
		t.Fatalf("len(Paragraph.Children) = %d, want 4", len(para.Children))
	}
	if run := para.Children[1].(TextRun); run.Format != FormatBoldItalic {
		t.Errorf("Format = %d, want FormatBoldItalic", run.Format)
	}
	if _, ok := para.Children[2].(UnknownInline); !ok {
		t.Errorf("Children[2] = %T, want UnknownInline", para.Children[2])
	}
	link := para.Children[3].(Link)
	if link.URL != "https://example.com" || !link.NewTab || link.Text() != "read" {
		t.Errorf("Link = %+v", link)
	}
	if h := blocks[1].(Heading); h.Tag != "h3" {
		t.Errorf("Heading.Tag = %q, want h3", h.Tag)
	}
	if _, ok := blocks[2].(HorizontalRule); !ok {
		t.Errorf("Blocks[2] = %T, want HorizontalRule", blocks[2])
	}
	if m := blocks[3].(MediaBlock); m.Media.Caption != "Cap" || m.Media.Alt != "A" {
		t.Errorf("MediaBlock = %+v", m)
	}
	if m := blocks[4].(MediaBlock); m.Media.URL != "/b.png" {
		t.Errorf("mediaBlock = %+v", m)
	}
	if u := blocks[5].(UnknownBlock); u.Type != "block" {
		t.Errorf("Blocks[5] = %+v, want UnknownBlock{block}", u)
	}
	if u := blocks[6].(UnknownBlock); u.Type != "quote" {
		t.Errorf("Blocks[6] = %+v, want UnknownBlock{quote}", u)
	}
}

func TestPostUnmarshalTolerant(t *testing.T) {
	var p Post
	in := `{"id":"x1","slug":"s","publishedAt":"","image":7,"heroImage":null,"category":"12","author":{"name":"Ken"},"content":{"root":{"children":[42,{"type":"paragraph"}]}}}`
	if err := json.Unmarshal([]byte(in), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.PublishedAt.IsZero() {
		t.Errorf("PublishedAt = %v, want zero", p.PublishedAt)
	}
	if p.Image == nil || p.Image.ID != "7" || p.Image.URL != "" {
		t.Errorf("Image = %+v, want bare ID", p.Image)
	}
	if p.HeroImage != nil {
		t.Errorf("HeroImage = %+v, want nil", p.HeroImage)
	}
	if p.Category == nil || p.Category.ID != "12" {
		t.Errorf("Category = %+v", p.Category)
	}
	if len(p.Content.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(p.Content.Blocks))
	}
	if _, ok := p.Content.Blocks[0].(UnknownBlock); !ok {
		t.Errorf("Blocks[0] = %T, want UnknownBlock", p.Content.Blocks[0])
	}
}

func TestPostUnmarshalContentWrongShape(t *testing.T) {
	for _, content := range []string{`"<p>legacy html</p>"`, `[1,2]`, `{"root":"x"}`, `{"root":{"children":5}}`} {
		var p Post
		in := `{"id":"x1","slug":"s","title":"T","content":` + content + `}`
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("content %s: unmarshal: %v", content, err)
		}
		if p.Slug != "s" || p.Title != "T" {
			t.Errorf("content %s: post fields lost: %+v", content, p)
		}
		if p.Content == nil || len(p.Content.Blocks) != 0 {
			t.Errorf("content %s: Content = %+v, want empty document", content, p.Content)
		}
	}
}

func TestDocumentWithoutRoot(t *testing.T) {
	var d Document
	if err := json.Unmarshal([]byte(`{}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(d.Blocks) != 0 {
		t.Errorf("len(Blocks) = %d, want 0", len(d.Blocks))
	}
}
