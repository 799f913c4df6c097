// Package content holds the typed CMS content model (posts, media, the
// rich-text document tree) and the field resolution rules every view uses
// to pick one value out of the CMS's overlapping optional fields.
package content

import (
	"bytes"
	"encoding/json"
	"time"
)

// ID is a CMS document identifier. The CMS emits numeric IDs for SQL
// backends and string IDs for document stores, so both are accepted.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Post is a published article as returned by the CMS posts collection.
type Post struct {
	ID          ID        `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`

	Image     *Media     `json:"image,omitempty"`
	HeroImage *HeroImage `json:"heroImage,omitempty"`

	Categories []CategoryRef `json:"categories,omitempty"`
	Category   *CategoryRef  `json:"category,omitempty"`

	PopulatedAuthors []AuthorRef `json:"populatedAuthors,omitempty"`
	Authors          []AuthorRef `json:"authors,omitempty"`
	Author           *AuthorRef  `json:"author,omitempty"`

	Content *Document `json:"content,omitempty"`
}

// UnmarshalJSON decodes a post, tolerating empty or malformed publish dates.
func (p *Post) UnmarshalJSON(b []byte) error {
	type alias Post
	aux := struct {
		*alias
		PublishedAt string `json:"publishedAt"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, aux.PublishedAt); err == nil {
			p.PublishedAt = t
		}
	}
	return nil
}

// Media is an uploaded file from the media collection.
type Media struct {
	ID      ID     `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// UnmarshalJSON accepts a populated media object or a bare ID. Captions
// stored as rich text are dropped; only plain string captions are kept.
func (m *Media) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		var id ID
		if err := id.UnmarshalJSON(b); err != nil {
			return err
		}
		*m = Media{ID: id}
		return nil
	}
	var aux struct {
		ID      ID              `json:"id"`
		URL     string          `json:"url"`
		Alt     string          `json:"alt"`
		Caption json.RawMessage `json:"caption"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = Media{ID: aux.ID, URL: aux.URL, Alt: aux.Alt}
	if len(aux.Caption) > 0 && aux.Caption[0] == '"' {
		_ = json.Unmarshal(aux.Caption, &m.Caption)
	}
	return nil
}

// HeroImage is a media upload with pre-rendered size variants keyed by
// size name ("thumbnail", "small", "medium", "large", "xlarge", "og").
type HeroImage struct {
	ID    ID                   `json:"id,omitempty"`
	URL   string               `json:"url,omitempty"`
	Alt   string               `json:"alt,omitempty"`
	Sizes map[string]ImageSize `json:"sizes,omitempty"`
}

func (h *HeroImage) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		var id ID
		if err := id.UnmarshalJSON(b); err != nil {
			return err
		}
		*h = HeroImage{ID: id}
		return nil
	}
	type alias HeroImage
	var aux alias
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*h = HeroImage(aux)
	return nil
}

// ImageSize is one resized variant of an upload.
type ImageSize struct {
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// CategoryRef is a category relation. Title is the current field; Name is
// the legacy one still present on older records.
type CategoryRef struct {
	ID    ID     `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
	Slug  string `json:"slug,omitempty"`
}

func (c *CategoryRef) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		var id ID
		if err := id.UnmarshalJSON(b); err != nil {
			return err
		}
		*c = CategoryRef{ID: id}
		return nil
	}
	type alias CategoryRef
	var aux alias
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = CategoryRef(aux)
	return nil
}

// AuthorRef is an author relation.
type AuthorRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (a *AuthorRef) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		var id ID
		if err := id.UnmarshalJSON(b); err != nil {
			return err
		}
		*a = AuthorRef{ID: id}
		return nil
	}
	type alias AuthorRef
	var aux alias
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*a = AuthorRef(aux)
	return nil
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
