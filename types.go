package bedrock

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/bedrock/cms"
	"github.com/eringen/bedrock/content"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = cms.ErrNotFound

// CMS is the content source the site renders. *cms.Client implements it.
type CMS interface {
	Origin() string
	ListPosts(ctx context.Context, opts cms.ListOptions) (cms.PostList, error)
	PostBySlug(ctx context.Context, slug string) (content.Post, error)
	SearchPosts(ctx context.Context, query string, limit int) (cms.PostList, error)
	ListCategories(ctx context.Context) ([]content.CategoryRef, error)
	Subscribe(ctx context.Context, req cms.SubscribeRequest) (json.RawMessage, error)
	FetchMedia(ctx context.Context, rawURL string) (io.ReadCloser, string, error)
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // absolute og:image URL
	JSONLD      string
}

// Page is the data every view receives.
type Page struct {
	Meta      PageMeta
	Site      SiteConfig
	CMSOrigin string
	Flash     string
	CSRFToken string
	Path      string
}

// HomeData drives the homepage and section pages.
type HomeData struct {
	Page
	Hero           *content.Post
	Posts          []content.Post
	Categories     []content.CategoryRef
	ActiveCategory string // category slug, "all" when unfiltered
}

// ArticleData drives the article page.
type ArticleData struct {
	Page
	Post    content.Post
	Fields  content.Fields
	Body    templ.Component
	Related []content.Post
}

// SearchData drives the search results page.
type SearchData struct {
	Page
	Query   string
	Results []content.Post
	Error   string
}

// SearchResult is one entry of the JSON search endpoint: a post reduced to
// its resolved display fields.
type SearchResult struct {
	ID          content.ID `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"publishedAt"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	Authors     []string   `json:"authors"`
	Excerpt     string     `json:"excerpt"`
}
