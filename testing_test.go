package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/eringen/bedrock/cms"
	"github.com/eringen/bedrock/content"
)

// stubCMS is an in-memory CMS.
type stubCMS struct {
	mu         sync.Mutex
	posts      []content.Post
	categories []content.CategoryRef
	media      map[string][]byte

	listErr       error
	categoriesErr error
	fetchErr      error
	searchErr     error
	subscribeErr  error
	subscribed    []cms.SubscribeRequest

	listCalls   int
	slugCalls   int
	searchLimit int
}

func (s *stubCMS) Origin() string { return "https://cms.example.com" }

func (s *stubCMS) ListPosts(_ context.Context, _ cms.ListOptions) (cms.PostList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return cms.PostList{}, s.listErr
	}
	return cms.PostList{Docs: s.posts, TotalDocs: len(s.posts)}, nil
}

func (s *stubCMS) PostBySlug(_ context.Context, slug string) (content.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slugCalls++
	for _, p := range s.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return content.Post{}, cms.ErrNotFound
}

func (s *stubCMS) SearchPosts(_ context.Context, query string, limit int) (cms.PostList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchLimit = limit
	if s.searchErr != nil {
		return cms.PostList{}, s.searchErr
	}
	docs := []content.Post{}
	for _, p := range s.posts {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			docs = append(docs, p)
		}
	}
	return cms.PostList{Docs: docs, TotalDocs: len(docs)}, nil
}

func (s *stubCMS) ListCategories(_ context.Context) ([]content.CategoryRef, error) {
	if s.categoriesErr != nil {
		return nil, s.categoriesErr
	}
	return s.categories, nil
}

func (s *stubCMS) Subscribe(_ context.Context, req cms.SubscribeRequest) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	s.subscribed = append(s.subscribed, req)
	return json.RawMessage(`{"message":"Welcome aboard!","email":"` + req.Email + `"}`), nil
}

func (s *stubCMS) FetchMedia(_ context.Context, rawURL string) (io.ReadCloser, string, error) {
	if s.fetchErr != nil {
		return nil, "", s.fetchErr
	}
	b, ok := s.media[rawURL]
	if !ok {
		return nil, "", cms.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), "image/png", nil
}

func text(format string, args ...interface{}) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

// stubViews renders a one-line summary of the data each view receives.
func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func(d HomeData) templ.Component {
			hero := ""
			if d.Hero != nil {
				hero = d.Hero.Slug
			}
			slugs := make([]string, 0, len(d.Posts))
			for _, p := range d.Posts {
				slugs = append(slugs, p.Slug)
			}
			return text("home hero=%s posts=%s active=%s flash=%s", hero, strings.Join(slugs, ","), d.ActiveCategory, d.Flash)
		},
		Article: func(d ArticleData) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				fmt.Fprintf(w, "article %s category=%s related=%d og=%s body=", d.Post.Slug, d.Fields.Category, len(d.Related), d.Meta.Image)
				return d.Body.Render(ctx, w)
			})
		},
		Search: func(d SearchData) templ.Component {
			return text("search q=%s results=%d error=%s", d.Query, len(d.Results), d.Error)
		},
		NotFound:    func(p Page) templ.Component { return text("not found") },
		ServerError: func(p Page) templ.Component { return text("server error") },
	}
}

func samplePosts() []content.Post {
	day := func(d int) time.Time { return time.Date(2024, time.May, d, 9, 0, 0, 0, time.UTC) }
	onchain := content.CategoryRef{Slug: "onchain", Title: "Onchain"}
	builders := content.CategoryRef{Slug: "builders", Title: "Builders"}
	return []content.Post{
		{ID: "1", Slug: "mars", Title: "Mars Base", PublishedAt: day(5), Categories: []content.CategoryRef{onchain},
			HeroImage: &content.HeroImage{URL: "/api/media/file/mars.png"},
			Content: &content.Document{Blocks: []content.Block{
				content.Paragraph{Children: []content.Inline{content.TextRun{Text: "Red dust", Format: content.FormatBold}}},
			}}},
		{ID: "2", Slug: "venus", Title: "Venus Clouds", PublishedAt: day(4), Categories: []content.CategoryRef{builders}},
		{ID: "3", Slug: "moon", Title: "Moon Mining", PublishedAt: day(3), Categories: []content.CategoryRef{onchain},
			PopulatedAuthors: []content.AuthorRef{{Name: "Ada"}}},
		{ID: "4", Slug: "titan", Title: "Titan Lakes", PublishedAt: day(2), Category: &content.CategoryRef{Title: "Onchain"}},
	}
}

func newTestApp(t *testing.T, src *stubCMS, cfg SiteConfig) *App {
	t.Helper()
	cfg.SessionSecret = "test-secret-test-secret-test-sec"
	if cfg.URL == "" {
		cfg.URL = "https://bedrock.example.com"
	}
	app := New(cfg, stubViews(), WithCMS(src), WithStaticDir(t.TempDir()))
	app.Echo.Logger.SetOutput(io.Discard)
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })
	return app
}

func do(app *App, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *App, target string) *httptest.ResponseRecorder {
	return do(app, http.MethodGet, target, nil, nil)
}

func postJSON(app *App, target, body string) *httptest.ResponseRecorder {
	return do(app, http.MethodPost, target, strings.NewReader(body), http.Header{
		"Content-Type": {"application/json"},
	})
}

func postForm(app *App, target string, form url.Values, cookies []*http.Cookie, referer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
