package bedrock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/bedrock/cms"
	"github.com/eringen/bedrock/content"
)

// PostCache is an in-memory cache of the latest posts, the category list
// and individually fetched articles, all sharing one TTL.
type PostCache struct {
	mu         sync.RWMutex
	posts      []content.Post
	categories []content.CategoryRef
	fetched    time.Time
	articles   map[string]cachedArticle
	ttl        time.Duration
	size       int
	src        CMS

	// Logger receives errors that are absorbed rather than returned.
	Logger echo.Logger
}

type cachedArticle struct {
	post    content.Post
	fetched time.Time
}

// NewPostCache creates a PostCache that keeps the newest size posts from src.
func NewPostCache(src CMS, ttl time.Duration, size int) *PostCache {
	return &PostCache{
		src:      src,
		ttl:      ttl,
		size:     size,
		articles: make(map[string]cachedArticle),
		Logger:   log.New("cache"),
	}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.categories = nil
	c.articles = make(map[string]cachedArticle)
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	list, err := c.src.ListPosts(ctx, cms.ListOptions{Limit: c.size})
	if err != nil {
		return err
	}
	// Categories only drive the filter pills, so a failure keeps the
	// previous list (or none) instead of failing the page.
	categories, err := c.src.ListCategories(ctx)
	if err != nil {
		c.Logger.Warnf("list categories: %v", err)
		categories = c.categories
	}
	if categories == nil {
		categories = []content.CategoryRef{}
	}
	posts := list.Docs
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.categories = categories
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and categories after ensuring the cache
// is fresh. It tries a read lock first; only takes a write lock if a reload
// is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, []content.CategoryRef, error) {
	c.mu.RLock()
	if c.valid() {
		posts, categories := c.posts, c.categories
		c.mu.RUnlock()
		return posts, categories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.categories, nil
}

// ListPosts returns the newest posts, optionally filtered by category slug.
func (c *PostCache) ListPosts(ctx context.Context, category string) ([]content.Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	category = normalizeCategory(category)
	if category == "" || category == "all" {
		return posts, nil
	}
	var filtered []content.Post
	for _, p := range posts {
		if HasCategory(p, category) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Categories returns all categories known to the CMS.
func (c *PostCache) Categories(ctx context.Context) ([]content.CategoryRef, error) {
	_, categories, err := c.ensureLoaded(ctx)
	return categories, err
}

// GetPost returns a single post with its full body. Feed entries are loaded
// at a shallow depth, so articles are fetched and cached separately.
func (c *PostCache) GetPost(ctx context.Context, slug string) (content.Post, error) {
	c.mu.RLock()
	a, ok := c.articles[slug]
	c.mu.RUnlock()
	if ok && time.Since(a.fetched) < c.ttl {
		return a.post, nil
	}

	post, err := c.src.PostBySlug(ctx, slug)
	if err != nil {
		return content.Post{}, err
	}

	c.mu.Lock()
	c.articles[slug] = cachedArticle{post: post, fetched: time.Now()}
	c.mu.Unlock()
	return post, nil
}

// HasCategory reports whether p belongs to the category with the given
// slug. Categories without a slug match on their slugified title.
func HasCategory(p content.Post, slug string) bool {
	slug = normalizeCategory(slug)
	match := func(c content.CategoryRef) bool {
		if c.Slug != "" {
			return normalizeCategory(c.Slug) == slug
		}
		label := c.Title
		if label == "" {
			label = c.Name
		}
		return label != "" && Slugify(label) == slug
	}
	for _, c := range p.Categories {
		if match(c) {
			return true
		}
	}
	return p.Category != nil && match(*p.Category)
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
