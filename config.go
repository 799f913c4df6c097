package bedrock

import (
	"strings"
	"time"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "BEDROCK")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Publisher   string // Publisher name for JSON-LD (default Name)

	Addr string // Listen address (default ":3000")

	CMSURL     string        // CMS origin (default "http://localhost:3001")
	CMSTimeout time.Duration // Per-request CMS timeout (default 10s)

	RedisURL string        // Optional shared response cache, e.g. redis://localhost:6379/0
	CacheTTL time.Duration // Redis response TTL (default 1min)

	PostCacheTTL time.Duration // In-process post cache TTL (default 5min)
	FeedSize     int           // Posts loaded for the feed, sitemap and RSS (default 50)
	PageSize     int           // Cards shown on the homepage grid (default 12)
	SearchLimit  int           // Default search result count (default 10)
	Sections     []string      // Category slugs with their own top-level page

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS
}

const maxSearchLimit = 50

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "BEDROCK"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Publisher == "" {
		c.Publisher = c.Name
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.CMSURL == "" {
		c.CMSURL = "http://localhost:3001"
	}
	c.CMSURL = strings.TrimRight(c.CMSURL, "/")
	if c.CMSTimeout == 0 {
		c.CMSTimeout = 10 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Minute
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.FeedSize <= 0 {
		c.FeedSize = 50
	}
	if c.PageSize <= 0 {
		c.PageSize = 12
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 10
	}
	if c.Sections == nil {
		c.Sections = []string{"builders", "consumer", "onchain"}
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithCMS replaces the HTTP CMS client, typically with a stub in tests.
func WithCMS(src CMS) Option {
	return func(a *App) {
		a.CMS = src
	}
}
