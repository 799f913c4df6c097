// Package bedrock is the public web site of an independent media
// publication: homepage feed, section pages, article pages, search and a
// newsletter signup, all served from a headless CMS.
//
// Callers provide their own templ templates via the ViewFuncs struct, and
// bedrock handles the handler logic, middleware, caching and CMS access.
package bedrock

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/bedrock/cms"
)

// ViewFuncs holds user-provided templ components that the app calls when
// rendering pages.
type ViewFuncs struct {
	Home        func(d HomeData) templ.Component
	Article     func(d ArticleData) templ.Component
	Search      func(d SearchData) templ.Component
	NotFound    func(p Page) templ.Component
	ServerError func(p Page) templ.Component
}

// App is the central application. It wires together the CMS client, post
// cache, handlers, middleware and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	CMS    CMS
	Cache  *PostCache
	Views  ViewFuncs

	subscribeLimiter *RateLimiter
	redisCache       *cms.RedisCache
	customRoutes     []func(*App)
	staticDir        string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init builds the CMS client, cache, middleware and routes without
// starting the listener.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("bedrock: SessionSecret is required")
	}

	if a.CMS == nil {
		opts := []cms.Option{
			cms.WithTimeout(a.Config.CMSTimeout),
			cms.WithLogger(a.Echo.Logger),
		}
		if a.Config.RedisURL != "" {
			rc, err := cms.DialRedisCache(context.Background(), a.Config.RedisURL, "bedrock:cms:")
			if err != nil {
				return fmt.Errorf("bedrock: init redis cache: %w", err)
			}
			a.redisCache = rc
			opts = append(opts, cms.WithCache(rc, a.Config.CacheTTL))
		}
		a.CMS = cms.New(a.Config.CMSURL, opts...)
	}

	a.Cache = NewPostCache(a.CMS, a.Config.PostCacheTTL, a.Config.FeedSize)
	a.Cache.Logger = a.Echo.Logger
	a.subscribeLimiter = NewRateLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (placeholder image, site.js) fall through to the
	// user's static dir for everything else under /public/.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.FileServer(http.FS(embeddedFS)))
	e.GET("/placeholder.svg", embeddedHandler)
	e.GET("/public/site.js", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)

	// Public pages
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	for _, section := range a.Config.Sections {
		e.GET("/"+section+"/", a.handleSection(section))
	}
	e.GET("/article/:slug/", a.handleArticle)
	e.GET("/og/:slug", a.handleOGImage)
	e.GET("/search/", a.handleSearch)
	e.POST("/subscribe/", a.handleSubscribeForm)

	// JSON proxies
	e.GET("/api/search", a.handleAPISearch)
	e.POST("/api/subscribe", a.handleAPISubscribe)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.subscribeLimiter != nil {
		a.subscribeLimiter.Stop()
	}
	if a.redisCache != nil {
		return a.redisCache.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("bedrock: required environment variable %s is not set", key)
	}
	return v
}
