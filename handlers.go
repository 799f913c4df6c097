package bedrock

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/bedrock/content"
	"github.com/eringen/bedrock/richtext"
)

const (
	relatedLimit  = 3
	searchFailure = "Failed to search posts. Please try again later."
)

// page builds the data shared by every view.
func (a *App) page(c echo.Context, meta PageMeta) Page {
	if meta.Title == "" {
		meta.Title = a.Config.Name
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.URL == "" {
		meta.URL = BuildURL(a.Config.URL, c.Request().URL.Path)
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	return Page{
		Meta:      meta,
		Site:      a.Config,
		CMSOrigin: a.CMS.Origin(),
		Flash:     popFlash(c),
		CSRFToken: CsrfToken(c),
		Path:      c.Request().URL.Path,
	}
}

func (a *App) handleHome(c echo.Context) error {
	return a.renderHome(c, c.QueryParam("category"), PageMeta{JSONLD: WebsiteJsonLD(a.Config)})
}

func (a *App) handleSection(section string) echo.HandlerFunc {
	return func(c echo.Context) error {
		title := section
		if title != "" {
			title = strings.ToUpper(title[:1]) + title[1:]
		}
		return a.renderHome(c, section, PageMeta{
			Title: fmt.Sprintf("%s | %s", title, a.Config.Name),
			URL:   BuildURL(a.Config.URL, section),
		})
	}
}

func (a *App) renderHome(c echo.Context, category string, meta PageMeta) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, category)
	if err != nil {
		return err
	}
	categories, err := a.Cache.Categories(ctx)
	if err != nil {
		return err
	}

	active := normalizeCategory(category)
	if active == "" {
		active = "all"
	}
	d := HomeData{
		Page:           a.page(c, meta),
		Categories:     categories,
		ActiveCategory: active,
	}
	if len(posts) > 0 {
		hero := posts[0]
		d.Hero = &hero
		rest := posts[1:]
		if len(rest) > a.Config.PageSize {
			rest = rest[:a.Config.PageSize]
		}
		d.Posts = rest
	}
	return Render(c, a.Views.Home(d))
}

func (a *App) handleArticle(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, PageMeta{Title: "Not found | " + a.Config.Name})))
		}
		return err
	}

	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		c.Logger().Warnf("article %s: related posts: %v", slug, err)
	}

	origin := a.CMS.Origin()
	fields := content.Resolve(post)
	description := content.Summary(post)
	d := ArticleData{
		Page: a.page(c, PageMeta{
			Title:       fmt.Sprintf("%s | %s", post.Title, a.Config.Name),
			Description: description,
			URL:         ArticleURL(a.Config.URL, post.Slug),
			OGType:      "article",
			Image:       OGImageURL(a.Config.URL, post.Slug),
			JSONLD:      ArticleJsonLD(post, a.Config, origin),
		}),
		Post:    post,
		Fields:  fields,
		Body:    richtext.Component(post.Content, origin),
		Related: RelatedPosts(post, posts, relatedLimit),
	}
	return Render(c, a.Views.Article(d))
}

func (a *App) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	d := SearchData{
		Page:  a.page(c, PageMeta{Title: "Search | " + a.Config.Name}),
		Query: query,
	}
	if query != "" {
		list, err := a.CMS.SearchPosts(c.Request().Context(), query, a.Config.SearchLimit)
		if err != nil {
			c.Logger().Errorf("search %q: %v", query, err)
			d.Error = searchFailure
		} else {
			d.Results = list.Docs
		}
	}
	return Render(c, a.Views.Search(d))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /api/\n" +
		"Disallow: /admin/\n" +
		"\n" +
		"Sitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if (ok && he.Code == http.StatusNotFound) || errors.Is(err, ErrNotFound) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, PageMeta{Title: "Not found | " + a.Config.Name})))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, PageMeta{Title: "Error | " + a.Config.Name})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
