package bedrock

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/bedrock/content"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// ArticleURL returns the canonical URL of an article.
func ArticleURL(base, slug string) string {
	return BuildURL(base, "article", slug)
}

// OGImageURL returns the URL of the generated Open Graph image for slug.
func OGImageURL(base, slug string) string {
	return strings.TrimSuffix(BuildURL(base, "og", slug), "/")
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RelatedPosts returns up to limit posts that share a category with
// current, newest first.
func RelatedPosts(current content.Post, posts []content.Post, limit int) []content.Post {
	var slugs []string
	for _, c := range current.Categories {
		slugs = append(slugs, categorySlug(c))
	}
	if current.Category != nil {
		slugs = append(slugs, categorySlug(*current.Category))
	}
	slugs = FilterEmpty(slugs)

	var related []content.Post
	for _, p := range posts {
		if len(related) == limit {
			break
		}
		if p.Slug == current.Slug {
			continue
		}
		for _, s := range slugs {
			if HasCategory(p, s) {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

func categorySlug(c content.CategoryRef) string {
	if c.Slug != "" {
		return c.Slug
	}
	if c.Title != "" {
		return Slugify(c.Title)
	}
	return Slugify(c.Name)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      BuildURL(cfg.URL, "search") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	return marshalJsonLD(data)
}

// ArticleJsonLD returns a JSON-LD string for a NewsArticle schema.
func ArticleJsonLD(post content.Post, cfg SiteConfig, cmsOrigin string) string {
	fields := content.Resolve(post)
	postURL := ArticleURL(cfg.URL, post.Slug)
	data := map[string]interface{}{
		"@context":       "https://schema.org",
		"@type":          "NewsArticle",
		"headline":       post.Title,
		"description":    content.Summary(post),
		"url":            postURL,
		"articleSection": fields.Category,
		"image":          []string{ImageURL(fields.ImageURL, cfg.URL, cmsOrigin)},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Publisher,
		},
	}
	if !post.PublishedAt.IsZero() {
		data["datePublished"] = post.PublishedAt.Format(time.RFC3339)
	}
	if len(fields.Authors) > 0 {
		authors := make([]map[string]string, 0, len(fields.Authors))
		for _, name := range fields.Authors {
			authors = append(authors, map[string]string{"@type": "Person", "name": name})
		}
		data["author"] = authors
	}
	return marshalJsonLD(data)
}

// ImageURL makes a resolved image URL absolute. The placeholder is served
// by the site itself; everything else lives on the CMS.
func ImageURL(resolved, siteURL, cmsOrigin string) string {
	if resolved == content.PlaceholderImage {
		return strings.TrimRight(siteURL, "/") + resolved
	}
	return content.ResolveFullURL(resolved, cmsOrigin)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
