package views

import (
	"net/url"
	"strings"
	"time"

	"github.com/eringen/bedrock/content"
)

// AuthorLine joins the post's author names, or "Anonymous" when it has none.
func AuthorLine(p content.Post) string {
	names := content.ResolveAuthorNames(p)
	if len(names) == 0 {
		return "Anonymous"
	}
	return strings.Join(names, ", ")
}

// FormatDate formats a publish date as "Jan 2, '06". Zero times format as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, '06")
}

// PostImage returns the post's display image, absolute when it lives on the CMS.
func PostImage(p content.Post, cmsOrigin string) string {
	return content.ResolveFullURL(content.ResolveImageURL(p), cmsOrigin)
}

// PostSummary returns the description, falling back to the excerpt.
func PostSummary(p content.Post) string {
	return content.Summary(p)
}

// ArticlePath returns the site-relative path of an article.
func ArticlePath(slug string) string {
	return "/article/" + url.PathEscape(slug) + "/"
}

// FilterClass returns CSS classes for a category filter pill, with active variant.
func FilterClass(active bool) string {
	base := "inline-flex items-center rounded-full border px-3 py-1 text-xs font-semibold uppercase tracking-[0.12em] transition"
	if active {
		return base + " border-white bg-white text-black"
	}
	return base + " border-[#333333] text-[#8d8d8d] hover:border-white hover:text-white"
}

func sectionTitle(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
