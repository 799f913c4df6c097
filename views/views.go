// Package views provides the default templates for a bedrock site. Sites
// with their own design pass their own ViewFuncs instead.
package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/bedrock"
	"github.com/eringen/bedrock/content"
)

// New returns the default view set.
func New() bedrock.ViewFuncs {
	return bedrock.ViewFuncs{
		Home:        Home,
		Article:     Article,
		Search:      Search,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// page renders body inside the shared layout.
func page(p bedrock.Page, body func(ctx context.Context, buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeHead(&buf, p)
		writeNav(&buf, p)
		buf.WriteString(`<main class="mx-auto max-w-6xl px-4 py-8 sm:px-6">`)
		if p.Flash != "" {
			fmt.Fprintf(&buf, `<div role="status" class="mb-6 rounded border border-[#333333] bg-[#1c1c1c] px-4 py-3 text-sm">%s</div>`, esc(p.Flash))
		}
		body(ctx, &buf)
		buf.WriteString(`</main>`)
		writeFooter(&buf, p)
		writeSearchOverlay(&buf)
		buf.WriteString(`<script src="/public/site.js" defer></script></body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeHead(buf *bytes.Buffer, p bedrock.Page) {
	m := p.Meta
	buf.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	fmt.Fprintf(buf, `<title>%s</title>`, esc(m.Title))
	fmt.Fprintf(buf, `<meta name="description" content="%s"/>`, esc(m.Description))
	fmt.Fprintf(buf, `<link rel="canonical" href="%s"/>`, esc(m.URL))
	fmt.Fprintf(buf, `<meta property="og:title" content="%s"/>`, esc(m.Title))
	fmt.Fprintf(buf, `<meta property="og:description" content="%s"/>`, esc(m.Description))
	fmt.Fprintf(buf, `<meta property="og:url" content="%s"/>`, esc(m.URL))
	fmt.Fprintf(buf, `<meta property="og:type" content="%s"/>`, esc(m.OGType))
	fmt.Fprintf(buf, `<meta property="og:site_name" content="%s"/>`, esc(p.Site.Name))
	if m.Image != "" {
		fmt.Fprintf(buf, `<meta property="og:image" content="%s"/>`, esc(m.Image))
		buf.WriteString(`<meta property="og:image:width" content="1200"/><meta property="og:image:height" content="630"/>`)
		buf.WriteString(`<meta name="twitter:card" content="summary_large_image"/>`)
	}
	fmt.Fprintf(buf, `<link rel="alternate" type="application/rss+xml" title="%s" href="/feed.xml"/>`, esc(p.Site.Name))
	buf.WriteString(`<link rel="stylesheet" href="/public/styles.css"/>`)
	if m.JSONLD != "" {
		// JSON-LD is produced by json.Marshal, which escapes <, > and &.
		fmt.Fprintf(buf, `<script type="application/ld+json">%s</script>`, m.JSONLD)
	}
	buf.WriteString(`</head><body class="bg-black text-white antialiased">`)
}

func writeNav(buf *bytes.Buffer, p bedrock.Page) {
	buf.WriteString(`<header class="border-b border-[#333333]"><nav class="mx-auto flex max-w-6xl items-center justify-between px-4 py-4 sm:px-6">`)
	fmt.Fprintf(buf, `<a href="/" class="text-xl font-bold tracking-widest">%s</a>`, esc(p.Site.Name))
	buf.WriteString(`<ul class="hidden gap-6 text-sm uppercase tracking-[0.12em] sm:flex">`)
	for _, s := range p.Site.Sections {
		href := "/" + url.PathEscape(s) + "/"
		cls := "text-[#8d8d8d] hover:text-white"
		if p.Path == href {
			cls = "text-white"
		}
		fmt.Fprintf(buf, `<li><a href="%s" class="%s">%s</a></li>`, esc(href), cls, esc(sectionTitle(s)))
	}
	buf.WriteString(`</ul>`)
	buf.WriteString(`<form action="/search/" method="get" class="flex items-center gap-2">`)
	buf.WriteString(`<input type="search" name="q" placeholder="Search" aria-label="Search" class="w-32 rounded border border-[#333333] bg-transparent px-2 py-1 text-sm sm:w-48"/>`)
	buf.WriteString(`<button type="button" data-search-open class="text-sm text-[#8d8d8d] hover:text-white">Quick search</button>`)
	buf.WriteString(`</form></nav></header>`)
}

func writeFooter(buf *bytes.Buffer, p bedrock.Page) {
	buf.WriteString(`<footer class="mt-16 border-t border-[#333333]"><div class="mx-auto grid max-w-6xl gap-8 px-4 py-10 sm:grid-cols-2 sm:px-6">`)
	fmt.Fprintf(buf, `<div><p class="text-lg font-bold tracking-widest">%s</p><p class="mt-2 text-sm text-[#8d8d8d]">%s</p></div>`,
		esc(p.Site.Name), esc(p.Site.Description))
	buf.WriteString(`<div><p class="text-sm font-semibold uppercase tracking-[0.12em]">Newsletter</p>`)
	buf.WriteString(`<form id="newsletter-form" action="/subscribe/" method="post" class="mt-3 flex gap-2">`)
	fmt.Fprintf(buf, `<input type="hidden" name="_csrf" value="%s"/>`, esc(p.CSRFToken))
	buf.WriteString(`<input type="email" name="email" required placeholder="you@example.com" aria-label="Email address" class="flex-1 rounded border border-[#333333] bg-transparent px-3 py-2 text-sm"/>`)
	buf.WriteString(`<button type="submit" class="rounded bg-white px-4 py-2 text-sm font-semibold text-black">Subscribe</button>`)
	buf.WriteString(`</form><p id="newsletter-status" class="mt-2 text-sm text-[#8d8d8d]" aria-live="polite"></p></div>`)
	buf.WriteString(`</div></footer>`)
}

func writeSearchOverlay(buf *bytes.Buffer) {
	buf.WriteString(`<div id="search-overlay" hidden class="fixed inset-0 z-50 bg-black/90 p-6">`)
	buf.WriteString(`<div class="mx-auto max-w-2xl"><div class="flex items-center gap-3">`)
	buf.WriteString(`<input id="search-input" type="search" placeholder="Search articles" aria-label="Search articles" class="flex-1 border-b border-[#333333] bg-transparent py-3 text-xl"/>`)
	buf.WriteString(`<button type="button" data-search-close class="text-[#8d8d8d] hover:text-white">Close</button>`)
	buf.WriteString(`</div><div id="search-results" class="mt-4"></div></div></div>`)
}

func writeMeta(buf *bytes.Buffer, post content.Post) {
	f := content.Resolve(post)
	fmt.Fprintf(buf, `<p class="text-xs uppercase tracking-[0.12em] text-[#8d8d8d]"><span>%s</span>`, esc(f.Category))
	if d := FormatDate(post.PublishedAt); d != "" {
		fmt.Fprintf(buf, ` <span aria-hidden="true">&middot;</span> <time datetime="%s">%s</time>`,
			esc(post.PublishedAt.Format("2006-01-02")), esc(d))
	}
	buf.WriteString(`</p>`)
}

func writeHero(buf *bytes.Buffer, post content.Post, origin string) {
	href := ArticlePath(post.Slug)
	buf.WriteString(`<section class="mb-12 grid gap-6 sm:grid-cols-2">`)
	fmt.Fprintf(buf, `<a href="%s"><img src="%s" alt="%s" class="aspect-video w-full rounded object-cover"/></a>`,
		esc(href), esc(PostImage(post, origin)), esc(post.Title))
	buf.WriteString(`<div class="flex flex-col justify-center">`)
	writeMeta(buf, post)
	fmt.Fprintf(buf, `<h1 class="mt-3 text-3xl font-bold sm:text-4xl"><a href="%s">%s</a></h1>`, esc(href), esc(post.Title))
	if s := PostSummary(post); s != "" {
		fmt.Fprintf(buf, `<p class="mt-4 text-[#8d8d8d]">%s</p>`, esc(s))
	}
	fmt.Fprintf(buf, `<p class="mt-4 text-sm">By %s</p>`, esc(AuthorLine(post)))
	buf.WriteString(`</div></section>`)
}

func writeCard(buf *bytes.Buffer, post content.Post, origin string) {
	href := ArticlePath(post.Slug)
	buf.WriteString(`<article class="flex flex-col">`)
	fmt.Fprintf(buf, `<a href="%s"><img src="%s" alt="%s" loading="lazy" class="aspect-video w-full rounded object-cover"/></a>`,
		esc(href), esc(PostImage(post, origin)), esc(post.Title))
	buf.WriteString(`<div class="mt-3">`)
	writeMeta(buf, post)
	fmt.Fprintf(buf, `<h2 class="mt-2 text-lg font-semibold"><a href="%s">%s</a></h2>`, esc(href), esc(post.Title))
	fmt.Fprintf(buf, `<p class="mt-1 text-sm text-[#8d8d8d]">By %s</p>`, esc(AuthorLine(post)))
	buf.WriteString(`</div></article>`)
}

func writeGrid(buf *bytes.Buffer, posts []content.Post, origin string) {
	buf.WriteString(`<div class="grid gap-8 sm:grid-cols-2 lg:grid-cols-3">`)
	for _, p := range posts {
		writeCard(buf, p, origin)
	}
	buf.WriteString(`</div>`)
}

func writeFilters(buf *bytes.Buffer, d bedrock.HomeData) {
	buf.WriteString(`<nav aria-label="Categories" class="mb-8 flex flex-wrap gap-2">`)
	fmt.Fprintf(buf, `<a href="/" class="%s">All</a>`, FilterClass(d.ActiveCategory == "all"))
	for _, c := range d.Categories {
		label := c.Title
		if label == "" {
			label = c.Name
		}
		if c.Slug == "" || label == "" {
			continue
		}
		href := "/?category=" + url.QueryEscape(c.Slug)
		fmt.Fprintf(buf, `<a href="%s" class="%s">%s</a>`, esc(href), FilterClass(strings.EqualFold(d.ActiveCategory, c.Slug)), esc(label))
	}
	buf.WriteString(`</nav>`)
}

// Home renders the homepage and section pages: hero, category filter and
// the latest article grid.
func Home(d bedrock.HomeData) templ.Component {
	return page(d.Page, func(ctx context.Context, buf *bytes.Buffer) {
		if d.Hero == nil {
			buf.WriteString(`<p class="py-24 text-center text-[#8d8d8d]">No articles yet.</p>`)
			return
		}
		writeHero(buf, *d.Hero, d.CMSOrigin)
		writeFilters(buf, d)
		writeGrid(buf, d.Posts, d.CMSOrigin)
	})
}

// Article renders a single article with its related posts.
func Article(d bedrock.ArticleData) templ.Component {
	return page(d.Page, func(ctx context.Context, buf *bytes.Buffer) {
		post := d.Post
		buf.WriteString(`<article class="mx-auto max-w-3xl">`)
		fmt.Fprintf(buf, `<p class="text-xs uppercase tracking-[0.12em] text-[#8d8d8d]">%s</p>`, esc(d.Fields.Category))
		fmt.Fprintf(buf, `<h1 class="mt-3 text-3xl font-bold sm:text-5xl">%s</h1>`, esc(post.Title))
		fmt.Fprintf(buf, `<p class="mt-4 text-sm text-[#8d8d8d]">By %s`, esc(AuthorLine(post)))
		if date := FormatDate(post.PublishedAt); date != "" {
			fmt.Fprintf(buf, ` &middot; <time datetime="%s">%s</time>`, esc(post.PublishedAt.Format("2006-01-02")), esc(date))
		}
		buf.WriteString(`</p>`)
		fmt.Fprintf(buf, `<img src="%s" alt="%s" class="mt-8 aspect-video w-full rounded object-cover"/>`,
			esc(content.ResolveFullURL(d.Fields.ImageURL, d.CMSOrigin)), esc(post.Title))
		if s := PostSummary(post); s != "" {
			fmt.Fprintf(buf, `<p class="mt-8 text-lg text-[#cccccc]">%s</p>`, esc(s))
		}
		buf.WriteString(`<div class="prose prose-invert mt-8 max-w-none">`)
		if d.Body != nil {
			_ = d.Body.Render(ctx, buf)
		}
		buf.WriteString(`</div>`)
		writeShare(buf, d.Meta.URL, post.Title)
		buf.WriteString(`</article>`)

		if len(d.Related) > 0 {
			buf.WriteString(`<section class="mt-16"><h2 class="mb-6 text-xl font-bold">Related</h2>`)
			writeGrid(buf, d.Related, d.CMSOrigin)
			buf.WriteString(`</section>`)
		}
	})
}

func writeShare(buf *bytes.Buffer, pageURL, title string) {
	u := url.QueryEscape(pageURL)
	t := url.QueryEscape(title)
	buf.WriteString(`<div class="mt-10 flex gap-4 border-t border-[#333333] pt-6 text-sm">`)
	fmt.Fprintf(buf, `<a href="%s" target="_blank" rel="noopener noreferrer">Share on X</a>`,
		esc("https://twitter.com/intent/tweet?url="+u+"&text="+t))
	fmt.Fprintf(buf, `<a href="%s" target="_blank" rel="noopener noreferrer">Share on LinkedIn</a>`,
		esc("https://www.linkedin.com/sharing/share-offsite/?url="+u))
	buf.WriteString(`</div>`)
}

// Search renders the search page.
func Search(d bedrock.SearchData) templ.Component {
	return page(d.Page, func(ctx context.Context, buf *bytes.Buffer) {
		buf.WriteString(`<form action="/search/" method="get" class="mb-8">`)
		fmt.Fprintf(buf, `<input type="search" name="q" value="%s" placeholder="Search articles" aria-label="Search articles" class="w-full border-b border-[#333333] bg-transparent py-3 text-2xl"/>`, esc(d.Query))
		buf.WriteString(`</form>`)
		switch {
		case d.Error != "":
			fmt.Fprintf(buf, `<div role="alert" class="rounded border border-red-800 bg-red-950 px-4 py-3 text-sm">%s</div>`, esc(d.Error))
		case d.Query == "":
			buf.WriteString(`<p class="text-[#8d8d8d]">Enter a search term to find articles.</p>`)
		case len(d.Results) == 0:
			fmt.Fprintf(buf, `<p class="text-[#8d8d8d]">No results found for &quot;%s&quot;</p>`, esc(d.Query))
		default:
			noun := "results"
			if len(d.Results) == 1 {
				noun = "result"
			}
			fmt.Fprintf(buf, `<p class="mb-6 text-sm text-[#8d8d8d]">%d %s for &quot;%s&quot;</p>`, len(d.Results), noun, esc(d.Query))
			writeGrid(buf, d.Results, d.CMSOrigin)
		}
	})
}

// NotFound renders the 404 page.
func NotFound(p bedrock.Page) templ.Component {
	return page(p, func(_ context.Context, buf *bytes.Buffer) {
		buf.WriteString(`<div class="py-24 text-center"><h1 class="text-4xl font-bold">Page not found</h1>`)
		buf.WriteString(`<p class="mt-4 text-[#8d8d8d]">The page you are looking for does not exist.</p>`)
		buf.WriteString(`<a href="/" class="mt-8 inline-block underline">Back to home</a></div>`)
	})
}

// ServerError renders the 500 page.
func ServerError(p bedrock.Page) templ.Component {
	return page(p, func(_ context.Context, buf *bytes.Buffer) {
		buf.WriteString(`<div class="py-24 text-center"><h1 class="text-4xl font-bold">Something went wrong</h1>`)
		buf.WriteString(`<p class="mt-4 text-[#8d8d8d]">Please try again later.</p></div>`)
	})
}
