package content

import "strings"

const (
	// PlaceholderImage is shown when a post carries no usable image.
	PlaceholderImage = "/placeholder.svg?height=300&width=400"
	// DefaultCategory labels posts with no category.
	DefaultCategory = "Article"
)

// Size variants tried in order after the hero image's own URL, then the
// secondary order used when none of the primary variants exist.
var (
	primarySizes   = []string{"medium", "large", "og"}
	secondarySizes = []string{"small", "thumbnail", "large", "xlarge"}
)

// Fields is the resolved, display-ready view of a post's image, category
// and authors. It is computed per render and never stored.
type Fields struct {
	ImageURL string
	Category string
	Authors  []string
}

// Resolve computes all display fields of p.
func Resolve(p Post) Fields {
	return Fields{
		ImageURL: ResolveImageURL(p),
		Category: ResolveCategoryLabel(p),
		Authors:  ResolveAuthorNames(p),
	}
}

// ResolveImageURL picks the post's display image. It never returns "".
func ResolveImageURL(p Post) string {
	if h := p.HeroImage; h != nil {
		if h.URL != "" {
			return h.URL
		}
		if u := firstSize(h.Sizes, primarySizes); u != "" {
			return u
		}
		if u := firstSize(h.Sizes, secondarySizes); u != "" {
			return u
		}
	}
	if p.Image != nil && p.Image.URL != "" {
		return p.Image.URL
	}
	return PlaceholderImage
}

func firstSize(sizes map[string]ImageSize, order []string) string {
	for _, name := range order {
		if s, ok := sizes[name]; ok && s.URL != "" {
			return s.URL
		}
	}
	return ""
}

// ResolveCategoryLabel picks the post's category label. It never returns "".
func ResolveCategoryLabel(p Post) string {
	if len(p.Categories) > 0 {
		first := p.Categories[0]
		if first.Title != "" {
			return first.Title
		}
		if first.Name != "" {
			return first.Name
		}
	}
	if c := p.Category; c != nil {
		if c.Title != "" {
			return c.Title
		}
		if c.Name != "" {
			return c.Name
		}
	}
	return DefaultCategory
}

// ResolveAuthorNames returns the author names from the first source that
// yields any: populated authors, raw author relations, then the legacy
// single author. Sources are never merged. The result is empty when no
// source has a name.
func ResolveAuthorNames(p Post) []string {
	if names := authorNames(p.PopulatedAuthors); len(names) > 0 {
		return names
	}
	if names := authorNames(p.Authors); len(names) > 0 {
		return names
	}
	if p.Author != nil && p.Author.Name != "" {
		return []string{p.Author.Name}
	}
	return []string{}
}

func authorNames(refs []AuthorRef) []string {
	var names []string
	for _, a := range refs {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// ResolveFullURL makes CMS API paths absolute against origin. Anything not
// starting with "/api" is returned unchanged.
func ResolveFullURL(path, origin string) string {
	if strings.HasPrefix(path, "/api") {
		return origin + path
	}
	return path
}

// Summary returns the post's description, falling back to its excerpt.
func Summary(p Post) string {
	if p.Description != "" {
		return p.Description
	}
	return p.Excerpt
}
