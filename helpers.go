package culturegen

import (
	"encoding/json"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/slug"
)

// Slugify converts a title to a URL-safe slug, folding accents to ASCII.
func Slugify(s string) string {
	return slug.Make(s)
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
	return u.String()
}

// CleanSubcategories trims names and drops blanks and duplicates, keeping
// the first occurrence order.
func CleanSubcategories(vals []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range vals {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// SubcategoryCounts lists the subcategories of theme that have at least one
// article, in the theme's order, followed by any subcategory only found on
// articles in alphabetical order.
func SubcategoryCounts(theme Theme, articles []Article) []SubcategoryCount {
	counts := make(map[string]int)
	for _, a := range articles {
		if a.Subcategory != "" {
			counts[a.Subcategory]++
		}
	}
	var out []SubcategoryCount
	for _, name := range theme.Subcategories {
		if n := counts[name]; n > 0 {
			out = append(out, SubcategoryCount{Name: name, Articles: n})
			delete(counts, name)
		}
	}
	var extra []string
	for name := range counts {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, SubcategoryCount{Name: name, Articles: counts[name]})
	}
	return out
}

// Description returns the summary of an article, or an excerpt of its text
// when the summary is empty.
func Description(a Article) string {
	if s := strings.TrimSpace(a.Summary); s != "" {
		return s
	}
	return content.Excerpt(a.Document(), 160)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
		"inLanguage":  "fr",
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ArticleJsonLD returns a JSON-LD string for a LearningResource schema.
func ArticleJsonLD(a Article, theme Theme, cfg SiteConfig) string {
	articleURL := BuildURL(cfg.URL, "article", a.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "LearningResource",
		"name":          a.Title,
		"description":   Description(a),
		"url":           articleURL,
		"inLanguage":    "fr",
		"datePublished": a.CreatedAt.Format("2006-01-02"),
		"dateModified":  a.UpdatedAt.Format("2006-01-02"),
		"timeRequired":  "PT" + strconv.Itoa(content.ReadingMinutes(a.Document())) + "M",
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   articleURL,
		},
	}
	if theme.Name != "" {
		data["about"] = theme.Name
	}
	if a.Subcategory != "" {
		data["keywords"] = a.Subcategory
	}
	if a.ImageURL != "" {
		data["image"] = a.ImageURL
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
