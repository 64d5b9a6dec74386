package culturegen

import (
	"time"

	"github.com/eringen/culturegen/content"
)

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Theme groups articles and splits them further by subcategory.
type Theme struct {
	ID            int64
	Name          string
	Slug          string
	Emoji         string
	Color         string
	Subcategories []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Link is the public path of the theme page.
func (t Theme) Link() string {
	return "/theme/" + t.Slug + "/"
}

// Article is the stored record. Content holds the serialized content
// document; FinalQuestions is the older newline-delimited column that the
// renderer falls back to when the document has none of its own.
type Article struct {
	ID              int64
	Title           string
	Slug            string
	Summary         string
	ThemeID         int64
	Subcategory     string
	ImageURL        string
	PresentationURL string
	Content         string
	FinalQuestions  string
	Status          Status
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Published reports whether the article is visible on the public site.
func (a Article) Published() bool {
	return a.Status == StatusPublished
}

// Link is the public path of the article page.
func (a Article) Link() string {
	return "/article/" + a.Slug + "/"
}

// Document parses the stored content. Malformed content yields the empty
// document.
func (a Article) Document() content.Document {
	return content.Parse(a.Content)
}

// ThemeCount pairs a theme with its number of published articles.
type ThemeCount struct {
	Theme    Theme
	Articles int
}

// SubcategoryCount is one entry of the subcategory filter on a theme page.
type SubcategoryCount struct {
	Name     string
	Articles int
}

// DashboardStats summarizes the site for the admin dashboard.
type DashboardStats struct {
	Themes    int
	Articles  int
	Published int
	Drafts    int
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}
