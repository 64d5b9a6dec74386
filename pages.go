package culturegen

import (
	"github.com/a-h/templ"

	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/media"
)

// HomePage lists every theme with its article count.
type HomePage struct {
	Meta   PageMeta
	Site   SiteConfig
	Themes []ThemeCount
}

// ThemePage lists the published articles of one theme.
type ThemePage struct {
	Meta          PageMeta
	Site          SiteConfig
	Theme         Theme
	Articles      []Article
	Subcategories []SubcategoryCount
	// ActiveSub is the subcategory filter, empty for all articles.
	ActiveSub string
	// Total counts the theme's articles before filtering.
	Total int
}

// ArticlePage shows one published article.
type ArticlePage struct {
	Meta           PageMeta
	Site           SiteConfig
	Article        Article
	Theme          Theme
	Body           templ.Component
	ReadingMinutes int
	JSONLD         string
}

// Admin is shared by every admin page.
type Admin struct {
	CSRF    string
	Message string
	// Error marks Message as a failure the operator must acknowledge.
	Error   bool
	HTMXURL string
}

// DashboardPage is the admin landing page.
type DashboardPage struct {
	Admin
	Stats  DashboardStats
	Recent []Article
	Themes map[int64]Theme
}

// ThemesPage lists themes for editing.
type ThemesPage struct {
	Admin
	Themes []Theme
	Counts map[int64]int
}

// ThemeForm edits or creates one theme.
type ThemeForm struct {
	Admin
	Theme Theme
	IsNew bool
}

// ArticlesPage lists every article for editing.
type ArticlesPage struct {
	Admin
	Articles []Article
	Themes   map[int64]Theme
}

// ArticleForm edits or creates one article. The editor state carries the
// in-memory content document, which survives failed saves.
type ArticleForm struct {
	Admin
	Article      Article
	Themes       []Theme
	IsNew        bool
	Editor       EditorState
	Presentation PresentationState
	// UnreadableContent is the stored content when it does not decode. The
	// save is refused unless the operator ticks replace_content.
	UnreadableContent string
}

// EditorState is the content editor partial: the current document, its
// serialized form (posted back with every action and with the article
// form), and the element to scroll to after the swap.
type EditorState struct {
	CSRF       string
	Doc        content.Document
	Serialized string
	// Focus is the id of the block, question or link created by the last
	// action.
	Focus string
	Error string
}

// PresentationState is the presentation upload field of the article form.
type PresentationState struct {
	CSRF      string
	ArticleID int64
	URL       string
	Error     string
}

// PickerState lists the media an image or PDF block can use. Target is the
// id of the field that receives the chosen URL.
type PickerState struct {
	Kind   string
	Target string
	Items  []media.Item
	Error  string
}

// MediaPage is the media library.
type MediaPage struct {
	Admin
	Images    []media.Item
	Documents []media.Item
}

func newEditorState(csrf string, doc content.Document) EditorState {
	return EditorState{CSRF: csrf, Doc: doc, Serialized: content.Encode(doc)}
}
