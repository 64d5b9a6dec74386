// Package views holds the default page templates. Pages are html/template
// files embedded in the binary and exposed as templ components, so the
// handlers only ever see ViewFuncs.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/culturegen"
)

//go:embed templates
var files embed.FS

var pageNames = []string{
	"home", "theme", "article", "notfound", "servererror",
	"login", "dashboard", "themes", "themeform", "articles", "articleform", "media",
}

var (
	base  = template.Must(template.New("base").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/partials.html"))
	pages = parsePages()
)

func parsePages() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t := template.Must(base.Clone())
		template.Must(t.ParseFS(files, "templates/pages/"+name+".html"))
		out[name] = t.Lookup("page")
	}
	return out
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name], data)
}

func partial(name string, data any) templ.Component {
	return templ.FromGoHTML(base.Lookup(name), data)
}

// chrome is the layout data of pages that have nothing else to show.
type chrome struct {
	Meta culturegen.PageMeta
	Site culturegen.SiteConfig
}

type loginPage struct {
	CSRF      string
	ShowError bool
}

type articleView struct {
	culturegen.ArticlePage
	Content template.HTML
}

// New returns the default views for site.
func New(site culturegen.SiteConfig) culturegen.ViewFuncs {
	return culturegen.ViewFuncs{
		Home:    func(p culturegen.HomePage) templ.Component { return page("home", p) },
		Theme:   func(p culturegen.ThemePage) templ.Component { return page("theme", p) },
		Article: article,
		NotFound: func() templ.Component {
			return page("notfound", chrome{Meta: culturegen.PageMeta{Title: "Page introuvable | " + site.Name}, Site: site})
		},
		ServerError: func() templ.Component {
			return page("servererror", chrome{Meta: culturegen.PageMeta{Title: "Erreur | " + site.Name}, Site: site})
		},

		AdminLogin: func(showError bool, csrf string) templ.Component {
			return page("login", loginPage{CSRF: csrf, ShowError: showError})
		},
		AdminDashboard:    func(p culturegen.DashboardPage) templ.Component { return page("dashboard", p) },
		AdminThemes:       func(p culturegen.ThemesPage) templ.Component { return page("themes", p) },
		AdminThemeForm:    func(p culturegen.ThemeForm) templ.Component { return page("themeform", p) },
		AdminArticles:     func(p culturegen.ArticlesPage) templ.Component { return page("articles", p) },
		AdminArticleForm:  func(p culturegen.ArticleForm) templ.Component { return page("articleform", p) },
		AdminEditor:       func(s culturegen.EditorState) templ.Component { return partial("editor", s) },
		AdminPresentation: func(s culturegen.PresentationState) templ.Component { return partial("presentation", s) },
		AdminPicker:       func(s culturegen.PickerState) templ.Component { return partial("picker", s) },
		AdminMedia:        func(p culturegen.MediaPage) templ.Component { return page("media", p) },
	}
}

// article renders the body component first so the page template can place
// it as trusted HTML.
func article(p culturegen.ArticlePage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var body template.HTML
		if p.Body != nil {
			var err error
			body, err = templ.ToGoHTML(ctx, p.Body)
			if err != nil {
				return fmt.Errorf("render article body: %w", err)
			}
		}
		return page("article", articleView{ArticlePage: p, Content: body}).Render(ctx, w)
	})
}
