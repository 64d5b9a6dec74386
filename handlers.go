package culturegen

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/export"
	"github.com/eringen/culturegen/render"
)

func (a *App) handleHome(c echo.Context) error {
	themes, err := a.Cache.ThemeCounts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(HomePage{
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
		},
		Site:   a.Config,
		Themes: themes,
	}))
}

func (a *App) handleTheme(c echo.Context) error {
	theme, err := a.Cache.ThemeBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	all, err := a.Cache.PublishedByTheme(theme.ID, "")
	if err != nil {
		return err
	}
	sub := strings.TrimSpace(c.QueryParam("sub"))
	articles := all
	if sub != "" {
		articles, err = a.Cache.PublishedByTheme(theme.ID, sub)
		if err != nil {
			return err
		}
	}
	return Render(c, a.Views.Theme(ThemePage{
		Meta: PageMeta{
			Title:       theme.Name + " | " + a.Config.Name,
			Description: theme.Name + " : " + a.Config.Description,
			URL:         BuildURL(a.Config.URL, "theme", theme.Slug),
			OGType:      "website",
		},
		Site:          a.Config,
		Theme:         theme,
		Articles:      articles,
		Subcategories: SubcategoryCounts(theme, all),
		ActiveSub:     sub,
		Total:         len(all),
	}))
}

func (a *App) handleArticle(c echo.Context) error {
	article, err := a.Cache.ArticleBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	theme, err := a.Cache.ThemeByID(article.ThemeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	doc := article.Document()
	return Render(c, a.Views.Article(ArticlePage{
		Meta: PageMeta{
			Title:       article.Title + " | " + a.Config.Name,
			Description: Description(article),
			URL:         BuildURL(a.Config.URL, "article", article.Slug),
			OGType:      "article",
			Image:       article.ImageURL,
		},
		Site:           a.Config,
		Article:        article,
		Theme:          theme,
		Body:           a.timedDocument(doc, article.FinalQuestions),
		ReadingMinutes: content.ReadingMinutes(doc),
		JSONLD:         ArticleJsonLD(article, theme, a.Config),
	}))
}

func (a *App) handleArticleExport(c echo.Context) error {
	article, err := a.Cache.ArticleBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.String(http.StatusNotFound, "Not found")
		}
		return err
	}
	out, err := a.Exporter.Markdown(export.Meta{
		Title:              article.Title,
		Summary:            article.Summary,
		URL:                BuildURL(a.Config.URL, "article", article.Slug),
		PresentationURL:    article.PresentationURL,
		FinalQuestionsText: article.FinalQuestions,
	}, article.Document())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+article.Slug+`.md"`)
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}

func (a *App) handleSitemap(c echo.Context) error {
	themes, err := a.Cache.Themes()
	if err != nil {
		return err
	}
	articles, err := a.Cache.Published()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, themes, articles)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.Published()
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

// timedDocument renders the article body and records how long it took.
func (a *App) timedDocument(doc content.Document, legacyFinal string) *timedComponent {
	return &timedComponent{
		inner:    render.Document(doc, render.Options{FinalQuestionsText: legacyFinal}),
		observer: a.Metrics.RenderSeconds,
		now:      time.Now,
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
