package culturegen

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/culturegen/content"
)

// ValidationError is a form error shown to the operator as is.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return ValidationError{Message: msg} }

const (
	msgSaveFailed        = "L'enregistrement a échoué. Vos modifications sont conservées, réessayez."
	msgUnreadableContent = "Le contenu enregistré de cet article est illisible. Il est conservé tel quel ci-dessous ; cochez « Remplacer le contenu illisible » pour enregistrer le contenu de l'éditeur à sa place."
)

func (a *App) admin(c echo.Context, msg string, isErr bool) Admin {
	return Admin{CSRF: CsrfToken(c), Message: msg, Error: isErr, HTMXURL: a.Config.HTMXURL}
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	stats, err := a.Store.Stats()
	if err != nil {
		return err
	}
	articles, err := a.Store.ListArticles()
	if err != nil {
		return err
	}
	if len(articles) > 5 {
		articles = articles[:5]
	}
	themes, err := a.themeIndex()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(DashboardPage{
		Admin:  a.admin(c, c.QueryParam("msg"), false),
		Stats:  stats,
		Recent: articles,
		Themes: themes,
	}))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Trop de tentatives. Réessayez plus tard.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("ip", ip))
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) themeIndex() (map[int64]Theme, error) {
	themes, err := a.Store.ListThemes()
	if err != nil {
		return nil, err
	}
	index := make(map[int64]Theme, len(themes))
	for _, t := range themes {
		index[t.ID] = t
	}
	return index, nil
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}

func redirectWithMessage(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?msg="+url.QueryEscape(msg))
}

// --- themes ---

func (a *App) handleAdminThemes(c echo.Context) error {
	return a.renderAdminThemes(c, c.QueryParam("msg"), false)
}

func (a *App) renderAdminThemes(c echo.Context, msg string, isErr bool) error {
	themes, err := a.Store.ListThemes()
	if err != nil {
		return err
	}
	counts, err := a.Store.ThemeArticleCounts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminThemes(ThemesPage{
		Admin:  a.admin(c, msg, isErr),
		Themes: themes,
		Counts: counts,
	}))
}

func (a *App) handleAdminThemeNew(c echo.Context) error {
	return Render(c, a.Views.AdminThemeForm(ThemeForm{Admin: a.admin(c, "", false), IsNew: true}))
}

func (a *App) handleAdminThemeEdit(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	theme, err := a.Store.GetTheme(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminThemeForm(ThemeForm{Admin: a.admin(c, c.QueryParam("msg"), false), Theme: theme}))
}

// themeFromForm reads the theme form. Subcategories come one per line.
func themeFromForm(c echo.Context) Theme {
	t := Theme{
		Name:          strings.TrimSpace(c.FormValue("name")),
		Slug:          strings.TrimSpace(c.FormValue("slug")),
		Emoji:         strings.TrimSpace(c.FormValue("emoji")),
		Color:         strings.TrimSpace(c.FormValue("color")),
		Subcategories: CleanSubcategories(strings.Split(c.FormValue("subcategories"), "\n")),
	}
	t.ID, _ = strconv.ParseInt(c.FormValue("id"), 10, 64)
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	} else {
		t.Slug = Slugify(t.Slug)
	}
	return t
}

func validateTheme(t Theme) error {
	if t.Name == "" {
		return invalid("Le nom est obligatoire.")
	}
	if t.Slug == "" {
		return invalid("Le slug est obligatoire.")
	}
	return nil
}

func (a *App) handleAdminThemeSave(c echo.Context) error {
	t := themeFromForm(c)
	err := validateTheme(t)
	if err == nil {
		if t.ID == 0 {
			t.ID, err = a.Store.CreateTheme(t)
		} else {
			err = a.Store.UpdateTheme(t)
		}
	}
	a.Metrics.Saves.WithLabelValues("theme", outcome(err)).Inc()
	if err != nil {
		return a.renderThemeFormError(c, t, err)
	}
	a.Cache.Invalidate()
	return redirectWithMessage(c, "/admin/themes/", "Thème enregistré.")
}

func (a *App) renderThemeFormError(c echo.Context, t Theme, err error) error {
	var verr ValidationError
	var msg string
	switch {
	case errors.As(err, &verr):
		msg = verr.Message
	case errors.Is(err, ErrSlugTaken):
		msg = "Ce slug est déjà utilisé par un autre thème."
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound)
	default:
		a.Logger.Error("save theme", zap.Error(err), zap.Int64("id", t.ID))
		msg = msgSaveFailed
	}
	return Render(c, a.Views.AdminThemeForm(ThemeForm{Admin: a.admin(c, msg, true), Theme: t, IsNew: t.ID == 0}))
}

func (a *App) handleAdminThemeDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteTheme(id); err != nil {
		switch {
		case errors.Is(err, ErrThemeInUse):
			return a.renderAdminThemes(c, "Ce thème contient encore des articles.", true)
		case errors.Is(err, ErrNotFound):
			return a.renderAdminThemes(c, "Thème introuvable.", true)
		}
		a.Logger.Error("delete theme", zap.Error(err), zap.Int64("id", id))
		return a.renderAdminThemes(c, "La suppression a échoué.", true)
	}
	a.Cache.Invalidate()
	return a.renderAdminThemes(c, "Thème supprimé.", false)
}

// --- articles ---

func (a *App) handleAdminArticles(c echo.Context) error {
	return a.renderAdminArticles(c, c.QueryParam("msg"), false)
}

func (a *App) renderAdminArticles(c echo.Context, msg string, isErr bool) error {
	articles, err := a.Store.ListArticles()
	if err != nil {
		return err
	}
	themes, err := a.themeIndex()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminArticles(ArticlesPage{
		Admin:    a.admin(c, msg, isErr),
		Articles: articles,
		Themes:   themes,
	}))
}

func (a *App) handleAdminArticleNew(c echo.Context) error {
	art := Article{Status: StatusDraft}
	if id, err := strconv.ParseInt(c.QueryParam("theme"), 10, 64); err == nil {
		art.ThemeID = id
	}
	return a.renderArticleForm(c, art, content.Document{}, "", false)
}

func (a *App) handleAdminArticleEdit(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	art, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	msg, isErr := c.QueryParam("msg"), false
	doc, err := content.Decode([]byte(art.Content))
	if err != nil {
		a.Logger.Warn("stored content does not decode", zap.Int64("id", art.ID), zap.Error(err))
		msg, isErr = msgUnreadableContent, true
	}
	return a.renderArticleForm(c, art, doc, msg, isErr)
}

// unreadableContent returns the stored content of article id when it does
// not decode.
func (a *App) unreadableContent(id int64) (string, bool, error) {
	if id == 0 {
		return "", false, nil
	}
	stored, err := a.Store.GetArticle(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if _, err := content.Decode([]byte(stored.Content)); err != nil {
		return stored.Content, true, nil
	}
	return "", false, nil
}

func (a *App) renderArticleForm(c echo.Context, art Article, doc content.Document, msg string, isErr bool) error {
	themes, err := a.Store.ListThemes()
	if err != nil {
		return err
	}
	raw, unreadable, err := a.unreadableContent(art.ID)
	if err != nil {
		a.Logger.Error("load stored content", zap.Error(err), zap.Int64("id", art.ID))
	}
	csrf := CsrfToken(c)
	form := ArticleForm{
		Admin:        a.admin(c, msg, isErr),
		Article:      art,
		Themes:       themes,
		IsNew:        art.ID == 0,
		Editor:       newEditorState(csrf, doc),
		Presentation: PresentationState{CSRF: csrf, ArticleID: art.ID, URL: art.PresentationURL},
	}
	if unreadable {
		form.UnreadableContent = raw
	}
	return Render(c, a.Views.AdminArticleForm(form))
}

// articleFromForm reads the article form. The content field is the
// editor's serialized document; the editor fields are folded into it and the
// result is written back canonical.
func articleFromForm(c echo.Context) (Article, content.Document) {
	art := Article{
		Title:           strings.TrimSpace(c.FormValue("title")),
		Slug:            strings.TrimSpace(c.FormValue("slug")),
		Summary:         strings.TrimSpace(c.FormValue("summary")),
		Subcategory:     strings.TrimSpace(c.FormValue("subcategory")),
		ImageURL:        strings.TrimSpace(c.FormValue("image_url")),
		PresentationURL: strings.TrimSpace(c.FormValue("powerpoint_url")),
		FinalQuestions:  strings.TrimSpace(c.FormValue("final_questions")),
		Status:          Status(c.FormValue("status")),
	}
	art.ID, _ = strconv.ParseInt(c.FormValue("id"), 10, 64)
	art.ThemeID, _ = strconv.ParseInt(c.FormValue("theme_id"), 10, 64)
	art.Position, _ = strconv.Atoi(c.FormValue("position"))
	if art.Status == "" {
		art.Status = StatusDraft
	}
	if art.Slug == "" {
		art.Slug = Slugify(art.Title)
	} else {
		art.Slug = Slugify(art.Slug)
	}
	doc := content.Parse(c.FormValue("content"))
	if form, err := c.FormParams(); err == nil {
		doc = foldFields(content.Editor{}, doc, form)
	}
	art.Content = content.Encode(doc)
	return art, doc
}

func validateArticle(art Article, theme Theme, themeFound bool) error {
	if art.Title == "" {
		return invalid("Le titre est obligatoire.")
	}
	if art.Slug == "" {
		return invalid("Le slug est obligatoire.")
	}
	if art.ThemeID == 0 || !themeFound {
		return invalid("Veuillez choisir un thème.")
	}
	if !art.Status.Valid() {
		return invalid("Statut inconnu.")
	}
	if art.Subcategory != "" && len(theme.Subcategories) > 0 {
		for _, s := range theme.Subcategories {
			if s == art.Subcategory {
				return nil
			}
		}
		return invalid("Cette sous-catégorie n'existe pas dans le thème choisi.")
	}
	return nil
}

func (a *App) handleAdminArticleSave(c echo.Context) error {
	art, doc := articleFromForm(c)

	var theme Theme
	found := false
	if art.ThemeID != 0 {
		t, err := a.Store.GetTheme(art.ThemeID)
		switch {
		case err == nil:
			theme, found = t, true
		case !errors.Is(err, ErrNotFound):
			a.Logger.Error("load theme", zap.Error(err), zap.Int64("theme_id", art.ThemeID))
			return a.renderArticleForm(c, art, doc, msgSaveFailed, true)
		}
	}

	err := validateArticle(art, theme, found)
	if err == nil && c.FormValue("replace_content") != "1" {
		// Never save over stored content that does not decode unless the
		// operator asked for it.
		var unreadable bool
		if _, unreadable, err = a.unreadableContent(art.ID); err == nil && unreadable {
			err = invalid(msgUnreadableContent)
		}
	}
	if err == nil {
		if art.ID == 0 {
			art.ID, err = a.Store.CreateArticle(art)
		} else {
			err = a.Store.UpdateArticle(art)
		}
	}
	a.Metrics.Saves.WithLabelValues("article", outcome(err)).Inc()
	if err != nil {
		var verr ValidationError
		var msg string
		switch {
		case errors.As(err, &verr):
			msg = verr.Message
		case errors.Is(err, ErrSlugTaken):
			msg = "Ce slug est déjà utilisé par un autre article."
		case errors.Is(err, ErrNotFound):
			msg = "Cet article n'existe plus. Enregistrez-le comme nouvel article."
			art.ID = 0
		default:
			a.Logger.Error("save article", zap.Error(err), zap.Int64("id", art.ID), zap.String("slug", art.Slug))
			msg = msgSaveFailed
		}
		return a.renderArticleForm(c, art, doc, msg, true)
	}

	a.Cache.Invalidate()
	a.Logger.Info("article saved", zap.Int64("id", art.ID), zap.String("slug", art.Slug), zap.String("status", string(art.Status)))
	return redirectWithMessage(c, "/admin/articles/"+strconv.FormatInt(art.ID, 10)+"/", "Article enregistré.")
}

func (a *App) handleAdminArticleDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteArticle(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderAdminArticles(c, "Article introuvable.", true)
		}
		a.Logger.Error("delete article", zap.Error(err), zap.Int64("id", id))
		return a.renderAdminArticles(c, "La suppression a échoué.", true)
	}
	a.Cache.Invalidate()
	return a.renderAdminArticles(c, "Article supprimé.", false)
}
