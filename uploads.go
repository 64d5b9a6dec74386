package culturegen

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/culturegen/media"
)

// mediaListItem is the JSON shape of the media library listing.
type mediaListItem struct {
	URL        string `json:"url"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploadedAt"`
	Size       int64  `json:"size"`
}

func (a *App) handleMediaPage(c echo.Context) error {
	return a.renderMediaPage(c, c.QueryParam("msg"), false)
}

func (a *App) renderMediaPage(c echo.Context, msg string, isErr bool) error {
	ctx := c.Request().Context()
	images, err := a.Media.Images(ctx)
	if err != nil {
		a.Logger.Error("list images", zap.Error(err))
		msg, isErr = "Impossible de lister les médias.", true
	}
	docs, err := a.Media.Documents(ctx)
	if err != nil {
		a.Logger.Error("list documents", zap.Error(err))
		msg, isErr = "Impossible de lister les médias.", true
	}
	return Render(c, a.Views.AdminMedia(MediaPage{
		Admin:     a.admin(c, msg, isErr),
		Images:    images,
		Documents: docs,
	}))
}

func (a *App) handleMediaList(c echo.Context) error {
	ctx := c.Request().Context()
	var items []media.Item
	var err error
	if c.QueryParam("kind") == "documents" {
		items, err = a.Media.Documents(ctx)
	} else {
		items, err = a.Media.Images(ctx)
	}
	if err != nil {
		return err
	}
	out := make([]mediaListItem, 0, len(items))
	for _, it := range items {
		out = append(out, mediaListItem{
			URL:        it.URL,
			Filename:   it.Filename,
			UploadedAt: it.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
			Size:       it.Size,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// uploadMessage turns an upload failure into operator text. Unexpected
// failures are logged.
func (a *App) uploadMessage(err error, kind string) string {
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		if kind == "document" {
			return "Format non pris en charge (ppt, pptx ou pdf)."
		}
		return "Format non pris en charge (jpg, png, gif, webp ou svg)."
	case errors.Is(err, media.ErrTooLarge):
		if kind == "document" {
			return "Fichier trop volumineux (50 Mo maximum)."
		}
		return "Fichier trop volumineux (10 Mo maximum)."
	}
	a.Logger.Error("upload", zap.String("kind", kind), zap.Error(err))
	return "Le téléversement a échoué. Réessayez."
}

func (a *App) storeUpload(c echo.Context, file *multipart.FileHeader, kind string) (media.Item, error) {
	src, err := file.Open()
	if err != nil {
		return media.Item{}, err
	}
	defer src.Close()

	ctx := c.Request().Context()
	var item media.Item
	if kind == "document" {
		item, err = a.Media.UploadDocument(ctx, file.Filename, src, file.Size)
	} else {
		item, err = a.Media.UploadImage(ctx, file.Filename, src, file.Size)
	}
	a.Metrics.Uploads.WithLabelValues(kind, outcome(err)).Inc()
	if err == nil {
		a.Logger.Info("media uploaded", zap.String("key", item.Key), zap.Int64("size", item.Size))
	}
	return item, err
}

func (a *App) handleMediaUpload(c echo.Context) error {
	kind := "image"
	if c.FormValue("kind") == "document" {
		kind = "document"
	}
	file, err := c.FormFile("file")
	if err != nil {
		return a.renderMediaPage(c, "Aucun fichier fourni.", true)
	}
	item, err := a.storeUpload(c, file, kind)
	if err != nil {
		return a.renderMediaPage(c, a.uploadMessage(err, kind), true)
	}
	return a.renderMediaPage(c, "Fichier ajouté : "+item.URL, false)
}

func (a *App) handleMediaDelete(c echo.Context) error {
	u := strings.TrimSpace(c.FormValue("url"))
	if err := a.Media.Delete(c.Request().Context(), u); err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return a.renderMediaPage(c, "Fichier introuvable.", true)
		}
		a.Logger.Error("delete media", zap.String("url", u), zap.Error(err))
		return a.renderMediaPage(c, "La suppression a échoué.", true)
	}
	return a.renderMediaPage(c, "Fichier supprimé.", false)
}

// handlePresentationUpload stores a slide deck for the article form. Saved
// articles are updated at once and lose their previous deck; new articles
// keep the URL in the form until they are saved.
func (a *App) handlePresentationUpload(c echo.Context) error {
	state := PresentationState{CSRF: CsrfToken(c), URL: strings.TrimSpace(c.FormValue("powerpoint_url"))}
	state.ArticleID, _ = strconv.ParseInt(c.FormValue("article_id"), 10, 64)

	file, err := c.FormFile("presentation")
	if err != nil {
		state.Error = "Aucun fichier fourni."
		return Render(c, a.Views.AdminPresentation(state))
	}
	item, err := a.storeUpload(c, file, "document")
	if err != nil {
		state.Error = a.uploadMessage(err, "document")
		return Render(c, a.Views.AdminPresentation(state))
	}

	previous := state.URL
	if state.ArticleID > 0 {
		if err := a.Store.SetPresentationURL(state.ArticleID, item.URL); err != nil {
			a.Logger.Error("attach presentation", zap.Int64("article_id", state.ArticleID), zap.Error(err))
			state.Error = msgSaveFailed
			return Render(c, a.Views.AdminPresentation(state))
		}
		a.Cache.Invalidate()
	}
	state.URL = item.URL
	if previous != "" && previous != item.URL {
		a.removeMedia(c, previous)
	}
	return Render(c, a.Views.AdminPresentation(state))
}

func (a *App) handlePresentationDelete(c echo.Context) error {
	state := PresentationState{CSRF: CsrfToken(c), URL: strings.TrimSpace(c.FormValue("powerpoint_url"))}
	state.ArticleID, _ = strconv.ParseInt(c.FormValue("article_id"), 10, 64)

	if state.ArticleID > 0 {
		if err := a.Store.SetPresentationURL(state.ArticleID, ""); err != nil {
			a.Logger.Error("detach presentation", zap.Int64("article_id", state.ArticleID), zap.Error(err))
			state.Error = "La suppression a échoué."
			return Render(c, a.Views.AdminPresentation(state))
		}
		a.Cache.Invalidate()
	}
	if state.URL != "" {
		a.removeMedia(c, state.URL)
	}
	state.URL = ""
	return Render(c, a.Views.AdminPresentation(state))
}

// removeMedia deletes a stored file that is no longer referenced. Files
// already gone or hosted elsewhere are ignored.
func (a *App) removeMedia(c echo.Context, url string) {
	err := a.Media.Delete(c.Request().Context(), url)
	if err != nil && !errors.Is(err, media.ErrNotFound) {
		a.Logger.Warn("remove media", zap.String("url", url), zap.Error(err))
	}
}
