// Package culturegen is a publishing site for general-knowledge articles built
// with Go, Echo, and templ. Articles belong to themes and are composed of
// ordered content blocks (text, image, video, quote, table, podcast, PDF,
// embed), each with comprehension questions and reference links.
//
// Callers provide the page templates through ViewFuncs; culturegen owns the
// handlers, middleware, storage and the content editor endpoint.
package culturegen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/export"
	"github.com/eringen/culturegen/media"
)

// ViewFuncs holds the templ components the handlers render. cmd/culturegen
// wires the defaults from the views package.
type ViewFuncs struct {
	Home        func(p HomePage) templ.Component
	Theme       func(p ThemePage) templ.Component
	Article     func(p ArticlePage) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component

	AdminLogin        func(showError bool, csrfToken string) templ.Component
	AdminDashboard    func(p DashboardPage) templ.Component
	AdminThemes       func(p ThemesPage) templ.Component
	AdminThemeForm    func(p ThemeForm) templ.Component
	AdminArticles     func(p ArticlesPage) templ.Component
	AdminArticleForm  func(p ArticleForm) templ.Component
	AdminEditor       func(s EditorState) templ.Component
	AdminPresentation func(s PresentationState) templ.Component
	AdminPicker       func(s PickerState) templ.Component
	AdminMedia        func(p MediaPage) templ.Component
}

// App is the central culturegen application. It wires together the store,
// cache, media library, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *SiteCache
	Media    *media.Library
	Views    ViewFuncs
	Logger   *zap.Logger
	Metrics  *Metrics
	Registry *prometheus.Registry
	Editor   content.Editor
	Exporter *export.Converter

	loginLimiter *LoginLimiter
	mediaStore   media.Store
	customRoutes []func(*App)
}

// New creates an App with the given configuration and views. Nothing is
// opened until Init or Start.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Views:    views,
		Exporter: export.NewConverter(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init validates the config, opens the database and media backend, and
// registers middleware and routes. Start calls it; tests call it directly
// and drive a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.Logger == nil {
		logger, err := NewLogger(a.Config)
		if err != nil {
			return fmt.Errorf("culturegen: init logger: %w", err)
		}
		a.Logger = logger
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("culturegen: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewSiteCache(a.Store, a.Config.CacheTTL)

	if a.mediaStore == nil {
		ms, err := a.openMediaStore(ctx)
		if err != nil {
			return fmt.Errorf("culturegen: init media: %w", err)
		}
		a.mediaStore = ms
	}
	a.Media = media.NewLibrary(a.mediaStore)

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = NewMetrics(a.Registry)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) openMediaStore(ctx context.Context) (media.Store, error) {
	switch a.Config.Storage.Type {
	case "minio":
		return media.NewMinioStore(ctx, a.Config.Storage.minio())
	default:
		return media.NewLocalStore(a.Config.Storage.LocalPath, "/public/uploads"), nil
	}
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	return a.Serve()
}

// Serve listens on the configured address. Init must have been called.
func (a *App) Serve() error {
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo
	auth := a.requireAdmin

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	assetHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(assets))))
	e.GET("/public/culturegen.js", assetHandler)
	e.GET("/public/culturegen.css", assetHandler)

	if a.Config.Storage.Type != "minio" {
		e.Static("/public/uploads", a.Config.Storage.LocalPath)
	}
	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.Registry}))

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/theme/:slug/", a.handleTheme)
	e.GET("/article/:slug/", a.handleArticle)
	e.GET("/article/:slug/export.md", a.handleArticleExport)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	e.GET("/admin/themes/", a.handleAdminThemes, auth)
	e.GET("/admin/themes/new/", a.handleAdminThemeNew, auth)
	e.GET("/admin/themes/:id/", a.handleAdminThemeEdit, auth)
	e.POST("/admin/themes/save/", a.handleAdminThemeSave, auth)
	e.DELETE("/admin/themes/:id/", a.handleAdminThemeDelete, auth)

	e.GET("/admin/articles/", a.handleAdminArticles, auth)
	e.GET("/admin/articles/new/", a.handleAdminArticleNew, auth)
	e.GET("/admin/articles/:id/", a.handleAdminArticleEdit, auth)
	e.POST("/admin/articles/save/", a.handleAdminArticleSave, auth)
	e.DELETE("/admin/articles/:id/", a.handleAdminArticleDelete, auth)

	e.GET("/admin/editor/picker/", a.handleEditorPicker, auth)
	e.POST("/admin/editor/:action/", a.handleEditorAction, auth)

	e.GET("/admin/media/", a.handleMediaPage, auth)
	e.GET("/admin/media/list/", a.handleMediaList, auth)
	e.POST("/admin/media/upload/", a.handleMediaUpload, auth)
	e.POST("/admin/media/delete/", a.handleMediaDelete, auth)
	e.POST("/admin/presentation/upload/", a.handlePresentationUpload, auth)
	e.POST("/admin/presentation/delete/", a.handlePresentationDelete, auth)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var err error
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return err
}
