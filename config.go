package culturegen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/culturegen/media"
)

// SiteConfig holds all configuration for a culturegen site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Culture Générale")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // SQLite path (default "data/culture.db")
	StaticDir    string `mapstructure:"static_dir"`    // User static assets (default "public")

	AdminPassword string `mapstructure:"admin_password"` // Required: admin login password
	SessionSecret string `mapstructure:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	CacheTTL time.Duration `mapstructure:"cache_ttl"` // Site cache TTL (default 5min)

	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error (default "info")
	LogFile  string `mapstructure:"log_file"`  // Rotated JSON log file; empty logs to stdout only

	HTMXURL string `mapstructure:"htmx_url"` // Script URL for htmx on admin pages

	Storage StorageConfig `mapstructure:"storage"`
}

// StorageConfig selects where uploaded media lives.
type StorageConfig struct {
	Type           string `mapstructure:"type"`       // "local" (default) or "minio"
	LocalPath      string `mapstructure:"local_path"` // default "{static_dir}/uploads"
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
	MinioPublicURL string `mapstructure:"minio_public_url"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Culture Générale"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "Fiches de culture générale par thème"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/culture.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTMXURL == "" {
		c.HTMXURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.LocalPath == "" {
		c.Storage.LocalPath = strings.TrimRight(c.StaticDir, "/") + "/uploads"
	}
	if c.Storage.MinioBucket == "" {
		c.Storage.MinioBucket = "culture-media"
	}
}

// Validate reports missing required settings.
func (c SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return errors.New("culturegen: admin_password is required")
	}
	if c.SessionSecret == "" {
		return errors.New("culturegen: session_secret is required")
	}
	switch c.Storage.Type {
	case "local", "":
	case "minio":
		if c.Storage.MinioEndpoint == "" {
			return errors.New("culturegen: storage.minio_endpoint is required for minio storage")
		}
	default:
		return fmt.Errorf("culturegen: unknown storage type %q", c.Storage.Type)
	}
	return nil
}

// LoadConfig reads config.yaml from dir when present, then environment
// variables prefixed with CULTURE_ (CULTURE_ADMIN_PASSWORD,
// CULTURE_STORAGE_MINIO_ENDPOINT, ...).
func LoadConfig(dir string) (SiteConfig, error) {
	v := viper.New()
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CULTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every key is bound.
	for _, key := range []string{
		"name", "url", "description", "addr", "database_path", "static_dir",
		"admin_password", "session_secret", "cookie_secure", "cache_ttl",
		"log_level", "log_file", "htmx_url",
		"storage.type", "storage.local_path",
		"storage.minio_endpoint", "storage.minio_access_key", "storage.minio_secret_key",
		"storage.minio_bucket", "storage.minio_use_ssl", "storage.minio_public_url",
	} {
		if err := v.BindEnv(key); err != nil {
			return SiteConfig{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c StorageConfig) minio() media.MinioConfig {
	return media.MinioConfig{
		Endpoint:  c.MinioEndpoint,
		AccessKey: c.MinioAccessKey,
		SecretKey: c.MinioSecretKey,
		Bucket:    c.MinioBucket,
		UseSSL:    c.MinioUseSSL,
		PublicURL: c.MinioPublicURL,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithMediaStore replaces the storage backend chosen by the config.
func WithMediaStore(s media.Store) Option {
	return func(a *App) {
		a.mediaStore = s
	}
}

// WithLogger replaces the logger built from the config.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
