package culturegen

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested theme or article does not exist.
var ErrNotFound = sql.ErrNoRows

// SiteCache is an in-memory cache of themes and published articles with TTL.
// Every admin write calls Invalidate.
type SiteCache struct {
	mu       sync.RWMutex
	themes   []Theme
	articles []Article
	loaded   bool
	fetched  time.Time
	ttl      time.Duration
	store    *Store
}

// NewSiteCache creates a SiteCache backed by the given Store.
func NewSiteCache(s *Store, ttl time.Duration) *SiteCache {
	return &SiteCache{store: s, ttl: ttl}
}

func (c *SiteCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SiteCache) Invalidate() {
	c.mu.Lock()
	c.themes = nil
	c.articles = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *SiteCache) load() error {
	if c.valid() {
		return nil
	}
	themes, err := c.store.ListThemes()
	if err != nil {
		return err
	}
	articles, err := c.store.ListPublished()
	if err != nil {
		return err
	}
	c.themes = themes
	c.articles = articles
	c.loaded = true
	c.fetched = time.Now()
	return nil
}

// ensureLoaded tries a read lock first and only takes the write lock when a
// reload is needed.
func (c *SiteCache) ensureLoaded() ([]Theme, []Article, error) {
	c.mu.RLock()
	if c.valid() {
		themes, articles := c.themes, c.articles
		c.mu.RUnlock()
		return themes, articles, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.themes, c.articles, nil
}

// Themes returns every theme ordered by name.
func (c *SiteCache) Themes() ([]Theme, error) {
	themes, _, err := c.ensureLoaded()
	return themes, err
}

// ThemeCounts returns every theme with its number of published articles.
func (c *SiteCache) ThemeCounts() ([]ThemeCount, error) {
	themes, articles, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, a := range articles {
		counts[a.ThemeID]++
	}
	out := make([]ThemeCount, 0, len(themes))
	for _, t := range themes {
		out = append(out, ThemeCount{Theme: t, Articles: counts[t.ID]})
	}
	return out, nil
}

// ThemeBySlug returns one theme from the cache.
func (c *SiteCache) ThemeBySlug(slug string) (Theme, error) {
	themes, _, err := c.ensureLoaded()
	if err != nil {
		return Theme{}, err
	}
	for _, t := range themes {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Theme{}, ErrNotFound
}

// ThemeByID returns one theme from the cache.
func (c *SiteCache) ThemeByID(id int64) (Theme, error) {
	themes, _, err := c.ensureLoaded()
	if err != nil {
		return Theme{}, err
	}
	for _, t := range themes {
		if t.ID == id {
			return t, nil
		}
	}
	return Theme{}, ErrNotFound
}

// Published returns every published article in display order.
func (c *SiteCache) Published() ([]Article, error) {
	_, articles, err := c.ensureLoaded()
	return articles, err
}

// PublishedByTheme returns the published articles of a theme, optionally
// narrowed to one subcategory.
func (c *SiteCache) PublishedByTheme(themeID int64, subcategory string) ([]Article, error) {
	_, articles, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var out []Article
	for _, a := range articles {
		if a.ThemeID != themeID {
			continue
		}
		if subcategory != "" && a.Subcategory != subcategory {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// ArticleBySlug returns a published article from the cache.
func (c *SiteCache) ArticleBySlug(slug string) (Article, error) {
	_, articles, err := c.ensureLoaded()
	if err != nil {
		return Article{}, err
	}
	for _, a := range articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}
