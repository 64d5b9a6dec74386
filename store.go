package culturegen

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrSlugTaken is returned when a theme or article slug is already used.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrThemeInUse is returned when deleting a theme that still has articles.
	ErrThemeInUse = errors.New("theme still has articles")
)

// Store wraps a SQLite database and provides CRUD operations for themes and
// articles.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the public pages read while the admin saves; writers wait on
	// the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS themes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    emoji TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    subcategories TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    summary TEXT NOT NULL DEFAULT '',
    theme_id INTEGER NOT NULL REFERENCES themes(id),
    subcategory TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    powerpoint_url TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    final_questions TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft',
    position INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_theme ON articles(theme_id, status);
`)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func parseStamp(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func translateErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrSlugTaken
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- themes ---

const themeColumns = `id, name, slug, emoji, color, subcategories, created_at, updated_at`

func scanTheme(row scanner) (Theme, error) {
	var t Theme
	var subs, created, updated string
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Emoji, &t.Color, &subs, &created, &updated); err != nil {
		return Theme{}, err
	}
	if err := json.Unmarshal([]byte(subs), &t.Subcategories); err != nil {
		t.Subcategories = nil
	}
	t.CreatedAt = parseStamp(created)
	t.UpdatedAt = parseStamp(updated)
	return t, nil
}

func encodeSubcategories(subs []string) string {
	clean := CleanSubcategories(subs)
	if clean == nil {
		clean = []string{}
	}
	b, _ := json.Marshal(clean)
	return string(b)
}

// ListThemes returns every theme ordered by name.
func (s *Store) ListThemes() ([]Theme, error) {
	rows, err := s.db.Query(`SELECT ` + themeColumns + ` FROM themes ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// GetTheme returns a theme by id.
func (s *Store) GetTheme(id int64) (Theme, error) {
	return scanTheme(s.db.QueryRow(`SELECT `+themeColumns+` FROM themes WHERE id = ?`, id))
}

// GetThemeBySlug returns a theme by slug.
func (s *Store) GetThemeBySlug(slug string) (Theme, error) {
	return scanTheme(s.db.QueryRow(`SELECT `+themeColumns+` FROM themes WHERE slug = ?`, slug))
}

// CreateTheme inserts t and returns its id.
func (s *Store) CreateTheme(t Theme) (int64, error) {
	now := s.stamp()
	res, err := s.db.Exec(`INSERT INTO themes (name, slug, emoji, color, subcategories, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Slug, t.Emoji, t.Color, encodeSubcategories(t.Subcategories), now, now)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.LastInsertId()
}

// UpdateTheme overwrites the theme with id t.ID.
func (s *Store) UpdateTheme(t Theme) error {
	res, err := s.db.Exec(`UPDATE themes SET name = ?, slug = ?, emoji = ?, color = ?, subcategories = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Slug, t.Emoji, t.Color, encodeSubcategories(t.Subcategories), s.stamp(), t.ID)
	if err != nil {
		return translateErr(err)
	}
	return affected(res)
}

// DeleteTheme removes a theme. Themes that still own articles are kept and
// ErrThemeInUse is returned.
func (s *Store) DeleteTheme(id int64) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE theme_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrThemeInUse
	}
	res, err := s.db.Exec(`DELETE FROM themes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// ThemeArticleCounts returns the number of published articles per theme id.
func (s *Store) ThemeArticleCounts() (map[int64]int, error) {
	rows, err := s.db.Query(`SELECT theme_id, COUNT(*) FROM articles WHERE status = ? GROUP BY theme_id`, string(StatusPublished))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// --- articles ---

const articleColumns = `id, title, slug, summary, theme_id, subcategory, image_url, powerpoint_url, content, final_questions, status, position, created_at, updated_at`

func scanArticle(row scanner) (Article, error) {
	var a Article
	var status, created, updated string
	if err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Summary, &a.ThemeID, &a.Subcategory, &a.ImageURL,
		&a.PresentationURL, &a.Content, &a.FinalQuestions, &status, &a.Position, &created, &updated); err != nil {
		return Article{}, err
	}
	a.Status = Status(status)
	a.CreatedAt = parseStamp(created)
	a.UpdatedAt = parseStamp(updated)
	return a, nil
}

func (s *Store) queryArticles(query string, args ...any) ([]Article, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetArticle returns an article by id regardless of status.
func (s *Store) GetArticle(id int64) (Article, error) {
	return scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
}

// GetArticleBySlug returns an article by slug. With publishedOnly set,
// drafts are reported as ErrNotFound.
func (s *Store) GetArticleBySlug(slug string, publishedOnly bool) (Article, error) {
	if publishedOnly {
		return scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ? AND status = ?`, slug, string(StatusPublished)))
	}
	return scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug))
}

// ListArticles returns every article, most recently edited first.
func (s *Store) ListArticles() ([]Article, error) {
	return s.queryArticles(`SELECT ` + articleColumns + ` FROM articles ORDER BY updated_at DESC, id DESC`)
}

// ListPublished returns every published article in display order.
func (s *Store) ListPublished() ([]Article, error) {
	return s.queryArticles(`SELECT `+articleColumns+` FROM articles WHERE status = ? ORDER BY position ASC, created_at DESC, id DESC`, string(StatusPublished))
}

// ListPublishedByTheme returns the published articles of one theme in
// display order.
func (s *Store) ListPublishedByTheme(themeID int64) ([]Article, error) {
	return s.queryArticles(`SELECT `+articleColumns+` FROM articles WHERE status = ? AND theme_id = ? ORDER BY position ASC, created_at DESC, id DESC`,
		string(StatusPublished), themeID)
}

// CreateArticle inserts a and returns its id.
func (s *Store) CreateArticle(a Article) (int64, error) {
	now := s.stamp()
	res, err := s.db.Exec(`INSERT INTO articles (title, slug, summary, theme_id, subcategory, image_url, powerpoint_url, content, final_questions, status, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.Slug, a.Summary, a.ThemeID, a.Subcategory, a.ImageURL, a.PresentationURL, a.Content,
		a.FinalQuestions, string(a.Status), a.Position, now, now)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.LastInsertId()
}

// UpdateArticle overwrites every editable field of the article with id a.ID.
func (s *Store) UpdateArticle(a Article) error {
	res, err := s.db.Exec(`UPDATE articles SET title = ?, slug = ?, summary = ?, theme_id = ?, subcategory = ?, image_url = ?, powerpoint_url = ?,
content = ?, final_questions = ?, status = ?, position = ?, updated_at = ? WHERE id = ?`,
		a.Title, a.Slug, a.Summary, a.ThemeID, a.Subcategory, a.ImageURL, a.PresentationURL, a.Content,
		a.FinalQuestions, string(a.Status), a.Position, s.stamp(), a.ID)
	if err != nil {
		return translateErr(err)
	}
	return affected(res)
}

// SetArticleContent replaces only the serialized content document. The
// edit timestamp is left alone.
func (s *Store) SetArticleContent(id int64, content string) error {
	res, err := s.db.Exec(`UPDATE articles SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// SetPresentationURL replaces the presentation document of an article.
func (s *Store) SetPresentationURL(id int64, url string) error {
	res, err := s.db.Exec(`UPDATE articles SET powerpoint_url = ?, updated_at = ? WHERE id = ?`, url, s.stamp(), id)
	if err != nil {
		return err
	}
	return affected(res)
}

// DeleteArticle removes an article by id.
func (s *Store) DeleteArticle(id int64) error {
	res, err := s.db.Exec(`DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Stats counts themes and articles for the dashboard.
func (s *Store) Stats() (DashboardStats, error) {
	var st DashboardStats
	err := s.db.QueryRow(`SELECT
    (SELECT COUNT(*) FROM themes),
    (SELECT COUNT(*) FROM articles),
    (SELECT COUNT(*) FROM articles WHERE status = ?)`, string(StatusPublished)).
		Scan(&st.Themes, &st.Articles, &st.Published)
	if err != nil {
		return DashboardStats{}, err
	}
	st.Drafts = st.Articles - st.Published
	return st, nil
}
