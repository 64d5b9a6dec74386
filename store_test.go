package culturegen

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickClock struct{ t time.Time }

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	clock := &tickClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	s.now = clock.now
	t.Cleanup(func() { s.Close() })
	return s
}

func mustTheme(t *testing.T, s *Store, name, slug string, subs ...string) Theme {
	t.Helper()
	th := Theme{Name: name, Slug: slug, Emoji: "📚", Color: "#336699", Subcategories: subs}
	id, err := s.CreateTheme(th)
	require.NoError(t, err)
	th.ID = id
	return th
}

func mustArticle(t *testing.T, s *Store, a Article) Article {
	t.Helper()
	if a.Status == "" {
		a.Status = StatusPublished
	}
	id, err := s.CreateArticle(a)
	require.NoError(t, err)
	got, err := s.GetArticle(id)
	require.NoError(t, err)
	return got
}

func TestThemeCRUD(t *testing.T) {
	s := setupTestStore(t)

	th := mustTheme(t, s, "Histoire", "histoire", "Antiquité", "Moyen Âge")
	got, err := s.GetTheme(th.ID)
	require.NoError(t, err)
	assert.Equal(t, "Histoire", got.Name)
	assert.Equal(t, []string{"Antiquité", "Moyen Âge"}, got.Subcategories)
	assert.False(t, got.CreatedAt.IsZero())

	got.Name = "Histoire du monde"
	got.Subcategories = nil
	require.NoError(t, s.UpdateTheme(got))

	bySlug, err := s.GetThemeBySlug("histoire")
	require.NoError(t, err)
	assert.Equal(t, "Histoire du monde", bySlug.Name)
	assert.Empty(t, bySlug.Subcategories)
	assert.True(t, bySlug.UpdatedAt.After(bySlug.CreatedAt))

	require.NoError(t, s.DeleteTheme(th.ID))
	_, err = s.GetTheme(th.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListThemesOrdersByName(t *testing.T) {
	s := setupTestStore(t)
	mustTheme(t, s, "sciences", "sciences")
	mustTheme(t, s, "Arts", "arts")
	mustTheme(t, s, "Géographie", "geographie")

	themes, err := s.ListThemes()
	require.NoError(t, err)
	require.Len(t, themes, 3)
	assert.Equal(t, "Arts", themes[0].Name)
	assert.Equal(t, "sciences", themes[2].Name)
}

func TestThemeSlugMustBeUnique(t *testing.T) {
	s := setupTestStore(t)
	mustTheme(t, s, "Arts", "arts")

	_, err := s.CreateTheme(Theme{Name: "Arts bis", Slug: "arts"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdateMissingThemeIsNotFound(t *testing.T) {
	s := setupTestStore(t)
	err := s.UpdateTheme(Theme{ID: 42, Name: "X", Slug: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteTheme(42), ErrNotFound)
}

func TestDeleteThemeWithArticlesIsRefused(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	mustArticle(t, s, Article{Title: "La Joconde", Slug: "la-joconde", ThemeID: th.ID, Status: StatusDraft})

	assert.ErrorIs(t, s.DeleteTheme(th.ID), ErrThemeInUse)
	_, err := s.GetTheme(th.ID)
	assert.NoError(t, err)
}

func TestArticleRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts", "Peinture")

	in := Article{
		Title:           "La Joconde",
		Slug:            "la-joconde",
		Summary:         "Le portrait le plus célèbre.",
		ThemeID:         th.ID,
		Subcategory:     "Peinture",
		ImageURL:        "/public/uploads/images/joconde-1.jpg",
		PresentationURL: "/public/uploads/documents/joconde-1.pptx",
		Content:         `{"blocks":[],"finalQuestions":[]}`,
		FinalQuestions:  "Qui l'a peinte ?",
		Status:          StatusPublished,
		Position:        2,
	}
	got := mustArticle(t, s, in)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Summary, got.Summary)
	assert.Equal(t, in.Subcategory, got.Subcategory)
	assert.Equal(t, in.PresentationURL, got.PresentationURL)
	assert.Equal(t, in.Content, got.Content)
	assert.Equal(t, in.FinalQuestions, got.FinalQuestions)
	assert.Equal(t, 2, got.Position)
	assert.True(t, got.Published())

	got.Title = "Mona Lisa"
	got.Status = StatusDraft
	require.NoError(t, s.UpdateArticle(got))

	_, err := s.GetArticleBySlug("la-joconde", true)
	assert.ErrorIs(t, err, ErrNotFound)
	draft, err := s.GetArticleBySlug("la-joconde", false)
	require.NoError(t, err)
	assert.Equal(t, "Mona Lisa", draft.Title)
	assert.Equal(t, got.CreatedAt, draft.CreatedAt)
}

func TestArticleSlugMustBeUnique(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	mustArticle(t, s, Article{Title: "A", Slug: "a", ThemeID: th.ID})

	_, err := s.CreateArticle(Article{Title: "B", Slug: "a", ThemeID: th.ID, Status: StatusDraft})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestListPublishedByThemeOrdersByPosition(t *testing.T) {
	s := setupTestStore(t)
	arts := mustTheme(t, s, "Arts", "arts")
	sci := mustTheme(t, s, "Sciences", "sciences")

	mustArticle(t, s, Article{Title: "Second", Slug: "second", ThemeID: arts.ID, Position: 2})
	mustArticle(t, s, Article{Title: "First", Slug: "first", ThemeID: arts.ID, Position: 1})
	mustArticle(t, s, Article{Title: "Newest unordered", Slug: "newest", ThemeID: arts.ID, Position: 2})
	mustArticle(t, s, Article{Title: "Draft", Slug: "draft", ThemeID: arts.ID, Status: StatusDraft})
	mustArticle(t, s, Article{Title: "Other", Slug: "other", ThemeID: sci.ID})

	list, err := s.ListPublishedByTheme(arts.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Slug)
	assert.Equal(t, "newest", list[1].Slug)
	assert.Equal(t, "second", list[2].Slug)

	all, err := s.ListPublished()
	require.NoError(t, err)
	assert.Len(t, all, 4)

	counts, err := s.ThemeArticleCounts()
	require.NoError(t, err)
	assert.Equal(t, 3, counts[arts.ID])
	assert.Equal(t, 1, counts[sci.ID])
}

func TestListArticlesMostRecentlyUpdatedFirst(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	a := mustArticle(t, s, Article{Title: "A", Slug: "a", ThemeID: th.ID})
	mustArticle(t, s, Article{Title: "B", Slug: "b", ThemeID: th.ID})

	a.Summary = "touched"
	require.NoError(t, s.UpdateArticle(a))

	list, err := s.ListArticles()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Slug)
}

func TestSetArticleContentKeepsTimestamp(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	a := mustArticle(t, s, Article{Title: "A", Slug: "a", ThemeID: th.ID, Content: `{"blocks":[]}`})

	require.NoError(t, s.SetArticleContent(a.ID, `{"blocks":[],"finalQuestions":[]}`))
	got, err := s.GetArticle(a.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"blocks":[],"finalQuestions":[]}`, got.Content)
	assert.Equal(t, a.UpdatedAt, got.UpdatedAt)

	assert.ErrorIs(t, s.SetArticleContent(999, "{}"), ErrNotFound)
}

func TestSetPresentationURL(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	a := mustArticle(t, s, Article{Title: "A", Slug: "a", ThemeID: th.ID})

	require.NoError(t, s.SetPresentationURL(a.ID, "/public/uploads/documents/a-1.pdf"))
	got, err := s.GetArticle(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "/public/uploads/documents/a-1.pdf", got.PresentationURL)

	assert.ErrorIs(t, s.SetPresentationURL(999, ""), ErrNotFound)
}

func TestDeleteArticle(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	a := mustArticle(t, s, Article{Title: "A", Slug: "a", ThemeID: th.ID})

	require.NoError(t, s.DeleteArticle(a.ID))
	_, err := s.GetArticle(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteArticle(a.ID), ErrNotFound)
}

func TestStats(t *testing.T) {
	s := setupTestStore(t)
	th := mustTheme(t, s, "Arts", "arts")
	mustTheme(t, s, "Sciences", "sciences")
	mustArticle(t, s, Article{Title: "A", Slug: "a", ThemeID: th.ID})
	mustArticle(t, s, Article{Title: "B", Slug: "b", ThemeID: th.ID, Status: StatusDraft})
	mustArticle(t, s, Article{Title: "C", Slug: "c", ThemeID: th.ID, Status: StatusDraft})

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{Themes: 2, Articles: 3, Published: 1, Drafts: 2}, stats)
}
