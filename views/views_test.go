package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/culturegen"
	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/media"
	"github.com/eringen/culturegen/render"
)

var site = culturegen.SiteConfig{Name: "Culture Générale", URL: "https://culture.example", Description: "Fiches de culture générale"}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestEveryPageParses(t *testing.T) {
	for _, name := range pageNames {
		assert.NotNil(t, pages[name], name)
	}
	assert.NotNil(t, base.Lookup("editor"))
	assert.NotNil(t, base.Lookup("presentation"))
}

func TestHomeListsThemes(t *testing.T) {
	v := New(site)
	out := renderString(t, v.Home(culturegen.HomePage{
		Meta: culturegen.PageMeta{Title: site.Name, URL: "https://culture.example/"},
		Site: site,
		Themes: []culturegen.ThemeCount{
			{Theme: culturegen.Theme{Name: "Histoire", Slug: "histoire", Emoji: "🏛", Color: "#aa3300"}, Articles: 3},
			{Theme: culturegen.Theme{Name: "Arts", Slug: "arts"}, Articles: 1},
		},
	}))

	assert.Contains(t, out, `href="/theme/histoire/"`)
	assert.Contains(t, out, "3 articles")
	assert.Contains(t, out, "1 article<")
	assert.Contains(t, out, `<link rel="canonical" href="https://culture.example/">`)
	assert.Contains(t, out, `"@type":"WebSite"`)
}

func TestThemeMarksActiveSubcategory(t *testing.T) {
	v := New(site)
	out := renderString(t, v.Theme(culturegen.ThemePage{
		Meta:  culturegen.PageMeta{Title: "Histoire"},
		Site:  site,
		Theme: culturegen.Theme{Name: "Histoire", Slug: "histoire"},
		Articles: []culturegen.Article{
			{Title: "La Renaissance", Slug: "la-renaissance", Subcategory: "Époque moderne"},
		},
		Subcategories: []culturegen.SubcategoryCount{{Name: "Antiquité", Articles: 2}, {Name: "Époque moderne", Articles: 1}},
		ActiveSub:     "Époque moderne",
		Total:         3,
	}))

	assert.Contains(t, out, `class="pill" href="/theme/histoire/">Tous (3)`)
	assert.Contains(t, out, `class="pill active" href="/theme/histoire/?sub=%c3%89poque%20moderne"`)
	assert.Contains(t, out, `href="/article/la-renaissance/"`)
}

func TestArticleEmbedsBodyAndJSONLD(t *testing.T) {
	v := New(site)
	doc := content.Document{Blocks: []content.Block{{ID: "b1", Type: content.TypeText, Data: "<p>Le <strong>Louvre</strong></p>"}}}
	out := renderString(t, v.Article(culturegen.ArticlePage{
		Meta:           culturegen.PageMeta{Title: "Le Louvre"},
		Site:           site,
		Article:        culturegen.Article{Title: "Le Louvre", Slug: "le-louvre", PresentationURL: "/public/uploads/documents/louvre-1.pptx", UpdatedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		Theme:          culturegen.Theme{Name: "Arts", Slug: "arts"},
		Body:           render.Document(doc, render.Options{}),
		ReadingMinutes: 1,
		JSONLD:         `{"@type":"LearningResource"}`,
	}))

	assert.Contains(t, out, "<p>Le <strong>Louvre</strong></p>")
	assert.Contains(t, out, `<script type="application/ld+json">{"@type":"LearningResource"}</script>`)
	assert.Contains(t, out, `href="/public/uploads/documents/louvre-1.pptx" download`)
	assert.Contains(t, out, `href="/article/le-louvre/export.md"`)
	assert.Contains(t, out, "02/05/2024")
}

func TestErrorPages(t *testing.T) {
	v := New(site)
	assert.Contains(t, renderString(t, v.NotFound()), "Page introuvable")
	assert.Contains(t, renderString(t, v.ServerError()), "Une erreur est survenue")
}

func TestLoginCarriesCSRFToken(t *testing.T) {
	v := New(site)
	out := renderString(t, v.AdminLogin(true, "tok123"))
	assert.Contains(t, out, `name="_csrf" value="tok123"`)
	assert.Contains(t, out, "Mot de passe incorrect.")
}

func TestEditorRendersBlocksAndActions(t *testing.T) {
	v := New(site)
	doc := content.Document{
		Blocks: []content.Block{
			{
				ID: "b1", Type: content.TypeVideo, Title: "Le discours", Data: "https://youtu.be/dQw4w9WgXcQ",
				Questions: []content.Question{{ID: "q1", Text: "Qui parle ?"}},
				WikiLinks: []content.WikiLink{{ID: "l1", Label: "", URL: "https://fr.wikipedia.org/wiki/Discours"}},
			},
			{ID: "b2", Type: "carousel"},
		},
		FinalQuestions: []content.Question{{ID: "f1", Text: "Pourquoi ?"}},
	}
	state := culturegen.EditorState{CSRF: "tok", Doc: doc, Serialized: content.Encode(doc), Focus: "q1"}
	out := renderString(t, v.AdminEditor(state))

	assert.Contains(t, out, `id="content-editor"`)
	assert.Contains(t, out, `data-focus="q1"`)
	assert.Contains(t, out, `name="content" form="article-form"`)
	assert.Contains(t, out, `hx-include="#content-editor"`)
	assert.Contains(t, out, `hx-sync="#content-editor:replace"`)
	assert.Contains(t, out, `name="b0.title" form="article-form"`)
	assert.Contains(t, out, `name="b0.q0"`)
	assert.Contains(t, out, `name="b0.l0.url"`)
	assert.Contains(t, out, `name="f0"`)
	assert.Contains(t, out, `hx-post="/admin/editor/sync/"`)
	assert.Contains(t, out, `hx-post="/admin/editor/remove-link/"`)
	assert.NotContains(t, out, "Choisir dans la médiathèque", "video blocks take a link, not a file")
	assert.Contains(t, out, "Lien reconnu.")
	assert.Contains(t, out, "Type de bloc inconnu : carousel")
	assert.Contains(t, out, `id="b1-title"`)
	for _, opt := range content.BlockTypes() {
		assert.Contains(t, out, "+ "+opt.Label)
	}
	assert.Contains(t, out, "&#34;block&#34;:&#34;b1&#34;")
}

func TestImageBlocksOfferThePicker(t *testing.T) {
	v := New(site)
	doc := content.Document{Blocks: []content.Block{
		{ID: "b1", Type: content.TypeText},
		{ID: "b2", Type: content.TypeImage},
		{ID: "b3", Type: content.TypePDF},
	}}
	out := renderString(t, v.AdminEditor(culturegen.EditorState{CSRF: "tok", Doc: doc, Serialized: content.Encode(doc)}))

	assert.Contains(t, out, "Choisir dans la médiathèque")
	assert.Contains(t, out, `hx-get="/admin/editor/picker/?kind=images&amp;target=b2-data"`)
	assert.Contains(t, out, `hx-get="/admin/editor/picker/?kind=documents&amp;target=b3-data"`)
	assert.Contains(t, out, `id="b2-data"`)
}

func TestPickerListsItems(t *testing.T) {
	v := New(site)
	out := renderString(t, v.AdminPicker(culturegen.PickerState{
		Kind:   "images",
		Target: "b2-data",
		Items:  []media.Item{{URL: "/public/uploads/images/joconde-1.jpg", Filename: "joconde-1.jpg"}},
	}))
	assert.Contains(t, out, `data-pick="/public/uploads/images/joconde-1.jpg"`)
	assert.Contains(t, out, `data-pick-target="b2-data"`)
	assert.Contains(t, out, `<img src="/public/uploads/images/joconde-1.jpg"`)

	out = renderString(t, v.AdminPicker(culturegen.PickerState{Kind: "documents", Target: "b3-data"}))
	assert.Contains(t, out, "Aucun fichier.")
	assert.NotContains(t, out, "data-pick=")
}

func TestArticleFormShowsUnreadableContent(t *testing.T) {
	v := New(site)
	out := renderString(t, v.AdminArticleForm(culturegen.ArticleForm{
		Admin:             culturegen.Admin{CSRF: "tok"},
		Article:           culturegen.Article{ID: 3, Title: "Abîmé", Status: culturegen.StatusDraft},
		Editor:            culturegen.EditorState{CSRF: "tok", Serialized: content.Encode(content.Document{})},
		UnreadableContent: `{"blocks":[`,
	}))
	assert.Contains(t, out, "Contenu enregistré illisible")
	assert.Contains(t, out, `{&#34;blocks&#34;:[`)
	assert.Contains(t, out, `name="replace_content"`)

	out = renderString(t, v.AdminArticleForm(culturegen.ArticleForm{
		Admin:   culturegen.Admin{CSRF: "tok"},
		Article: culturegen.Article{ID: 3, Title: "Sain", Status: culturegen.StatusDraft},
		Editor:  culturegen.EditorState{CSRF: "tok", Serialized: content.Encode(content.Document{})},
	}))
	assert.NotContains(t, out, "replace_content")
}

func TestArticleFormEmbedsPartials(t *testing.T) {
	v := New(site)
	doc := content.Document{Blocks: []content.Block{{ID: "b1", Type: content.TypeText}}}
	out := renderString(t, v.AdminArticleForm(culturegen.ArticleForm{
		Admin:   culturegen.Admin{CSRF: "tok", Message: "Veuillez choisir un thème.", Error: true, HTMXURL: "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"},
		Article: culturegen.Article{Title: "Brouillon", Status: culturegen.StatusDraft, ThemeID: 2, Subcategory: "Peinture"},
		Themes: []culturegen.Theme{
			{ID: 1, Name: "Histoire"},
			{ID: 2, Name: "Arts", Subcategories: []string{"Peinture", "Sculpture"}},
		},
		IsNew:        true,
		Editor:       culturegen.EditorState{CSRF: "tok", Doc: doc, Serialized: content.Encode(doc)},
		Presentation: culturegen.PresentationState{CSRF: "tok", URL: "/public/uploads/documents/cours-1.pdf"},
	}))

	assert.Contains(t, out, `<meta name="csrf-token" content="tok">`)
	assert.Contains(t, out, `src="https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"`)
	assert.Contains(t, out, `class="flash error"`)
	assert.Contains(t, out, `<option value="2" selected>Arts</option>`)
	assert.Contains(t, out, `<option value="Peinture" selected>Peinture</option>`)
	assert.Contains(t, out, `id="content-editor"`)
	assert.Contains(t, out, `id="presentation-field"`)
	assert.Contains(t, out, "cours-1.pdf")
	assert.Contains(t, out, `form="article-form"`)
}

func TestMediaPageShowsSizes(t *testing.T) {
	v := New(site)
	out := renderString(t, v.AdminMedia(culturegen.MediaPage{
		Admin:     culturegen.Admin{CSRF: "tok"},
		Images:    []media.Item{{URL: "/public/uploads/images/joconde-1.jpg", Filename: "joconde-1.jpg", Size: 2048}},
		Documents: []media.Item{{URL: "/public/uploads/documents/cours-1.pdf", Filename: "cours-1.pdf", Size: 3_000_000}},
	}))

	assert.Contains(t, out, `data-copy="/public/uploads/images/joconde-1.jpg"`)
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "3.0 MB")
	assert.Contains(t, out, "cours-1.pdf")
}

func TestAdminListsResolveThemeNames(t *testing.T) {
	v := New(site)
	themes := map[int64]culturegen.Theme{4: {ID: 4, Name: "Sciences", Emoji: "🔬"}}
	out := renderString(t, v.AdminArticles(culturegen.ArticlesPage{
		Admin: culturegen.Admin{CSRF: "tok"},
		Articles: []culturegen.Article{
			{ID: 9, Title: "L'atome", Slug: "l-atome", ThemeID: 4, Status: culturegen.StatusPublished},
			{ID: 10, Title: "Orphelin", ThemeID: 99, Status: culturegen.StatusDraft},
		},
		Themes: themes,
	}))

	assert.Contains(t, out, "🔬 Sciences")
	assert.Contains(t, out, "Sans thème")
	assert.Contains(t, out, `hx-delete="/admin/articles/9/"`)
	assert.Contains(t, out, "Publié")
	assert.Contains(t, out, "Brouillon")
}
