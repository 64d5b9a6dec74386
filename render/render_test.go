package render

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/culturegen/content"
)

func renderString(t *testing.T, doc content.Document, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Document(doc, opts).Render(context.Background(), &buf))
	return buf.String()
}

func testEditor() content.Editor {
	n := 0
	return content.Editor{NewID: func() string {
		n++
		return "id" + strconv.Itoa(n)
	}}
}

func TestEditRenderScenario(t *testing.T) {
	ed := testEditor()
	doc, bid := ed.AddBlock(content.Document{}, content.TypeText)
	data := "<p>Hello</p>"
	doc = ed.UpdateBlock(doc, bid, content.BlockPatch{Data: &data})
	doc, qid := ed.AddQuestion(doc, bid)
	doc = ed.UpdateQuestion(doc, bid, qid, "What is X?")

	stored := content.Encode(doc)
	out := renderString(t, content.Parse(stored), Options{})

	assert.Contains(t, out, "<p>Hello</p>")
	assert.Contains(t, out, ">1. What is X?<")
}

func TestRemoveFirstOfTwoBlocks(t *testing.T) {
	ed := testEditor()
	doc, first := ed.AddBlock(content.Document{}, content.TypeText)
	doc, second := ed.AddBlock(doc, content.TypeQuote)
	quote := "Je pense donc je suis"
	doc = ed.UpdateBlock(doc, second, content.BlockPatch{Data: &quote})
	original, _ := doc.Find(second)

	doc = ed.RemoveBlock(doc, first)
	back := content.Parse(content.Encode(doc))
	require.Len(t, back.Blocks, 1)
	assert.Equal(t, original, back.Blocks[0])
}

func TestRenderIsIdempotent(t *testing.T) {
	doc := content.Document{
		Blocks: []content.Block{
			{ID: "a", Type: content.TypeText, Title: "T", Data: "<p>x</p>", Questions: []content.Question{{ID: "q", Text: "Q?"}}},
			{ID: "b", Type: content.TypeVideo, Data: "https://youtu.be/ABC123"},
		},
		FinalQuestions: []content.Question{{ID: "f", Text: "F?"}},
	}
	snapshot := doc.Clone()
	first := renderString(t, doc, Options{})
	second := renderString(t, doc, Options{})
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, doc)
}

func TestFinalQuestionsFromNewlineText(t *testing.T) {
	out := renderString(t, content.Document{}, Options{FinalQuestionsText: "Q1\n\nQ2"})
	assert.Equal(t, 2, strings.Count(out, `class="question-item"`))
	assert.Contains(t, out, ">1. Q1<")
	assert.Contains(t, out, ">2. Q2<")
	assert.Contains(t, out, FinalQuestionsHeading)
}

func TestDocumentFinalQuestionsWinOverLegacyText(t *testing.T) {
	doc := content.Document{FinalQuestions: []content.Question{{ID: "a", Text: "Structured"}, {ID: "b", Text: " "}}}
	out := renderString(t, doc, Options{FinalQuestionsText: "Legacy"})
	assert.Contains(t, out, ">1. Structured<")
	assert.NotContains(t, out, "Legacy")
	assert.NotContains(t, out, ">2.")
}

func TestNoFinalSectionWithoutQuestions(t *testing.T) {
	out := renderString(t, content.Document{}, Options{})
	assert.NotContains(t, out, "final-questions-section")
}

func TestVideoBlocks(t *testing.T) {
	for _, u := range []string{"https://www.youtube.com/watch?v=ABC123", "https://youtu.be/ABC123"} {
		out := renderString(t, content.Document{Blocks: []content.Block{{ID: "v", Type: content.TypeVideo, Data: u}}}, Options{})
		assert.Contains(t, out, `<iframe src="https://www.youtube.com/embed/ABC123"`, u)
		assert.NotContains(t, out, VideoFallback, u)
	}

	out := renderString(t, content.Document{Blocks: []content.Block{{ID: "v", Type: content.TypeVideo, Data: "not a url"}}}, Options{})
	assert.Contains(t, out, VideoFallback)
	assert.NotContains(t, out, "<iframe")
}

func TestUnknownTypeRendersTitleQuestionsAndLinks(t *testing.T) {
	doc := content.Document{Blocks: []content.Block{
		{
			ID: "x", Type: "carousel", Title: "Mystère", Data: "<b>hidden</b>",
			Questions: []content.Question{{ID: "q", Text: "Pourquoi ?"}},
			WikiLinks: []content.WikiLink{{ID: "w", URL: "https://fr.wikipedia.org/wiki/X"}},
		},
		{ID: "y", Type: content.TypeText, Data: "<p>after</p>"},
	}}
	out := renderString(t, doc, Options{})
	assert.Contains(t, out, "Mystère")
	assert.Contains(t, out, ">1. Pourquoi ?<")
	assert.Contains(t, out, DefaultLinkLabel+" →")
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "<p>after</p>")
}

func TestMarkupBlocksAreVerbatimOtherTextEscaped(t *testing.T) {
	doc := content.Document{Blocks: []content.Block{
		{ID: "t", Type: content.TypeTable, Title: "<i>T</i>", Data: "<table><tr><td>1</td></tr></table>"},
		{ID: "e", Type: content.TypeEmbed, Data: `<iframe src="https://embed.example"></iframe>`},
		{ID: "q", Type: content.TypeQuote, Data: "<em>Veni</em>", Questions: []content.Question{{ID: "1", Text: "<script>"}}},
	}}
	out := renderString(t, doc, Options{})
	assert.Contains(t, out, "<table><tr><td>1</td></tr></table>")
	assert.Contains(t, out, `<iframe src="https://embed.example"></iframe>`)
	assert.Contains(t, out, `<blockquote class="block-quote"><em>Veni</em></blockquote>`)
	assert.Contains(t, out, "&lt;i&gt;T&lt;/i&gt;")
	assert.Contains(t, out, "1. &lt;script&gt;")
}

func TestMediaBlocks(t *testing.T) {
	doc := content.Document{Blocks: []content.Block{
		{ID: "i", Type: content.TypeImage, Data: "https://cdn.example/a.jpg"},
		{ID: "bad", Type: content.TypeImage, Data: "javascript:alert(1)"},
		{ID: "p", Type: content.TypePodcast, Data: "https://embed.radiofrance.fr/x"},
		{ID: "d", Type: content.TypePDF, Title: "Cours", Data: "/public/uploads/documents/cours.pdf"},
	}}
	out := renderString(t, doc, Options{})
	assert.Contains(t, out, `<img src="https://cdn.example/a.jpg" alt="image-0"`)
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `<div class="block-podcast"><iframe src="https://embed.radiofrance.fr/x"`)
	assert.Contains(t, out, `href="/public/uploads/documents/cours.pdf"`)
	assert.Contains(t, out, `title="Cours"`)
}

func TestBlocksSeparatedInOrder(t *testing.T) {
	doc := content.Document{Blocks: []content.Block{
		{ID: "1", Type: content.TypeText, Data: "first"},
		{ID: "2", Type: content.TypeText, Data: "second"},
		{ID: "3", Type: content.TypeText, Data: "third"},
	}}
	out := renderString(t, doc, Options{})
	assert.Equal(t, 2, strings.Count(out, "block-separator"))
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "third"))
}

func TestLinksRenderInOrderWithLabels(t *testing.T) {
	doc := content.Document{Blocks: []content.Block{{
		ID: "a", Type: content.TypeText,
		WikiLinks: []content.WikiLink{
			{ID: "1", Label: "Un", URL: "https://one.example"},
			{ID: "2", Label: "Vide", URL: ""},
			{ID: "3", Label: "Deux", URL: "https://two.example"},
		},
	}}}
	out := renderString(t, doc, Options{})
	assert.Contains(t, out, `target="_blank" rel="noopener noreferrer">Un →</a>`)
	assert.NotContains(t, out, "Vide")
	assert.Less(t, strings.Index(out, "Un →"), strings.Index(out, "Deux →"))
}

func TestClipboardText(t *testing.T) {
	qs := []content.Question{{ID: "a", Text: "Premier ?"}, {ID: "b", Text: "Second ?"}}
	assert.Equal(t, "1. Premier ?\n2. Second ?", ClipboardText(qs))
	assert.Equal(t, "", ClipboardText(nil))

	out := renderString(t, content.Document{Blocks: []content.Block{{ID: "a", Type: content.TypeText, Questions: qs}}}, Options{})
	assert.Contains(t, out, `data-copy="1. Premier ?`+"\n"+`2. Second ?"`)
}

func TestStoredMalformedRendersEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stored("{broken", Options{}).Render(context.Background(), &buf))
	assert.Equal(t, `<div class="article-content"></div>`, buf.String())
}

func TestSafeURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://example.com/a?b=1&c=2", "https://example.com/a?b=1&amp;c=2"},
		{"/local/path", "/local/path"},
		{"#anchor", "#anchor"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"data:text/html,x", ""},
		{"relative/no-scheme", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeURL(tt.in), tt.in)
	}
}
