// Package render turns a content document into HTML as templ components.
//
// Text, quote, table and embed bodies are written verbatim: the authoring side
// is trusted and nothing is sanitized. Titles, questions, labels and URLs are
// escaped.
package render

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/culturegen/content"
)

const (
	// VideoFallback is shown in place of a video whose URL cannot be embedded.
	VideoFallback = "Vidéo indisponible"
	// DefaultLinkLabel labels reference links saved without a label.
	DefaultLinkLabel = "Voir sur Wikipédia"
	// FinalQuestionsHeading introduces the final questions section.
	FinalQuestionsHeading = "Et pour finir..."
)

const videoAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

// Options tunes document rendering.
type Options struct {
	// FinalQuestionsText is the article's newline-delimited final questions
	// column. It is used only when the document carries no final questions.
	FinalQuestionsText string
}

// Document returns a component rendering every block in order, then the
// final questions.
func Document(doc content.Document, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		WriteDocument(&buf, doc, opts)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Stored parses a stored content value and renders it. Malformed values
// render as an empty document.
func Stored(stored string, opts Options) templ.Component {
	return Document(content.Parse(stored), opts)
}

// WriteDocument writes the HTML for doc to buf.
func WriteDocument(buf *bytes.Buffer, doc content.Document, opts Options) {
	buf.WriteString(`<div class="article-content">`)
	for i, b := range doc.Blocks {
		WriteBlock(buf, b, i)
		if i != len(doc.Blocks)-1 {
			buf.WriteString(`<hr class="block-separator"/>`)
		}
	}
	final := FinalQuestions(doc, opts.FinalQuestionsText)
	if len(final) > 0 {
		buf.WriteString(`<section class="final-questions-section">`)
		buf.WriteString(`<h2 class="block-final-title">` + html.EscapeString(FinalQuestionsHeading) + `</h2>`)
		writeQuestionItems(buf, final)
		buf.WriteString(`</section>`)
	}
	buf.WriteString(`</div>`)
}

// FinalQuestions returns the questions shown after the last block: the
// document's own list, or else the parsed legacy newline-delimited text.
// Questions with blank text are skipped.
func FinalQuestions(doc content.Document, legacy string) []content.Question {
	qs := doc.FinalQuestions
	if len(qs) == 0 {
		qs = content.ParseFinalQuestions(legacy)
	}
	var out []content.Question
	for _, q := range qs {
		if strings.TrimSpace(q.Text) != "" {
			out = append(out, q)
		}
	}
	return out
}

// WriteBlock writes one block. index is the block's position in the
// document and names untitled media.
func WriteBlock(buf *bytes.Buffer, b content.Block, index int) {
	buf.WriteString(`<section class="content-block"`)
	if b.ID != "" {
		buf.WriteString(` id="block-` + html.EscapeString(b.ID) + `"`)
	}
	buf.WriteString(`>`)
	if b.Title != "" {
		buf.WriteString(`<h2 class="block-title">` + html.EscapeString(b.Title) + `</h2>`)
	}
	writeBody(buf, b, index)
	writeQuestions(buf, b.Questions)
	writeLinks(buf, b.WikiLinks)
	buf.WriteString(`</section>`)
}

func writeBody(buf *bytes.Buffer, b content.Block, index int) {
	switch body := b.Body().(type) {
	case content.TextBody:
		buf.WriteString(`<div class="block-text">` + body.HTML + `</div>`)
	case content.ImageBody:
		src := SafeURL(body.URL)
		if src == "" {
			return
		}
		alt := b.Title
		if alt == "" {
			alt = "image-" + strconv.Itoa(index)
		}
		buf.WriteString(`<figure class="block-image"><img src="` + src + `" alt="` + html.EscapeString(alt) + `" loading="lazy" decoding="async"/></figure>`)
	case content.VideoBody:
		src, ok := content.EmbedURL(body.URL)
		if !ok {
			buf.WriteString(`<p class="block-video-fallback">` + html.EscapeString(VideoFallback) + `</p>`)
			return
		}
		buf.WriteString(`<div class="block-video"><iframe src="` + html.EscapeString(src) + `" title="` + html.EscapeString(frameTitle(b, "video", index)) +
			`" frameborder="0" allow="` + videoAllow + `" allowfullscreen></iframe></div>`)
	case content.QuoteBody:
		buf.WriteString(`<blockquote class="block-quote">` + body.Markup + `</blockquote>`)
	case content.TableBody:
		buf.WriteString(`<div class="block-table">` + body.HTML + `</div>`)
	case content.PodcastBody:
		src := SafeURL(body.URL)
		if src == "" {
			return
		}
		buf.WriteString(`<div class="block-podcast"><iframe src="` + src + `" title="` + html.EscapeString(frameTitle(b, "podcast", index)) +
			`" frameborder="0" loading="lazy"></iframe></div>`)
	case content.PDFBody:
		src := SafeURL(body.URL)
		if src == "" {
			return
		}
		buf.WriteString(`<div class="block-pdf"><iframe src="` + src + `" title="` + html.EscapeString(frameTitle(b, "pdf", index)) +
			`" loading="lazy"></iframe><a href="` + src + `" target="_blank" rel="noopener noreferrer">Ouvrir le PDF</a></div>`)
	case content.EmbedBody:
		buf.WriteString(`<div class="block-embed">` + body.Markup + `</div>`)
	case content.UnknownBody:
	}
}

func frameTitle(b content.Block, kind string, index int) string {
	if b.Title != "" {
		return b.Title
	}
	return kind + "-" + strconv.Itoa(index)
}

func writeQuestions(buf *bytes.Buffer, qs []content.Question) {
	if len(qs) == 0 {
		return
	}
	buf.WriteString(`<div class="block-questions"><header><span>QUESTIONS</span>`)
	buf.WriteString(`<button type="button" class="copy-btn" title="Copier les questions" data-copy="` +
		html.EscapeString(ClipboardText(qs)) + `">📋</button></header>`)
	writeQuestionItems(buf, qs)
	buf.WriteString(`</div>`)
}

func writeQuestionItems(buf *bytes.Buffer, qs []content.Question) {
	for i, q := range qs {
		buf.WriteString(`<p class="question-item">` + strconv.Itoa(i+1) + ". " + html.EscapeString(q.Text) + `</p>`)
	}
}

func writeLinks(buf *bytes.Buffer, links []content.WikiLink) {
	var kept []content.WikiLink
	for _, l := range links {
		if SafeURL(l.URL) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return
	}
	buf.WriteString(`<div class="wiki-link">`)
	for _, l := range kept {
		label := l.Label
		if strings.TrimSpace(label) == "" {
			label = DefaultLinkLabel
		}
		buf.WriteString(`<a href="` + SafeURL(l.URL) + `" target="_blank" rel="noopener noreferrer">` + html.EscapeString(label) + ` →</a>`)
	}
	buf.WriteString(`</div>`)
}

// ClipboardText formats questions the way the copy button places them on the
// clipboard: "{n}. {text}" per line, in display order.
func ClipboardText(qs []content.Question) string {
	lines := make([]string, len(qs))
	for i, q := range qs {
		lines[i] = strconv.Itoa(i+1) + ". " + q.Text
	}
	return strings.Join(lines, "\n")
}
