package content

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// wordsPerMinute is the reading speed used by ReadingMinutes.
const wordsPerMinute = 200

// PlainText returns the visible text of the document's text, quote and table
// blocks, in order, one block per line. Markup is stripped.
func PlainText(doc Document) string {
	var parts []string
	for _, b := range doc.Blocks {
		switch body := b.Body().(type) {
		case TextBody:
			parts = appendText(parts, body.HTML)
		case QuoteBody:
			parts = appendText(parts, body.Markup)
		case TableBody:
			parts = appendText(parts, body.HTML)
		}
	}
	return strings.Join(parts, "\n")
}

func appendText(parts []string, markup string) []string {
	if t := StripTags(markup); t != "" {
		parts = append(parts, t)
	}
	return parts
}

// StripTags returns the text content of an HTML fragment with whitespace
// collapsed. Script and style contents are skipped.
func StripTags(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTag(name []byte) bool {
	s := string(name)
	return s == "script" || s == "style"
}

// Excerpt returns at most n runes of the document's plain text, cut on a
// word boundary and suffixed with an ellipsis when truncated.
func Excerpt(doc Document, n int) string {
	text := strings.Join(strings.Fields(PlainText(doc)), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// ReadingMinutes estimates the reading time of the document, at least one minute.
func ReadingMinutes(doc Document) int {
	words := len(strings.Fields(PlainText(doc)))
	m := (words + wordsPerMinute - 1) / wordsPerMinute
	if m < 1 {
		return 1
	}
	return m
}
