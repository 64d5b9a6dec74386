// Package export converts articles to Markdown.
package export

import (
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/render"
)

// Meta carries the article fields written around the content document.
type Meta struct {
	Title   string
	Summary string
	// URL is the canonical address of the article, written as a source line.
	URL string
	// PresentationURL links the downloadable slide deck, if any.
	PresentationURL string
	// FinalQuestionsText is the legacy newline-delimited final questions.
	FinalQuestionsText string
}

// Converter turns documents into Markdown.
type Converter struct {
	conv *md.Converter
}

// NewConverter returns a converter with GitHub-flavored tables enabled.
func NewConverter() *Converter {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	return &Converter{conv: conv}
}

var defaultConverter = NewConverter()

// Markdown converts an article with the default converter.
func Markdown(meta Meta, doc content.Document) (string, error) {
	return defaultConverter.Markdown(meta, doc)
}

// Markdown renders the title, summary, every block in order with its
// questions and links, and the final questions.
func (c *Converter) Markdown(meta Meta, doc content.Document) (string, error) {
	var parts []string
	if t := strings.TrimSpace(meta.Title); t != "" {
		parts = append(parts, "# "+t)
	}
	if s := strings.TrimSpace(meta.Summary); s != "" {
		parts = append(parts, "_"+s+"_")
	}
	if meta.URL != "" {
		parts = append(parts, "Source : <"+meta.URL+">")
	}

	var blocks []string
	for i, b := range doc.Blocks {
		out, err := c.block(b, i)
		if err != nil {
			return "", err
		}
		if out != "" {
			blocks = append(blocks, out)
		}
	}
	if len(blocks) > 0 {
		parts = append(parts, strings.Join(blocks, "\n\n---\n\n"))
	}

	if final := render.FinalQuestions(doc, meta.FinalQuestionsText); len(final) > 0 {
		parts = append(parts, "## "+render.FinalQuestionsHeading+"\n\n"+numbered(final))
	}
	if meta.PresentationURL != "" {
		parts = append(parts, "[Télécharger la présentation]("+meta.PresentationURL+")")
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func (c *Converter) block(b content.Block, index int) (string, error) {
	var parts []string
	if t := strings.TrimSpace(b.Title); t != "" {
		parts = append(parts, "## "+t)
	}

	body, err := c.body(b, index)
	if err != nil {
		return "", err
	}
	if body != "" {
		parts = append(parts, body)
	}

	if len(b.Questions) > 0 {
		parts = append(parts, "**Questions**\n\n"+numbered(b.Questions))
	}

	var links []string
	for _, l := range b.WikiLinks {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		label := strings.TrimSpace(l.Label)
		if label == "" {
			label = render.DefaultLinkLabel
		}
		links = append(links, "- ["+label+"]("+l.URL+")")
	}
	if len(links) > 0 {
		parts = append(parts, strings.Join(links, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (c *Converter) body(b content.Block, index int) (string, error) {
	switch body := b.Body().(type) {
	case content.TextBody:
		return c.html(body.HTML)
	case content.TableBody:
		return c.html(body.HTML)
	case content.EmbedBody:
		return c.html(body.Markup)
	case content.QuoteBody:
		text, err := c.html(body.Markup)
		if err != nil || text == "" {
			return "", err
		}
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight("> "+l, " ")
		}
		return strings.Join(lines, "\n"), nil
	case content.ImageBody:
		if body.URL == "" {
			return "", nil
		}
		alt := b.Title
		if alt == "" {
			alt = "image-" + strconv.Itoa(index)
		}
		return "![" + alt + "](" + body.URL + ")", nil
	case content.VideoBody:
		if body.URL == "" {
			return "", nil
		}
		return "[Vidéo](" + body.URL + ")", nil
	case content.PodcastBody:
		if body.URL == "" {
			return "", nil
		}
		return "[Podcast](" + body.URL + ")", nil
	case content.PDFBody:
		if body.URL == "" {
			return "", nil
		}
		return "[Ouvrir le PDF](" + body.URL + ")", nil
	}
	return "", nil
}

func (c *Converter) html(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	out, err := c.conv.ConvertString(markup)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func numbered(qs []content.Question) string {
	var lines []string
	for _, q := range qs {
		if strings.TrimSpace(q.Text) == "" {
			continue
		}
		lines = append(lines, strconv.Itoa(len(lines)+1)+". "+q.Text)
	}
	return strings.Join(lines, "\n")
}
