package views

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eringen/culturegen"
	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/render"
)

var funcs = template.FuncMap{
	"vals":        vals,
	"csrfHeader":  csrfHeader,
	"kind":        kind,
	"blockTypes":  content.BlockTypes,
	"embedURL":    embedURL,
	"plus1":       func(i int) int { return i + 1 },
	"plural":      plural,
	"jsonld":      func(s string) template.JS { return template.JS(s) },
	"websiteLD":   func(cfg culturegen.SiteConfig) template.JS { return template.JS(culturegen.WebsiteJsonLD(cfg)) },
	"date":        func(t time.Time) string { return t.Format("02/01/2006") },
	"isoDate":     func(t time.Time) string { return t.Format("2006-01-02") },
	"bytes":       func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
	"filename":    func(u string) string { return path.Base(u) },
	"pillClass":   pillClass,
	"lines":       func(s []string) string { return strings.Join(s, "\n") },
	"clipboard":   render.ClipboardText,
	"linkLabel":   linkLabel,
	"themeName":   themeName,
	"statusLabel": statusLabel,
	"pickerURL":   pickerURL,
}

// vals builds an hx-vals object from key/value pairs.
func vals(kv ...any) (string, error) {
	if len(kv)%2 != 0 {
		return "", fmt.Errorf("vals: odd number of arguments")
	}
	m := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// pickerURL is the media picker listing kind ("images" or "documents") for
// the field with id target.
func pickerURL(kind, target string) string {
	return "/admin/editor/picker/?" + url.Values{"kind": {kind}, "target": {target}}.Encode()
}

func csrfHeader(token string) (string, error) {
	b, err := json.Marshal(map[string]string{"X-CSRF-Token": token})
	return string(b), err
}

// kind names the editor fieldset to show for b.
func kind(b content.Block) string {
	switch b.Body().(type) {
	case content.TextBody:
		return "text"
	case content.ImageBody:
		return "image"
	case content.VideoBody:
		return "video"
	case content.QuoteBody:
		return "quote"
	case content.TableBody:
		return "table"
	case content.PodcastBody:
		return "podcast"
	case content.PDFBody:
		return "pdf"
	case content.EmbedBody:
		return "embed"
	default:
		return "unknown"
	}
}

func embedURL(raw string) string {
	u, ok := content.EmbedURL(raw)
	if !ok {
		return ""
	}
	return u
}

func plural(n int, one, many string) string {
	if n > 1 {
		return fmt.Sprintf("%d %s", n, many)
	}
	return fmt.Sprintf("%d %s", n, one)
}

// pillClass returns CSS classes for a subcategory pill, with active variant.
func pillClass(active bool) string {
	if active {
		return "pill active"
	}
	return "pill"
}

func linkLabel(l content.WikiLink) string {
	if strings.TrimSpace(l.Label) == "" {
		return render.DefaultLinkLabel
	}
	return l.Label
}

func themeName(themes map[int64]culturegen.Theme, id int64) string {
	t, ok := themes[id]
	if !ok {
		return "Sans thème"
	}
	if t.Emoji != "" {
		return t.Emoji + " " + t.Name
	}
	return t.Name
}

func statusLabel(s culturegen.Status) string {
	if s == culturegen.StatusPublished {
		return "Publié"
	}
	return "Brouillon"
}
