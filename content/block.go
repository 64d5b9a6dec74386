// Package content models an article's body: an ordered list of typed blocks,
// each with optional comprehension questions and reference links, followed by
// a list of final questions. The whole document is stored as one JSON value.
package content

// BlockType selects how a block is edited and rendered.
type BlockType string

const (
	TypeText    BlockType = "text"
	TypeImage   BlockType = "image"
	TypeVideo   BlockType = "video"
	TypeQuote   BlockType = "quote"
	TypeTable   BlockType = "table"
	TypePodcast BlockType = "podcast"
	TypePDF     BlockType = "pdf"
	TypeEmbed   BlockType = "embed"
)

// BlockOption is one entry of the editor's "add block" palette.
type BlockOption struct {
	Type  BlockType
	Label string
}

var blockOptions = []BlockOption{
	{TypeText, "Texte"},
	{TypeImage, "Image/Peinture"},
	{TypeVideo, "Vidéo"},
	{TypeQuote, "Citation"},
	{TypeTable, "Tableau"},
	{TypePodcast, "Podcast Radio France"},
	{TypePDF, "Fichier PDF"},
	{TypeEmbed, "Embed"},
}

// BlockTypes returns the palette of block types in display order.
func BlockTypes() []BlockOption {
	out := make([]BlockOption, len(blockOptions))
	copy(out, blockOptions)
	return out
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	for _, o := range blockOptions {
		if o.Type == t {
			return true
		}
	}
	return false
}

// Label returns the human label for t, or the raw value for unknown types.
func (t BlockType) Label() string {
	for _, o := range blockOptions {
		if o.Type == t {
			return o.Label
		}
	}
	return string(t)
}

// Question is a comprehension question, attached to a block or to the document.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// WikiLink is an external reference link shown after a block's questions.
type WikiLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Block is one typed unit of article content. Data holds the type-specific
// payload: markup for text/table/embed, quoted text for quote and a URL for
// image/video/podcast/pdf. Type never changes after creation.
type Block struct {
	ID        string     `json:"id"`
	Type      BlockType  `json:"type"`
	Title     string     `json:"title,omitempty"`
	Data      string     `json:"data"`
	Questions []Question `json:"questions"`
	WikiLinks []WikiLink `json:"wikiLinks"`
}

// Body is the typed payload of a block. The set of implementations is closed.
type Body interface {
	isBody()
}

type (
	TextBody    struct{ HTML string }
	ImageBody   struct{ URL string }
	VideoBody   struct{ URL string }
	QuoteBody   struct{ Markup string }
	TableBody   struct{ HTML string }
	PodcastBody struct{ URL string }
	PDFBody     struct{ URL string }
	EmbedBody   struct{ Markup string }
	// UnknownBody is returned for missing or unrecognized types.
	UnknownBody struct{ Type BlockType }
)

func (TextBody) isBody()    {}
func (ImageBody) isBody()   {}
func (VideoBody) isBody()   {}
func (QuoteBody) isBody()   {}
func (TableBody) isBody()   {}
func (PodcastBody) isBody() {}
func (PDFBody) isBody()     {}
func (EmbedBody) isBody()   {}
func (UnknownBody) isBody() {}

// Body returns the typed payload for b.
func (b Block) Body() Body {
	switch b.Type {
	case TypeText:
		return TextBody{HTML: b.Data}
	case TypeImage:
		return ImageBody{URL: b.Data}
	case TypeVideo:
		return VideoBody{URL: b.Data}
	case TypeQuote:
		return QuoteBody{Markup: b.Data}
	case TypeTable:
		return TableBody{HTML: b.Data}
	case TypePodcast:
		return PodcastBody{URL: b.Data}
	case TypePDF:
		return PDFBody{URL: b.Data}
	case TypeEmbed:
		return EmbedBody{Markup: b.Data}
	default:
		return UnknownBody{Type: b.Type}
	}
}

func (b Block) clone() Block {
	out := b
	out.Questions = append([]Question(nil), b.Questions...)
	out.WikiLinks = append([]WikiLink(nil), b.WikiLinks...)
	return out
}
