package content

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Document is the full body of an article. Block order is display order.
// Empty lists are held as nil and always serialized as [].
type Document struct {
	Blocks         []Block    `json:"blocks"`
	FinalQuestions []Question `json:"finalQuestions"`
}

// Empty reports whether the document has neither blocks nor final questions.
func (d Document) Empty() bool {
	return len(d.Blocks) == 0 && len(d.FinalQuestions) == 0
}

// Clone returns a deep copy of d. Mutating the copy never affects d. Empty
// lists come back nil, the same shape Decode produces.
func (d Document) Clone() Document {
	var out Document
	if len(d.Blocks) > 0 {
		out.Blocks = make([]Block, len(d.Blocks))
		for i, b := range d.Blocks {
			out.Blocks[i] = b.clone()
		}
	}
	out.FinalQuestions = append([]Question(nil), d.FinalQuestions...)
	return out
}

// Find returns the block with the given id.
func (d Document) Find(id string) (Block, bool) {
	for _, b := range d.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// MarshalJSON writes the canonical shape: nil lists become [].
func (d Document) MarshalJSON() ([]byte, error) {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	fq := d.FinalQuestions
	if fq == nil {
		fq = []Question{}
	}
	return json.Marshal(struct {
		Blocks         []Block    `json:"blocks"`
		FinalQuestions []Question `json:"finalQuestions"`
	}{blocks, fq})
}

// UnmarshalJSON accepts finalQuestions either as a list of questions or as a
// newline-delimited string.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Blocks         []Block         `json:"blocks"`
		FinalQuestions json.RawMessage `json:"finalQuestions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Blocks = nil
	if len(raw.Blocks) > 0 {
		d.Blocks = raw.Blocks
		renameLegacyLinks(d.Blocks)
	}
	d.FinalQuestions = nil

	fq := bytes.TrimSpace(raw.FinalQuestions)
	switch {
	case len(fq) == 0 || bytes.Equal(fq, []byte("null")):
	case fq[0] == '"':
		var s string
		if err := json.Unmarshal(fq, &s); err != nil {
			return err
		}
		d.FinalQuestions = ParseFinalQuestions(s)
	default:
		var qs []Question
		if err := json.Unmarshal(fq, &qs); err != nil {
			return err
		}
		if len(qs) > 0 {
			d.FinalQuestions = qs
		}
	}
	return nil
}

// MarshalJSON writes data (never the legacy content alias) and [] for empty lists.
func (b Block) MarshalJSON() ([]byte, error) {
	type blockJSON Block
	out := blockJSON(b)
	if out.Questions == nil {
		out.Questions = []Question{}
	}
	if out.WikiLinks == nil {
		out.WikiLinks = []WikiLink{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the canonical shape and the legacy variants: "content"
// as an alias of "data", and a single "wikipediaLink" given as a URL string or
// as a {label, url} object, which is folded into WikiLinks.
func (b *Block) UnmarshalJSON(data []byte) error {
	type blockJSON Block
	var raw struct {
		blockJSON
		ID            json.RawMessage `json:"id"`
		Content       *string         `json:"content"`
		WikipediaLink json.RawMessage `json:"wikipediaLink"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Block(raw.blockJSON)
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	b.ID = id
	if b.Data == "" && raw.Content != nil {
		b.Data = *raw.Content
	}
	if len(b.Questions) == 0 {
		b.Questions = nil
	}
	if len(b.WikiLinks) == 0 {
		b.WikiLinks = nil
	}
	if link, ok := legacyWikiLink(raw.WikipediaLink); ok {
		link.ID = b.ID + legacyLinkSuffix
		if !b.hasLink(link.URL) {
			b.WikiLinks = append(b.WikiLinks, link)
		}
	}
	return nil
}

const legacyLinkSuffix = "-wiki"

// renameLegacyLinks gives links folded from wikipediaLink an id that no block
// and no other link of the same block uses.
func renameLegacyLinks(blocks []Block) {
	used := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		used[b.ID] = struct{}{}
	}
	for i := range blocks {
		b := &blocks[i]
		// The folded link is appended last, so it is the one renamed.
		for j := len(b.WikiLinks) - 1; j >= 0; j-- {
			l := b.WikiLinks[j]
			if l.ID != b.ID+legacyLinkSuffix || !linkIDTaken(used, b.WikiLinks, j) {
				continue
			}
			for n := 2; ; n++ {
				id := l.ID + "-" + strconv.Itoa(n)
				b.WikiLinks[j].ID = id
				if !linkIDTaken(used, b.WikiLinks, j) {
					break
				}
			}
		}
	}
}

func linkIDTaken(blockIDs map[string]struct{}, links []WikiLink, i int) bool {
	id := links[i].ID
	if _, ok := blockIDs[id]; ok {
		return true
	}
	for j, l := range links {
		if j != i && l.ID == id {
			return true
		}
	}
	return false
}

func (b Block) hasLink(url string) bool {
	for _, l := range b.WikiLinks {
		if l.URL == url {
			return true
		}
	}
	return false
}

func legacyWikiLink(raw json.RawMessage) (WikiLink, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return WikiLink{}, false
	}
	var link WikiLink
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &link.URL); err != nil {
			return WikiLink{}, false
		}
	case '{':
		var obj struct {
			Label string `json:"label"`
			URL   string `json:"url"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return WikiLink{}, false
		}
		link.Label, link.URL = obj.Label, obj.URL
	default:
		return WikiLink{}, false
	}
	link.URL = strings.TrimSpace(link.URL)
	return link, link.URL != ""
}

// UnmarshalJSON accepts numeric ids, which older final-question lists used.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Text string          `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	q.ID, q.Text = id, raw.Text
	return nil
}

// UnmarshalJSON accepts numeric ids like Question does.
func (l *WikiLink) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Label string          `json:"label"`
		URL   string          `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	l.ID, l.Label, l.URL = id, raw.Label, raw.URL
	return nil
}

// decodeID reads an id given as a JSON string or number. Missing and null
// ids are empty.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// ParseFinalQuestions splits a newline-delimited list into questions, dropping
// blank lines. Ids are the 1-based positions.
func ParseFinalQuestions(s string) []Question {
	var out []Question
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, Question{ID: strconv.Itoa(len(out) + 1), Text: line})
	}
	return out
}
