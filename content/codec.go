package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const emptyJSON = `{"blocks":[],"finalQuestions":[]}`

// Decode parses a stored document. Blank input and JSON null decode to the
// empty document. A JSON string holding an encoded document is unwrapped once.
func Decode(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Document{}, nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return Document{}, fmt.Errorf("decode content: %w", err)
		}
		data = bytes.TrimSpace([]byte(inner))
		if len(data) == 0 {
			return Document{}, nil
		}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode content: %w", err)
	}
	return doc, nil
}

// Parse converts whatever the store handed back into a Document. Text is
// decoded; already-structured values are used as they are. Malformed input
// yields the empty document, never an error.
func Parse(v any) Document {
	switch val := v.(type) {
	case nil:
		return Document{}
	case Document:
		return val.Clone()
	case *Document:
		if val == nil {
			return Document{}
		}
		return val.Clone()
	case string:
		doc, _ := Decode([]byte(val))
		return doc
	case []byte:
		doc, _ := Decode(val)
		return doc
	case json.RawMessage:
		doc, _ := Decode(val)
		return doc
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return Document{}
		}
		doc, _ := Decode(b)
		return doc
	}
}

// Encode serializes doc to its canonical stored form.
func Encode(doc Document) string {
	b, err := json.Marshal(doc)
	if err != nil {
		return emptyJSON
	}
	return string(b)
}

// Normalize rewrites a stored value into canonical form, folding legacy
// fields into their current shape. It reports whether the value changed.
// A value that does not decode is returned untouched with the decode error.
func Normalize(stored string) (string, bool, error) {
	doc, err := Decode([]byte(stored))
	if err != nil {
		return stored, false, err
	}
	out := Encode(doc)
	return out, out != stored, nil
}
