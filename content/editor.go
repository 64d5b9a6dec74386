package content

import "github.com/google/uuid"

// Editor applies edit operations to documents. Every operation returns a new
// document and leaves its input untouched. Operations that name a block,
// question or link that does not exist return an unchanged copy.
type Editor struct {
	// NewID generates identifiers for new blocks, questions and links.
	// Defaults to random UUIDs.
	NewID func() string
}

// BlockPatch lists the block fields to replace. Nil fields are left as they
// are. The block type is absent: it cannot be edited.
type BlockPatch struct {
	Title     *string
	Data      *string
	Questions []Question
	WikiLinks []WikiLink

	// SetQuestions and SetWikiLinks make an empty list an explicit replacement.
	SetQuestions bool
	SetWikiLinks bool
}

// WikiLinkPatch lists the link fields to replace.
type WikiLinkPatch struct {
	Label *string
	URL   *string
}

func (e Editor) id() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// uniqueID returns an id not used by any block, question or link in doc.
func (e Editor) uniqueID(doc Document) string {
	used := make(map[string]struct{})
	for _, b := range doc.Blocks {
		used[b.ID] = struct{}{}
		for _, q := range b.Questions {
			used[q.ID] = struct{}{}
		}
		for _, l := range b.WikiLinks {
			used[l.ID] = struct{}{}
		}
	}
	for _, q := range doc.FinalQuestions {
		used[q.ID] = struct{}{}
	}
	for {
		id := e.id()
		if _, taken := used[id]; !taken && id != "" {
			return id
		}
	}
}

// AddBlock appends an empty block of type t and returns its id.
func (e Editor) AddBlock(doc Document, t BlockType) (Document, string) {
	out := doc.Clone()
	id := e.uniqueID(doc)
	out.Blocks = append(out.Blocks, Block{ID: id, Type: t})
	return out, id
}

// UpdateBlock replaces the patched fields of block id.
func (e Editor) UpdateBlock(doc Document, id string, p BlockPatch) Document {
	return e.withBlock(doc, id, func(b *Block) {
		if p.Title != nil {
			b.Title = *p.Title
		}
		if p.Data != nil {
			b.Data = *p.Data
		}
		if p.Questions != nil || p.SetQuestions {
			b.Questions = append([]Question(nil), p.Questions...)
		}
		if p.WikiLinks != nil || p.SetWikiLinks {
			b.WikiLinks = append([]WikiLink(nil), p.WikiLinks...)
		}
	})
}

// RemoveBlock drops block id together with its questions and links.
func (e Editor) RemoveBlock(doc Document, id string) Document {
	out := doc.Clone()
	kept := out.Blocks[:0]
	for _, b := range out.Blocks {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	out.Blocks = kept
	if len(out.Blocks) == 0 {
		out.Blocks = nil
	}
	return out
}

// AddQuestion appends an empty question to block id and returns the
// question id. The returned id is empty if the block does not exist.
func (e Editor) AddQuestion(doc Document, blockID string) (Document, string) {
	if _, ok := doc.Find(blockID); !ok {
		return doc.Clone(), ""
	}
	qid := e.uniqueID(doc)
	out := e.withBlock(doc, blockID, func(b *Block) {
		b.Questions = append(b.Questions, Question{ID: qid})
	})
	return out, qid
}

// UpdateQuestion sets the text of one question of block blockID.
func (e Editor) UpdateQuestion(doc Document, blockID, questionID, text string) Document {
	return e.withBlock(doc, blockID, func(b *Block) {
		b.Questions = setQuestionText(b.Questions, questionID, text)
	})
}

// RemoveQuestion drops one question of block blockID.
func (e Editor) RemoveQuestion(doc Document, blockID, questionID string) Document {
	return e.withBlock(doc, blockID, func(b *Block) {
		b.Questions = removeQuestion(b.Questions, questionID)
	})
}

// AddFinalQuestion appends an empty final question and returns its id.
func (e Editor) AddFinalQuestion(doc Document) (Document, string) {
	out := doc.Clone()
	id := e.uniqueID(doc)
	out.FinalQuestions = append(out.FinalQuestions, Question{ID: id})
	return out, id
}

// UpdateFinalQuestion sets the text of final question id.
func (e Editor) UpdateFinalQuestion(doc Document, id, text string) Document {
	out := doc.Clone()
	out.FinalQuestions = setQuestionText(out.FinalQuestions, id, text)
	return out
}

// RemoveFinalQuestion drops final question id.
func (e Editor) RemoveFinalQuestion(doc Document, id string) Document {
	out := doc.Clone()
	out.FinalQuestions = removeQuestion(out.FinalQuestions, id)
	return out
}

// AddWikiLink appends an empty reference link to block id and returns the
// link id. The returned id is empty if the block does not exist.
func (e Editor) AddWikiLink(doc Document, blockID string) (Document, string) {
	if _, ok := doc.Find(blockID); !ok {
		return doc.Clone(), ""
	}
	lid := e.uniqueID(doc)
	out := e.withBlock(doc, blockID, func(b *Block) {
		b.WikiLinks = append(b.WikiLinks, WikiLink{ID: lid})
	})
	return out, lid
}

// UpdateWikiLink replaces the patched fields of one link of block blockID.
func (e Editor) UpdateWikiLink(doc Document, blockID, linkID string, p WikiLinkPatch) Document {
	return e.withBlock(doc, blockID, func(b *Block) {
		for i := range b.WikiLinks {
			if b.WikiLinks[i].ID != linkID {
				continue
			}
			if p.Label != nil {
				b.WikiLinks[i].Label = *p.Label
			}
			if p.URL != nil {
				b.WikiLinks[i].URL = *p.URL
			}
		}
	})
}

// RemoveWikiLink drops one link of block blockID.
func (e Editor) RemoveWikiLink(doc Document, blockID, linkID string) Document {
	return e.withBlock(doc, blockID, func(b *Block) {
		kept := b.WikiLinks[:0]
		for _, l := range b.WikiLinks {
			if l.ID != linkID {
				kept = append(kept, l)
			}
		}
		b.WikiLinks = kept
		if len(b.WikiLinks) == 0 {
			b.WikiLinks = nil
		}
	})
}

// withBlock clones doc and applies fn to the copy of block id, if present.
func (e Editor) withBlock(doc Document, id string, fn func(*Block)) Document {
	out := doc.Clone()
	for i := range out.Blocks {
		if out.Blocks[i].ID == id {
			fn(&out.Blocks[i])
			break
		}
	}
	return out
}

func setQuestionText(qs []Question, id, text string) []Question {
	for i := range qs {
		if qs[i].ID == id {
			qs[i].Text = text
		}
	}
	return qs
}

func removeQuestion(qs []Question, id string) []Question {
	kept := qs[:0]
	for _, q := range qs {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
