package culturegen

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/culturegen/content"
	"github.com/eringen/culturegen/media"
)

// Editor actions posted to /admin/editor/:action/. Every request carries the
// current serialized document in the "content" field and the current value of
// every editor field; the response is the editor partial holding the new
// document. Sync only folds the field values in.
const (
	ActionSync                = "sync"
	ActionAddBlock            = "add-block"
	ActionUpdateBlock         = "update-block"
	ActionRemoveBlock         = "remove-block"
	ActionAddQuestion         = "add-question"
	ActionUpdateQuestion      = "update-question"
	ActionRemoveQuestion      = "remove-question"
	ActionAddFinalQuestion    = "add-final-question"
	ActionUpdateFinalQuestion = "update-final-question"
	ActionRemoveFinalQuestion = "remove-final-question"
	ActionAddLink             = "add-link"
	ActionUpdateLink          = "update-link"
	ActionRemoveLink          = "remove-link"
)

// ErrUnknownAction is returned for an action or field the editor does not
// know.
var ErrUnknownAction = errors.New("unknown editor action")

// applyEditorAction runs one editor operation on doc. Parameters come from
// the form: "type" for new blocks, "block", "question" and "link" ids,
// "field" naming the edited field and "value" its new text. It returns the
// new document and the id of anything created, for scrolling into view.
// Targets that do not exist leave the document unchanged.
func applyEditorAction(ed content.Editor, doc content.Document, action string, form url.Values) (content.Document, string, error) {
	block := form.Get("block")
	value := form.Get("value")
	switch action {
	case ActionSync:
		return doc, "", nil
	case ActionAddBlock:
		t := content.BlockType(form.Get("type"))
		if !t.Valid() {
			return doc, "", fmt.Errorf("%w: block type %q", ErrUnknownAction, t)
		}
		next, id := ed.AddBlock(doc, t)
		return next, id, nil
	case ActionUpdateBlock:
		var patch content.BlockPatch
		switch form.Get("field") {
		case "title":
			patch.Title = &value
		case "data":
			patch.Data = &value
		default:
			return doc, "", fmt.Errorf("%w: block field %q", ErrUnknownAction, form.Get("field"))
		}
		return ed.UpdateBlock(doc, block, patch), "", nil
	case ActionRemoveBlock:
		return ed.RemoveBlock(doc, block), "", nil
	case ActionAddQuestion:
		next, id := ed.AddQuestion(doc, block)
		return next, id, nil
	case ActionUpdateQuestion:
		return ed.UpdateQuestion(doc, block, form.Get("question"), value), "", nil
	case ActionRemoveQuestion:
		return ed.RemoveQuestion(doc, block, form.Get("question")), "", nil
	case ActionAddFinalQuestion:
		next, id := ed.AddFinalQuestion(doc)
		return next, id, nil
	case ActionUpdateFinalQuestion:
		return ed.UpdateFinalQuestion(doc, form.Get("question"), value), "", nil
	case ActionRemoveFinalQuestion:
		return ed.RemoveFinalQuestion(doc, form.Get("question")), "", nil
	case ActionAddLink:
		next, id := ed.AddWikiLink(doc, block)
		return next, id, nil
	case ActionUpdateLink:
		var patch content.WikiLinkPatch
		switch form.Get("field") {
		case "label":
			patch.Label = &value
		case "url":
			patch.URL = &value
		default:
			return doc, "", fmt.Errorf("%w: link field %q", ErrUnknownAction, form.Get("field"))
		}
		return ed.UpdateWikiLink(doc, block, form.Get("link"), patch), "", nil
	case ActionRemoveLink:
		return ed.RemoveWikiLink(doc, block, form.Get("link")), "", nil
	}
	return doc, "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

var editorActions = map[string]bool{
	ActionSync: true, ActionAddBlock: true, ActionUpdateBlock: true, ActionRemoveBlock: true,
	ActionAddQuestion: true, ActionUpdateQuestion: true, ActionRemoveQuestion: true,
	ActionAddFinalQuestion: true, ActionUpdateFinalQuestion: true, ActionRemoveFinalQuestion: true,
	ActionAddLink: true, ActionUpdateLink: true, ActionRemoveLink: true,
}

// actionLabel keeps the metric label set bounded.
func actionLabel(action string) string {
	if editorActions[action] {
		return action
	}
	return "unknown"
}

func (a *App) handleEditorAction(c echo.Context) error {
	action := c.Param("action")
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	doc := foldFields(a.Editor, content.Parse(form.Get("content")), form)

	next, focus, err := applyEditorAction(a.Editor, doc, action, form)
	a.Metrics.EditorActions.WithLabelValues(actionLabel(action), outcome(err)).Inc()
	if err != nil {
		a.Logger.Debug("editor action rejected", zap.String("action", action), zap.Error(err))
		state := newEditorState(CsrfToken(c), doc)
		state.Error = "Action impossible."
		return RenderStatus(c, http.StatusOK, a.Views.AdminEditor(state))
	}

	state := newEditorState(CsrfToken(c), next)
	state.Focus = focus
	return Render(c, a.Views.AdminEditor(state))
}

// foldFields applies the editor field values found in form to doc. Fields
// are named by position in the document they were rendered from: b0.title,
// b0.data, b0.q1, b0.l2.label, b0.l2.url and f3 for final questions. Absent
// fields leave the document as it is.
func foldFields(ed content.Editor, doc content.Document, form url.Values) content.Document {
	for i, b := range doc.Blocks {
		prefix := "b" + strconv.Itoa(i)
		var patch content.BlockPatch
		if v, ok := fieldValue(form, prefix+".title"); ok && v != b.Title {
			patch.Title = &v
		}
		if v, ok := fieldValue(form, prefix+".data"); ok && v != b.Data {
			patch.Data = &v
		}
		if patch.Title != nil || patch.Data != nil {
			doc = ed.UpdateBlock(doc, b.ID, patch)
		}
		for j, q := range b.Questions {
			if v, ok := fieldValue(form, prefix+".q"+strconv.Itoa(j)); ok && v != q.Text {
				doc = ed.UpdateQuestion(doc, b.ID, q.ID, v)
			}
		}
		for j, l := range b.WikiLinks {
			lp := prefix + ".l" + strconv.Itoa(j)
			var lpatch content.WikiLinkPatch
			if v, ok := fieldValue(form, lp+".label"); ok && v != l.Label {
				lpatch.Label = &v
			}
			if v, ok := fieldValue(form, lp+".url"); ok && v != l.URL {
				lpatch.URL = &v
			}
			if lpatch.Label != nil || lpatch.URL != nil {
				doc = ed.UpdateWikiLink(doc, b.ID, l.ID, lpatch)
			}
		}
	}
	for j, q := range doc.FinalQuestions {
		if v, ok := fieldValue(form, "f"+strconv.Itoa(j)); ok && v != q.Text {
			doc = ed.UpdateFinalQuestion(doc, q.ID, v)
		}
	}
	return doc
}

func fieldValue(form url.Values, name string) (string, bool) {
	vs, ok := form[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// handleEditorPicker lists the images, or the PDFs, an editor field can use.
func (a *App) handleEditorPicker(c echo.Context) error {
	ctx := c.Request().Context()
	state := PickerState{Kind: "images", Target: c.QueryParam("target")}
	var err error
	if c.QueryParam("kind") == "documents" {
		state.Kind = "documents"
		var docs []media.Item
		docs, err = a.Media.Documents(ctx)
		for _, it := range docs {
			if strings.EqualFold(path.Ext(it.Key), ".pdf") {
				state.Items = append(state.Items, it)
			}
		}
	} else {
		state.Items, err = a.Media.Images(ctx)
	}
	if err != nil {
		a.Logger.Error("list media for picker", zap.String("kind", state.Kind), zap.Error(err))
		state.Error = "Impossible de lister les médias."
	}
	return Render(c, a.Views.AdminPicker(state))
}
