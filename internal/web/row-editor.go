package web

import (
	"net/http"
	"strconv"

	"github.com/ansel1/merry"

	"github.com/hzeller/se2calc/internal/rowmap"
	"github.com/hzeller/se2calc/internal/store"
)

// Buttons of the row editor. Every row has its own remove button carrying
// the row id as value.
const (
	kAddRow    = "add_row"
	kRemoveRow = "remove_row"
	kSend      = "send"
	kNextRow   = "next_row"
	kRowID     = "row_id"
	kRowKey    = "row_key"
	kRowQty    = "row_qty"
)

// editorForm is a row editor rebuilt from a request with the pressed
// button applied.
type editorForm struct {
	editor     *rowmap.Editor
	action     string // kAddRow, kRemoveRow, kSend or "" for just showing
	alert      string // Blocking message for the user
	submission rowmap.Submission
}

// postedRows reads the parallel row arrays. Only complete triples count.
func postedRows(r *http.Request) []rowmap.Row {
	ids, keys, qtys := r.PostForm[kRowID], r.PostForm[kRowKey], r.PostForm[kRowQty]
	n := len(ids)
	if len(keys) < n {
		n = len(keys)
	}
	if len(qtys) < n {
		n = len(qtys)
	}
	if n != len(ids) || n != len(keys) || n != len(qtys) {
		log.Warn("row arrays differ in length", "ids", len(ids), "keys", len(keys), "quantities", len(qtys))
	}
	rows := make([]rowmap.Row, n)
	for i := 0; i < n; i++ {
		id, _ := strconv.Atoi(ids[i])
		rows[i] = rowmap.Row{ID: id, Key: keys[i], Quantity: qtys[i]}
	}
	return rows
}

// runEditor restores the editor from a posted form, or starts it from
// existing entries when the form is shown for the first time. The pressed
// button is applied afterwards. Without a catalog the editor is inert.
func runEditor(r *http.Request, policy rowmap.Policy, cat rowmap.Catalog, catErr error, existing []rowmap.Entry) *editorForm {
	result := &editorForm{}
	var e *rowmap.Editor
	switch {
	case catErr != nil:
		e = rowmap.NewInert(policy, catErr.Error())
	case r.Method != http.MethodPost:
		result.editor = rowmap.New(policy, cat, existing)
		return result
	case r.PostFormValue(kNextRow) != "":
		nextRow, _ := strconv.Atoi(r.PostFormValue(kNextRow))
		e = rowmap.Restore(policy, cat, postedRows(r), nextRow)
	default:
		// Posted without row state, e.g. by a script: the hidden field
		// alone carries the mapping.
		entries, err := rowmap.ParseExisting(r.PostFormValue(policy.HiddenField))
		if err != nil {
			log.Warn("ignoring posted mapping", "editor", policy.Name, "err", err)
			entries = nil
		}
		if entries == nil {
			entries = existing
		}
		e = rowmap.New(policy, cat, entries)
	}
	result.editor = e
	if r.Method != http.MethodPost {
		return result
	}

	switch {
	case r.PostFormValue(kAddRow) != "":
		result.action = kAddRow
		e.AddEmptyRow()
	case r.PostFormValue(kRemoveRow) != "":
		result.action = kRemoveRow
		id, err := strconv.Atoi(r.PostFormValue(kRemoveRow))
		if err == nil {
			err = e.RemoveRow(id)
		} else {
			err = merry.Append(rowmap.ErrUnknownRow, r.PostFormValue(kRemoveRow))
		}
		if err != nil {
			if msg := merry.UserMessage(err); msg != "" {
				result.alert = msg
			}
			log.Debug("remove row", "editor", policy.Name, "err", err)
		}
	case r.PostFormValue(kSend) != "":
		result.action = kSend
		result.submission = e.HandleSubmit()
		if !result.submission.Allowed {
			result.alert = result.submission.Message
		}
	}
	if result.action != "" {
		editorActions.WithLabelValues(policy.Name, result.action).Inc()
	}
	return result
}

// Submitted reports if the send button was pressed and the editor let the
// submission pass.
func (f *editorForm) Submitted() bool {
	return f.action == kSend && f.submission.Allowed
}

// MappingText is the JSON the hidden field carries. An inert editor does
// not write the field, so the posted value is used as is.
func (f *editorForm) MappingText(r *http.Request) string {
	if f.submission.Field.Name != "" {
		return f.submission.Field.Value
	}
	return r.PostFormValue(f.editor.Policy().HiddenField)
}

func oreCatalog(s store.Store) (rowmap.Catalog, error) {
	ores, err := s.ListOres(store.ListQuery{})
	if err != nil {
		return nil, merry.Prepend(err, "ore catalog")
	}
	result := rowmap.Catalog{}
	for _, o := range ores {
		result = append(result, rowmap.CatalogEntry{ID: o.ID, Label: o.Name})
	}
	return result, nil
}

func componentCatalog(s store.Store) (rowmap.Catalog, error) {
	components, err := s.ListComponents(store.ListQuery{})
	if err != nil {
		return nil, merry.Prepend(err, "component catalog")
	}
	result := rowmap.Catalog{}
	for _, c := range components {
		result = append(result, rowmap.CatalogEntry{ID: c.ID, Label: c.Name})
	}
	return result, nil
}
