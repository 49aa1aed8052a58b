package rowmap

import (
	"strings"

	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

var (
	ErrLastRow    = merry.New("refusing to remove the last row")
	ErrUnknownRow = merry.New("no such row")
)

// HiddenField is the single form field the editor writes its mapping into.
type HiddenField struct {
	Name  string
	Value string
}

// Submission is the outcome of intercepting a form submit.
type Submission struct {
	Allowed bool
	Message string      // Blocking message when not allowed.
	Field   HiddenField // Zero for an inert editor.
	Mapping Mapping
}

// Editor owns an ordered set of rows, their row-id counter, the derived
// mapping and the hidden field. An Editor is not safe for concurrent use; in
// the web layer every request builds its own.
type Editor struct {
	policy  Policy
	catalog Catalog
	rows    []Row
	nextID  int
	hidden  *HiddenField
	mapping Mapping
	valid   bool
	inert   bool
	log     *structlog.Logger
}

func newEditor(policy Policy, catalog Catalog) *Editor {
	return &Editor{
		policy:  policy,
		catalog: catalog,
		nextID:  1,
		mapping: make(Mapping),
		log:     structlog.New(structlog.KeyUnit, "rowmap", "editor", policy.Name),
	}
}

// New builds an editor from existing entries. Without existing entries the
// editor starts empty, or with one empty row under a KeepOneRow policy.
func New(policy Policy, catalog Catalog, existing []Entry) *Editor {
	e := newEditor(policy, catalog)
	if policy.HiddenField == "" {
		e.disable("no hidden field to write the mapping into")
		return e
	}
	for _, x := range existing {
		e.AddRow(x.Key, FormatQuantity(x.Quantity))
	}
	if len(e.rows) == 0 && policy.KeepOneRow {
		e.AddRow("", "")
	}
	e.Recompute()
	return e
}

// NewInert returns an editor that ignores all row operations and does not
// intercept submission. It is what callers fall back to when the editor
// cannot be set up, e.g. because the catalog could not be loaded.
func NewInert(policy Policy, reason string) *Editor {
	e := newEditor(policy, nil)
	e.disable(reason)
	return e
}

// Restore rebuilds an editor from rows posted back by a form. nextID is the
// posted row counter; it is raised above every posted row id so ids are
// never handed out twice. Rows with missing or repeated ids get fresh ones.
func Restore(policy Policy, catalog Catalog, rows []Row, nextID int) *Editor {
	e := newEditor(policy, catalog)
	if policy.HiddenField == "" {
		e.disable("no hidden field to write the mapping into")
		return e
	}
	for _, r := range rows {
		if r.ID <= 0 || e.indexOf(r.ID) >= 0 {
			r.ID = 0
		}
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
		r.Key = e.knownKey(r.Key)
		r.KeyInvalid = false
		r.QuantityInvalid = false
		e.rows = append(e.rows, r)
	}
	if nextID > e.nextID {
		e.nextID = nextID
	}
	for i := range e.rows {
		if e.rows[i].ID == 0 {
			e.rows[i].ID = e.nextID
			e.nextID++
		}
	}
	e.Recompute()
	return e
}

func (e *Editor) disable(reason string) {
	e.inert = true
	e.log.PrintErr("editor disabled", "reason", reason)
}

func (e *Editor) indexOf(id int) int {
	for i := range e.rows {
		if e.rows[i].ID == id {
			return i
		}
	}
	return -1
}

// Keys outside the catalog cannot be shown as selected; they read as unset.
func (e *Editor) knownKey(key string) string {
	if key == "" || e.catalog.Contains(key) {
		return key
	}
	e.log.Warn("key not in catalog", "key", key)
	return ""
}

// AddRow appends a row with the given preset key and quantity and returns
// its id, or 0 if the editor is inert.
func (e *Editor) AddRow(key, quantity string) int {
	if e.inert {
		return 0
	}
	id := e.nextID
	e.nextID++
	e.rows = append(e.rows, Row{
		ID:       id,
		Key:      e.knownKey(key),
		Quantity: quantity,
	})
	e.log.Debug("added row", "row", id)
	e.Recompute()
	return id
}

// AddEmptyRow appends a row without key, pre-filled with the policy's
// default quantity.
func (e *Editor) AddEmptyRow() int {
	return e.AddRow("", e.policy.DefaultQuantity)
}

// RemoveRow drops the row with the given id. Under a KeepOneRow policy the
// last row stays and ErrLastRow is returned, carrying the user message.
func (e *Editor) RemoveRow(id int) error {
	if e.inert {
		return nil
	}
	i := e.indexOf(id)
	if i < 0 {
		return merry.Appendf(ErrUnknownRow, "row %d", id)
	}
	if e.policy.KeepOneRow && len(e.rows) <= 1 {
		e.log.Warn("refused to remove last row", "row", id)
		return merry.WithUserMessage(ErrLastRow, e.policy.LastRowMessage)
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	e.log.Debug("removed row", "row", id)
	e.Recompute()
	return nil
}

func (e *Editor) SetKey(id int, key string) error {
	if e.inert {
		return nil
	}
	i := e.indexOf(id)
	if i < 0 {
		return merry.Appendf(ErrUnknownRow, "row %d", id)
	}
	e.rows[i].Key = e.knownKey(key)
	e.Recompute()
	return nil
}

func (e *Editor) SetQuantity(id int, quantity string) error {
	if e.inert {
		return nil
	}
	i := e.indexOf(id)
	if i < 0 {
		return merry.Appendf(ErrUnknownRow, "row %d", id)
	}
	e.rows[i].Quantity = quantity
	e.Recompute()
	return nil
}

// Recompute derives the mapping from the current rows and writes its JSON
// into the hidden field, creating the field on first use. Field markers
// follow every change; rows not filled in since they were added are only
// marked by Validate.
func (e *Editor) Recompute() Mapping {
	if e.inert {
		return Mapping{}
	}
	whole := e.policy.WholeQuantities
	e.mapping, _ = Derive(e.rows, whole)
	v := Check(e.rows, whole)
	for i := range v.Rows {
		if e.untouched(v.Rows[i]) {
			v.Rows[i].KeyInvalid, v.Rows[i].QuantityInvalid = false, false
		}
	}
	e.rows = v.Rows
	e.valid = v.Valid
	if e.hidden == nil {
		e.hidden = &HiddenField{Name: e.policy.HiddenField}
	}
	e.hidden.Value = e.mapping.JSON()
	return e.Mapping()
}

func (e *Editor) untouched(r Row) bool {
	q := strings.TrimSpace(r.Quantity)
	return r.Key == "" && (q == "" || q == e.policy.DefaultQuantity)
}

// Validate reports whether the rows form a submittable mapping and marks
// the offending selectors and inputs.
func (e *Editor) Validate() bool {
	if e.inert {
		return false
	}
	v := Check(e.rows, e.policy.WholeQuantities)
	e.rows = v.Rows
	e.valid = v.Valid
	if len(v.Duplicates) > 0 {
		e.log.Debug("duplicate keys", "keys", v.Duplicates)
	}
	return v.Valid
}

// HandleSubmit decides whether the form may be submitted. A blocked
// submission leaves all rows untouched for correction.
func (e *Editor) HandleSubmit() Submission {
	if e.inert {
		return Submission{Allowed: true}
	}
	e.Recompute()
	valid := e.Validate()
	switch {
	case len(e.rows) == 0:
		return e.block(e.policy.EmptyMessage)
	case !valid:
		return e.block(e.policy.InvalidMessage)
	}
	e.log.Info("submit", "mapping", e.hidden.Value)
	return Submission{
		Allowed: true,
		Field:   *e.hidden,
		Mapping: e.Mapping(),
	}
}

func (e *Editor) block(msg string) Submission {
	e.log.Info("submit blocked", "reason", msg)
	return Submission{
		Message: msg,
		Field:   *e.hidden,
		Mapping: e.Mapping(),
	}
}

// SubmitEnabled is the state of the submit control.
func (e *Editor) SubmitEnabled() bool {
	if e.inert || !e.policy.DisableSubmit {
		return true
	}
	return e.valid && len(e.mapping) > 0
}

func (e *Editor) Policy() Policy   { return e.policy }
func (e *Editor) Catalog() Catalog { return e.catalog }
func (e *Editor) Inert() bool      { return e.inert }
func (e *Editor) Valid() bool      { return e.valid }
func (e *Editor) Len() int         { return len(e.rows) }
func (e *Editor) NextRow() int     { return e.nextID }

func (e *Editor) Rows() []Row {
	return append([]Row(nil), e.rows...)
}

func (e *Editor) Mapping() Mapping {
	result := make(Mapping, len(e.mapping))
	for k, q := range e.mapping {
		result[k] = q
	}
	return result
}

// Hidden returns the hidden field; zero until the first recompute.
func (e *Editor) Hidden() HiddenField {
	if e.hidden == nil {
		return HiddenField{}
	}
	return *e.hidden
}
