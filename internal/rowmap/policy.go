// Package rowmap keeps an ordered list of key/quantity rows in sync with the
// JSON object that a form posts in a single hidden field.
//
// The package has no notion of HTML. Derive and Check are pure functions over
// a row list; Editor owns a row list, a row counter and the hidden field, and
// exposes a View for whatever renders it.
package rowmap

// Policy captures the differences between the editors built on top of the
// same row/mapping machinery.
type Policy struct {
	Name        string // Used for logging and metrics labels.
	HiddenField string // Name of the hidden form field receiving the JSON.

	// KeepOneRow starts the editor with one empty row and refuses to
	// remove the last remaining row.
	KeepOneRow bool

	DefaultQuantity string // Pre-filled quantity of rows added without preset.
	WholeQuantities bool   // Quantities are counts, not weights.

	// DisableSubmit makes the submit control unavailable while the editor
	// is invalid or the mapping is empty.
	DisableSubmit bool

	Placeholder    string // Label of the empty option of each selector.
	EmptyMessage   string
	InvalidMessage string
	LastRowMessage string
}

// ComponentPolicy edits the component counts of a block.
var ComponentPolicy = Policy{
	Name:            "components",
	HiddenField:     "components_json",
	DefaultQuantity: "1",
	WholeQuantities: true,
	DisableSubmit:   true,
	Placeholder:     "Select a component...",
	EmptyMessage:    "Please add at least one component before submitting.",
	InvalidMessage:  "Please correct the component errors before submitting.",
}

// MaterialPolicy edits the ore weights of a component.
var MaterialPolicy = Policy{
	Name:           "materials",
	HiddenField:    "materials_json",
	KeepOneRow:     true,
	Placeholder:    "-- Select Ore --",
	EmptyMessage:   "At least one material is required.",
	InvalidMessage: "Please correct the material errors before submitting.",
	LastRowMessage: "At least one material is required.",
}

// Step and Min are the number-input attributes matching the quantity parser.
func (p Policy) Step() string {
	if p.WholeQuantities {
		return "1"
	}
	return "0.01"
}

func (p Policy) Min() string {
	if p.WholeQuantities {
		return "1"
	}
	return "0.01"
}
