package rowmap

// RowView is a row as a renderer needs it.
type RowView struct {
	ID              int
	Options         []Option
	Quantity        string
	State           RowState
	KeyInvalid      bool
	QuantityInvalid bool
}

// View is the complete render state of an editor.
type View struct {
	Name           string
	Placeholder    string
	Step           string
	Min            string
	Rows           []RowView
	NextRow        int
	Hidden         HiddenField
	SubmitDisabled bool
	Inert          bool
}

func (e *Editor) View() View {
	v := View{
		Name:           e.policy.Name,
		Placeholder:    e.policy.Placeholder,
		Step:           e.policy.Step(),
		Min:            e.policy.Min(),
		Rows:           make([]RowView, len(e.rows)),
		NextRow:        e.nextID,
		Hidden:         e.Hidden(),
		SubmitDisabled: !e.SubmitEnabled(),
		Inert:          e.inert,
	}
	for i, r := range e.rows {
		v.Rows[i] = RowView{
			ID:              r.ID,
			Options:         e.catalog.Options(r.Key),
			Quantity:        r.Quantity,
			State:           r.State(e.policy.WholeQuantities),
			KeyInvalid:      r.KeyInvalid,
			QuantityInvalid: r.QuantityInvalid,
		}
	}
	return v
}
