package rowmap

// CatalogEntry is one selectable key.
type CatalogEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Catalog is the fixed list of keys every selector offers, in display order.
type Catalog []CatalogEntry

// Option is a single entry of a rendered selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

func (c Catalog) Contains(id string) bool {
	for _, e := range c {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Label returns the display text for id, or "" if id is not in the catalog.
func (c Catalog) Label(id string) string {
	for _, e := range c {
		if e.ID == id {
			return e.Label
		}
	}
	return ""
}

// Options lists the catalog as selector options with the given id
// pre-selected. The empty placeholder option is not part of the result.
func (c Catalog) Options(selected string) []Option {
	result := make([]Option, len(c))
	for i, e := range c {
		result[i] = Option{
			Value:    e.ID,
			Label:    e.Label,
			Selected: e.ID == selected,
		}
	}
	return result
}
