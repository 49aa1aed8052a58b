// Package store persists ores, components and blocks.
package store

import (
	"github.com/hzeller/se2calc/internal/catalog"
)

// Modify a record in place. Returns 'true' if the changes should be commited.
type ModifyOre func(ore *catalog.Ore) bool
type ModifyComponent func(comp *catalog.Component) bool
type ModifyBlock func(block *catalog.Block) bool

// Kind names one of the record types.
type Kind string

const (
	Ores       Kind = "ore"
	Components Kind = "component"
	Blocks     Kind = "block"
)

// ListQuery selects and orders records for listing. Term matches name or
// description, case-insensitively. Unknown sort columns fall back to name.
type ListQuery struct {
	Term   string
	Sort   string
	Desc   bool
	Offset int
	Limit  int // <= 0: no limit
}

// Interface to our storage backend.
type Store interface {
	// Find a record by its ID. Returns nil if it does not exist. Don't
	// modify the returned pointer.
	FindOre(id string) *catalog.Ore
	FindComponent(id string) *catalog.Component
	FindBlock(id string) *catalog.Block

	// Edit record of given ID. If ID is new, it is inserted and an empty
	// record returned to be edited.
	// Returns if record has been saved, possibly with message.
	EditOre(id string, update ModifyOre) (bool, string)
	EditComponent(id string, update ModifyComponent) (bool, string)
	EditBlock(id string, update ModifyBlock) (bool, string)

	// Delete record of given ID. Returns ErrNotFound if there is none.
	Delete(kind Kind, id string) error

	// List records matching the query. An error means the listing is
	// unavailable, not that it is empty.
	ListOres(q ListQuery) ([]*catalog.Ore, error)
	ListComponents(q ListQuery) ([]*catalog.Component, error)
	ListBlocks(q ListQuery) ([]*catalog.Block, error)

	// Number of records of the given kind matching the term.
	Count(kind Kind, term string) int

	// If another record of the kind (not exceptID) has this name,
	// compared case-insensitively.
	NameTaken(kind Kind, name string, exceptID string) bool
}

// LookupFor resolves references through the store.
func LookupFor(s Store) catalog.Lookup {
	return catalog.Lookup{
		Ore:       s.FindOre,
		Component: s.FindComponent,
	}
}
