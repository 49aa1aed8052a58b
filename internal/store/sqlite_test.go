package store

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/pkg"
)

const (
	ironID   = "0190a1b2-0000-7000-8000-000000000001"
	nickelID = "0190a1b2-0000-7000-8000-000000000002"
	plateID  = "0190a1b2-0000-7000-8000-000000000101"
	armorID  = "0190a1b2-0000-7000-8000-000000000201"
)

func ExpectTrue(t *testing.T, condition bool, message string) {
	if !condition {
		t.Errorf("Expected to succeed, but didn't: %s", message)
	}
}

func newTestStore(t *testing.T, name string) *SqlStore {
	dbfile, err := os.CreateTemp("", name)
	require.NoError(t, err)
	dbfile.Close()
	t.Cleanup(func() { syscall.Unlink(dbfile.Name()) })
	db, err := pkg.OpenSqliteDBx(dbfile.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := NewSqlStore(db, true)
	require.NoError(t, err)
	return store
}

func TestBasicStore(t *testing.T) {
	store := newTestStore(t, "basic-store")

	ExpectTrue(t, store.FindOre(ironID) == nil, "Expected iron not to exist.")

	// Create record, set name
	store.EditOre(ironID, func(o *catalog.Ore) bool {
		o.Name = "Iron Ore"
		o.Mass = 1
		return true
	})

	ExpectTrue(t, store.FindOre(ironID) != nil, "Expected iron to exist now.")

	// Edit it, but decide not to proceed
	store.EditOre(ironID, func(o *catalog.Ore) bool {
		ExpectTrue(t, o.Name == "Iron Ore", "Initial value set")
		o.Name = "Rusty"
		return false // don't commit
	})
	ExpectTrue(t, store.FindOre(ironID).Name == "Iron Ore", "Unchanged in second tx")

	// Now change it
	store.EditOre(ironID, func(o *catalog.Ore) bool {
		o.Description = "Common."
		return true
	})
	ExpectTrue(t, store.FindOre(ironID).Description == "Common.", "Description change")
}

func TestEditReportsNoChangeAndIdTampering(t *testing.T) {
	store := newTestStore(t, "no-change")
	ok, _ := store.EditOre(ironID, func(o *catalog.Ore) bool { o.Name = "Iron Ore"; o.Mass = 1; return true })
	require.True(t, ok)
	created := store.FindOre(ironID).Created
	assert.False(t, created.IsZero())

	ok, msg := store.EditOre(ironID, func(o *catalog.Ore) bool { return true })
	assert.True(t, ok)
	assert.Equal(t, "No change", msg)

	ok, msg = store.EditOre(ironID, func(o *catalog.Ore) bool { o.ID = nickelID; return true })
	assert.False(t, ok)
	assert.Equal(t, "ID was modified", msg)

	store.EditOre(ironID, func(o *catalog.Ore) bool { o.Mass = 2; return true })
	ore := store.FindOre(ironID)
	assert.Equal(t, 2.0, ore.Mass)
	assert.True(t, ore.Created.Equal(created), "created stays")
	assert.False(t, ore.Updated.Before(created))
}

func TestComponentAndBlockRoundTrip(t *testing.T) {
	store := newTestStore(t, "round-trip")
	ok, msg := store.EditComponent(plateID, func(c *catalog.Component) bool {
		c.Name = "Steel Plate"
		c.Mass = 20
		c.CraftingTime = 1.5
		c.Materials = catalog.Quantities{ironID: 21}
		return true
	})
	require.True(t, ok, msg)
	plate := store.FindComponent(plateID)
	require.NotNil(t, plate)
	assert.Equal(t, catalog.Quantities{ironID: 21}, plate.Materials)

	// Changing only the map is a change.
	_, msg = store.EditComponent(plateID, func(c *catalog.Component) bool {
		c.Materials[nickelID] = 1
		return true
	})
	assert.Equal(t, "", msg)
	assert.Len(t, store.FindComponent(plateID).Materials, 2)

	input := 5
	ok, msg = store.EditBlock(armorID, func(b *catalog.Block) bool {
		b.Name = "Light Armor Block"
		b.Mass = 500
		b.Health = 100
		b.PCU = 1
		b.SnapSize = 0.5
		b.InputMass = &input
		b.Components = catalog.Quantities{plateID: 25}
		return true
	})
	require.True(t, ok, msg)
	block := store.FindBlock(armorID)
	require.NotNil(t, block)
	require.NotNil(t, block.InputMass)
	assert.Equal(t, 5, *block.InputMass)
	assert.Nil(t, block.OutputMass)
	assert.Equal(t, catalog.Quantities{plateID: 25}, block.Components)

	_, msg = store.EditBlock(armorID, func(b *catalog.Block) bool { *b.InputMass = 5; return true })
	assert.Equal(t, "No change", msg)
}

func TestUniqueNames(t *testing.T) {
	store := newTestStore(t, "unique")
	store.EditOre(ironID, func(o *catalog.Ore) bool { o.Name = "Iron Ore"; o.Mass = 1; return true })

	assert.True(t, store.NameTaken(Ores, "iron ore", ""))
	assert.True(t, store.NameTaken(Ores, "IRON ORE", nickelID))
	assert.False(t, store.NameTaken(Ores, "Iron Ore", ironID), "own name")
	assert.False(t, store.NameTaken(Components, "Iron Ore", ""))

	ok, _ := store.EditOre(nickelID, func(o *catalog.Ore) bool { o.Name = "IRON ORE"; o.Mass = 1; return true })
	assert.False(t, ok, "index enforces unique names")
	assert.Nil(t, store.FindOre(nickelID))
}

func TestListAndCount(t *testing.T) {
	store := newTestStore(t, "list")
	for i, name := range []string{"Iron Ore", "Nickel Ore", "Gold Ore", "Ice", "100%_pure"} {
		id := fmt.Sprintf("0190a1b2-0000-7000-8000-%012d", i+1)
		store.EditOre(id, func(o *catalog.Ore) bool {
			o.Name = name
			o.Mass = float64(10 - i)
			return true
		})
	}

	names := func(ores []*catalog.Ore, err error) []string {
		require.NoError(t, err)
		var result []string
		for _, o := range ores {
			result = append(result, o.Name)
		}
		return result
	}

	assert.Equal(t, []string{"100%_pure", "Gold Ore", "Ice", "Iron Ore", "Nickel Ore"},
		names(store.ListOres(ListQuery{})))
	assert.Equal(t, []string{"Gold Ore", "Iron Ore", "Nickel Ore"},
		names(store.ListOres(ListQuery{Term: "ORE"})))
	assert.Equal(t, []string{"Iron Ore", "Nickel Ore", "Gold Ore", "Ice", "100%_pure"},
		names(store.ListOres(ListQuery{Sort: "mass", Desc: true})))
	assert.Equal(t, []string{"Nickel Ore", "Gold Ore"},
		names(store.ListOres(ListQuery{Sort: "mass", Desc: true, Offset: 1, Limit: 2})))
	assert.Equal(t, []string{"100%_pure"}, names(store.ListOres(ListQuery{Term: "%_"})),
		"wildcards are literal")
	assert.Equal(t, names(store.ListOres(ListQuery{})),
		names(store.ListOres(ListQuery{Sort: "1; DROP TABLE ore"})), "unknown sort column")

	assert.Equal(t, 5, store.Count(Ores, ""))
	assert.Equal(t, 3, store.Count(Ores, "ore"))
	assert.Equal(t, 0, store.Count(Blocks, ""))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, "delete")
	store.EditOre(ironID, func(o *catalog.Ore) bool { o.Name = "Iron Ore"; o.Mass = 1; return true })

	require.NoError(t, store.Delete(Ores, ironID))
	assert.Nil(t, store.FindOre(ironID))

	err := store.Delete(Ores, ironID)
	assert.True(t, merry.Is(err, ErrNotFound))
	assert.Equal(t, 404, merry.HTTPCode(err))
}

func TestLookupFor(t *testing.T) {
	store := newTestStore(t, "lookup")
	store.EditOre(ironID, func(o *catalog.Ore) bool { o.Name = "Iron Ore"; o.Mass = 1; return true })
	lookup := LookupFor(store)
	assert.Equal(t, "Iron Ore", lookup.Ore(ironID).Name)
	assert.Nil(t, lookup.Component(plateID))
}

func TestListReportsUnavailableDatabase(t *testing.T) {
	store := newTestStore(t, "closed")
	store.EditOre(ironID, func(o *catalog.Ore) bool { o.Name = "Iron Ore"; o.Mass = 1; return true })
	require.NoError(t, store.db.Close())

	ores, err := store.ListOres(ListQuery{})
	assert.Error(t, err)
	assert.Empty(t, ores)
	_, err = store.ListComponents(ListQuery{})
	assert.Error(t, err)
	_, err = store.ListBlocks(ListQuery{})
	assert.Error(t, err)
}
