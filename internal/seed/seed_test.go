package seed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/pkg"
	"github.com/hzeller/se2calc/internal/store"
)

func newStore(t *testing.T) *store.SqlStore {
	db, err := pkg.OpenSqliteDBx(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s, err := store.NewSqlStore(db, true)
	require.NoError(t, err)
	return s
}

func TestApplyTestdata(t *testing.T) {
	f, err := LoadFile("testdata/seed.yaml")
	require.NoError(t, err)
	require.Len(t, f.Ores, 4)

	s := newStore(t)
	require.NoError(t, Apply(s, f))
	assert.Equal(t, 4, s.Count(store.Ores, ""))
	assert.Equal(t, 4, s.Count(store.Components, ""))
	assert.Equal(t, 2, s.Count(store.Blocks, ""))

	motor := s.FindComponent(ID(store.Components, "Motor"))
	require.NotNil(t, motor)
	assert.Equal(t, catalog.Quantities{
		ID(store.Ores, "Iron Ore"):   20,
		ID(store.Ores, "Nickel Ore"): 5,
	}, motor.Materials)

	conveyor := s.FindBlock(ID(store.Blocks, "Small Conveyor"))
	require.NotNil(t, conveyor)
	chain := catalog.BuildResourceChain(conveyor, store.LookupFor(s))
	// 4*3 + 4*20 + 1*21 iron, 4*5 nickel
	assert.Equal(t, 133.0, chain.TotalOreMass)

	// Loading again updates in place.
	require.NoError(t, Apply(s, f))
	assert.Equal(t, 4, s.Count(store.Ores, ""))
	assert.Equal(t, 2, s.Count(store.Blocks, ""))
}

func TestApplyReportsBadRecords(t *testing.T) {
	f, err := Parse([]byte(`
ores:
  - name: Iron Ore
    mass: 1
  - name: X
    mass: 0
components:
  - name: Plate
    mass: 1
    materials:
      Unobtainium: 3
blocks:
  - name: Frame
    mass: 1
    health: 1
    pcu: 1
    snap_size: 1
    components:
      Plate: 1
`))
	require.NoError(t, err)
	s := newStore(t)
	err = Apply(s, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ore 'X'")
	assert.Contains(t, err.Error(), "unknown ore 'Unobtainium'")
	assert.Contains(t, err.Error(), "unknown component 'Plate'")
	assert.Equal(t, 1, s.Count(store.Ores, ""))
	assert.Equal(t, 0, s.Count(store.Components, ""))
}

func TestParseRejectsBadYaml(t *testing.T) {
	_, err := Parse([]byte("ores: {name: ["))
	assert.Error(t, err)
	_, err = LoadFile("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestIDIsStable(t *testing.T) {
	assert.Equal(t, ID(store.Ores, "Iron Ore"), ID(store.Ores, "Iron Ore"))
	assert.NotEqual(t, ID(store.Ores, "Iron Ore"), ID(store.Components, "Iron Ore"))
}
