package rowmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	for _, tc := range []struct {
		in    string
		whole bool
		want  float64
		ok    bool
	}{
		{"3", true, 3, true},
		{" 12 ", true, 12, true},
		{"0", true, 0, false},
		{"-2", true, 0, false},
		{"2.5", true, 0, false},
		{"abc", true, 0, false},
		{"", true, 0, false},
		{"5.5", false, 5.5, true},
		{"0.01", false, 0.01, true},
		{"0", false, 0, false},
		{"-0.5", false, 0, false},
		{"NaN", false, 0, false},
		{"Inf", false, 0, false},
		{"1e2", false, 100, true},
	} {
		got, ok := ParseQuantity(tc.in, tc.whole)
		assert.Equal(t, tc.ok, ok, "%q whole=%v", tc.in, tc.whole)
		assert.Equal(t, tc.want, got, "%q whole=%v", tc.in, tc.whole)
	}
}

func TestRowState(t *testing.T) {
	assert.Equal(t, RowEmpty, Row{}.State(false))
	assert.Equal(t, RowPartial, Row{Key: "a"}.State(false))
	assert.Equal(t, RowPartial, Row{Quantity: "1"}.State(true))
	assert.Equal(t, RowPartial, Row{Key: "a", Quantity: "0"}.State(false))
	assert.Equal(t, RowComplete, Row{Key: "a", Quantity: "2"}.State(true))
	assert.Equal(t, "complete", RowComplete.String())
}

func TestDeriveOnlyCompleteRowsContribute(t *testing.T) {
	rows := []Row{
		{ID: 1, Key: "a", Quantity: "3"},
		{ID: 2, Key: "", Quantity: "4"},
		{ID: 3, Key: "b", Quantity: "0"},
		{ID: 4, Key: "c", Quantity: "x"},
		{ID: 5, Key: "d", Quantity: "1.5"},
	}
	m, complete := Derive(rows, false)
	assert.False(t, complete)
	assert.Equal(t, Mapping{"a": 3, "d": 1.5}, m)

	m, complete = Derive(rows[:1], false)
	assert.True(t, complete)
	assert.Equal(t, Mapping{"a": 3}, m)
}

func TestDeriveLastRowWins(t *testing.T) {
	m, complete := Derive([]Row{
		{ID: 1, Key: "a", Quantity: "3"},
		{ID: 2, Key: "a", Quantity: "7"},
	}, true)
	assert.True(t, complete)
	assert.Equal(t, Mapping{"a": 7}, m)
}

func TestMappingJSON(t *testing.T) {
	assert.Equal(t, "{}", Mapping(nil).JSON())
	assert.Equal(t, "{}", Mapping{}.JSON())
	assert.Equal(t, `{"a":3}`, Mapping{"a": 3}.JSON())
	assert.Equal(t, `{"a":1,"b":5.5}`, Mapping{"b": 5.5, "a": 1}.JSON())
}

func TestCheckMarksFields(t *testing.T) {
	v := Check([]Row{
		{ID: 1, Key: "", Quantity: "2"},
		{ID: 2, Key: "a", Quantity: "0"},
		{ID: 3, Key: "b", Quantity: "1"},
	}, false)
	assert.False(t, v.Valid)
	assert.True(t, v.Rows[0].KeyInvalid)
	assert.False(t, v.Rows[0].QuantityInvalid)
	assert.False(t, v.Rows[1].KeyInvalid)
	assert.True(t, v.Rows[1].QuantityInvalid)
	assert.False(t, v.Rows[2].KeyInvalid)
	assert.False(t, v.Rows[2].QuantityInvalid)
	assert.Empty(t, v.Duplicates)
}

func TestCheckDuplicatesAreInvalidRegardlessOfQuantity(t *testing.T) {
	for _, quantities := range [][2]string{{"1", "1"}, {"2", "9"}, {"0.5", "100"}} {
		v := Check([]Row{
			{ID: 1, Key: "ore1", Quantity: quantities[0]},
			{ID: 2, Key: "ore1", Quantity: quantities[1]},
			{ID: 3, Key: "ore1", Quantity: quantities[1]},
		}, false)
		assert.False(t, v.Valid)
		assert.False(t, v.Rows[0].KeyInvalid)
		assert.True(t, v.Rows[1].KeyInvalid)
		assert.True(t, v.Rows[2].KeyInvalid)
		assert.Equal(t, []string{"ore1"}, v.Duplicates)
	}
}

func TestCheckNeedsARow(t *testing.T) {
	assert.False(t, Check(nil, true).Valid)
	assert.True(t, Check([]Row{{ID: 1, Key: "a", Quantity: "1"}}, true).Valid)
}

func TestCheckDoesNotModifyInput(t *testing.T) {
	rows := []Row{{ID: 1}}
	Check(rows, false)
	assert.False(t, rows[0].KeyInvalid)
}
