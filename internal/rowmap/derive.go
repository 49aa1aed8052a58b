package rowmap

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type RowState int

const (
	RowEmpty RowState = iota
	RowPartial
	RowComplete
)

func (s RowState) String() string {
	switch s {
	case RowEmpty:
		return "empty"
	case RowPartial:
		return "partial"
	case RowComplete:
		return "complete"
	}
	return "RowState(" + strconv.Itoa(int(s)) + ")"
}

// Row is one key selector plus quantity input. Quantity is kept as typed by
// the user; it is only interpreted while deriving the mapping.
type Row struct {
	ID       int
	Key      string
	Quantity string

	// Field markers set by Check.
	KeyInvalid      bool
	QuantityInvalid bool
}

// ParseQuantity interprets a quantity input. Only strictly positive finite
// values are accepted; with whole set, only whole numbers.
func ParseQuantity(s string, whole bool) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if whole {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, false
		}
		return float64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}

// FormatQuantity renders a quantity the way it is pre-filled into an input.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func (r Row) State(whole bool) RowState {
	_, validQuantity := ParseQuantity(r.Quantity, whole)
	switch {
	case r.Key != "" && validQuantity:
		return RowComplete
	case r.Key == "" && strings.TrimSpace(r.Quantity) == "":
		return RowEmpty
	default:
		return RowPartial
	}
}

// Mapping is the derived key to quantity map.
type Mapping map[string]float64

// JSON is the serialization written into the hidden field. Keys are sorted,
// so equal mappings always serialize to the same text.
func (m Mapping) JSON() string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(map[string]float64(m))
	if err != nil {
		return "{}" // only reachable with NaN/Inf, which ParseQuantity rejects.
	}
	return string(b)
}

// Derive walks rows in display order. Every row with a key and a positive
// quantity sets mapping[key]; a later row overwrites an earlier one with the
// same key. complete reports whether every row contributed.
func Derive(rows []Row, whole bool) (mapping Mapping, complete bool) {
	mapping = make(Mapping)
	complete = true
	for _, r := range rows {
		q, ok := ParseQuantity(r.Quantity, whole)
		if r.Key == "" || !ok {
			complete = false
			continue
		}
		mapping[r.Key] = q
	}
	return mapping, complete
}

// Verdict is the result of validating a row list.
type Verdict struct {
	Valid      bool
	Rows       []Row    // Copies of the input rows with markers set.
	Duplicates []string // Keys selected by more than one row.
}

// Check validates rows: at least one row, every row has a key and a positive
// quantity, no key selected twice. Selectors without a key or with a repeated
// key are marked, as are unusable quantities.
func Check(rows []Row, whole bool) Verdict {
	v := Verdict{
		Valid: len(rows) > 0,
		Rows:  make([]Row, len(rows)),
	}
	seen := make(map[string]int)
	for i, r := range rows {
		r.KeyInvalid = false
		r.QuantityInvalid = false
		if r.Key == "" {
			r.KeyInvalid = true
			v.Valid = false
		} else {
			seen[r.Key]++
			if seen[r.Key] > 1 {
				r.KeyInvalid = true
				v.Valid = false
				if seen[r.Key] == 2 {
					v.Duplicates = append(v.Duplicates, r.Key)
				}
			}
		}
		if _, ok := ParseQuantity(r.Quantity, whole); !ok {
			r.QuantityInvalid = true
			v.Valid = false
		}
		v.Rows[i] = r
	}
	return v
}
