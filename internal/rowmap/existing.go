package rowmap

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/ansel1/merry"
)

// Entry is one key/quantity pair of pre-existing data.
type Entry struct {
	Key      string
	Quantity float64
}

// ParseExisting reads a JSON object of key to number, keeping the order in
// which the keys appear in the text. Blank text means no existing data.
func ParseExisting(text string) ([]Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, merry.Prepend(err, "existing data")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, merry.New("existing data is not a JSON object")
	}
	var result []Entry
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, merry.Prepend(err, "existing data")
		}
		key, _ := tok.(string)
		var value json.Number
		if err := dec.Decode(&value); err != nil {
			return nil, merry.Prependf(err, "existing data: value of %q", key)
		}
		q, err := value.Float64()
		if err != nil {
			return nil, merry.Prependf(err, "existing data: value of %q", key)
		}
		result = append(result, Entry{Key: key, Quantity: q})
	}
	if _, err := dec.Token(); err != nil {
		return nil, merry.Prepend(err, "existing data")
	}
	return result, nil
}

// Entries lists a mapping ordered by key.
func Entries(m map[string]float64) []Entry {
	result := make([]Entry, 0, len(m))
	for k, q := range m {
		result = append(result, Entry{Key: k, Quantity: q})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}
