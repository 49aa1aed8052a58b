package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/ansel1/merry"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Quantities maps a record id (ore or component) to an amount. It is stored
// as a JSON object in a TEXT column.
type Quantities map[string]float64

func (q Quantities) Value() (driver.Value, error) {
	if q == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(q))
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return string(b), nil
}

func (q *Quantities) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*q = Quantities{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return merry.Errorf("cannot scan %T into quantities", src)
	}
	result := make(Quantities)
	if len(b) > 0 {
		if err := json.Unmarshal(b, &result); err != nil {
			return merry.Prepend(err, "quantities")
		}
	}
	*q = result
	return nil
}

// Keys returns the ids in sorted order.
func (q Quantities) Keys() []string {
	result := make([]string, 0, len(q))
	for k := range q {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func (q Quantities) Total() float64 {
	var sum float64
	for _, v := range q {
		sum += v
	}
	return sum
}

// ParseQuantities cleans the JSON posted in a hidden quantities field. The
// text must be a non-empty object whose keys are UUIDs accepted by exists
// and whose values are positive numbers; with whole set, positive whole
// numbers. All problems are reported, not just the first.
func ParseQuantities(text string, noun string, whole bool, exists func(id string) bool) (Quantities, error) {
	if text == "" || text == "{}" {
		return nil, FieldError(noun+"s", "At least one %s is required.", noun)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, FieldError(noun+"s", "Invalid %s format: %v", noun, err)
	}
	if raw == nil {
		return nil, FieldError(noun+"s", "%ss must be an object of id: quantity pairs.", capitalize(noun))
	}
	if len(raw) == 0 {
		return nil, FieldError(noun+"s", "At least one %s is required.", noun)
	}
	var errs *multierror.Error
	result := make(Quantities, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		id, err := uuid.Parse(key)
		if err != nil {
			errs = multierror.Append(errs, FieldError(noun+"s", "Invalid %s UUID: %s", noun, key))
			continue
		}
		value, ok := raw[key].(float64)
		switch {
		case !ok || math.IsNaN(value) || math.IsInf(value, 0):
			errs = multierror.Append(errs, FieldError(noun+"s", "Invalid quantity for %s %s: %v", noun, key, raw[key]))
			continue
		case value <= 0:
			errs = multierror.Append(errs, FieldError(noun+"s", "Quantity for %s %s must be positive (got %v).", noun, key, value))
			continue
		case whole && value != math.Trunc(value):
			errs = multierror.Append(errs, FieldError(noun+"s", "Invalid quantity for %s %s: %v. Must be positive integer.", noun, key, value))
			continue
		}
		if exists != nil && !exists(id.String()) {
			errs = multierror.Append(errs, FieldError(noun+"s", "%s with UUID %s does not exist.", capitalize(noun), key))
			continue
		}
		result[id.String()] = value
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return result, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (q Quantities) Clone() Quantities {
	if q == nil {
		return nil
	}
	result := make(Quantities, len(q))
	for k, v := range q {
		result[k] = v
	}
	return result
}
