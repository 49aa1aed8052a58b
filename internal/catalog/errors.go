// Package catalog holds the ore, component and block records and their
// server-side validation.
package catalog

import (
	"fmt"
	"net/http"

	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"
)

type errorKey string

const fieldKey errorKey = "field"

// FieldError is a validation failure of one form field. Its user message
// is shown next to that field.
func FieldError(field string, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return merry.New(msg).
		WithValue(fieldKey, field).
		WithUserMessage(msg).
		WithHTTPCode(http.StatusUnprocessableEntity)
}

// NameTakenError is returned by callers that find a record with the same name.
func NameTakenError(kind string, name string) error {
	return FieldError("name", "A %s with name '%s' already exists.", kind, name)
}

// FieldErrors groups the user messages of a validation error by form field.
// Errors not tied to a field are listed under "".
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	var errs []error
	if m, ok := err.(*multierror.Error); ok {
		errs = m.Errors
	} else {
		errs = []error{err}
	}
	result := make(map[string][]string)
	for _, e := range errs {
		field := Field(e)
		msg := merry.UserMessage(e)
		if msg == "" {
			msg = e.Error()
		}
		result[field] = append(result[field], msg)
	}
	return result
}

// Field is the form field an error belongs to, "" if none.
func Field(err error) string {
	field, _ := merry.Value(err, fieldKey).(string)
	return field
}
