// Package validation collects per-field request errors so a service can
// report every problem of a request at once.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRequired marks a missing mandatory field.
var ErrRequired = errors.New("this field is required")

// FieldError ties an error to the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

// Error collects every field problem of one request. Nothing is written when
// it is returned.
type Error struct {
	Fields []FieldError
}

func (e *Error) Add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

// Has reports whether field already carries an error.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %v", f.Field, f.Err)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the field errors to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Err
	}
	return out
}

// Map renders the errors keyed by field.
func (e *Error) Map() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Err.Error())
	}
	return out
}

// Err returns e when it holds at least one field error, otherwise nil.
func (e *Error) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Joined splits a joined error (errors.Join) into one field entry each.
func (e *Error) Joined(field string, err error) {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range j.Unwrap() {
			e.Add(field, inner)
		}
		return
	}
	e.Add(field, err)
}
