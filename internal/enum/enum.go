// Package enum holds the closed enumerations stored in the database and
// exposed over the API. Each enumeration keeps an explicit ordered list of
// (value, label) pairs; that list is the only source of valid values.
package enum

import "strings"

// Choice is one (value, label) pair of an enumeration.
type Choice[T comparable] struct {
	Value T      `json:"value"`
	Label string `json:"label"`
}

// Set is an ordered, closed list of choices.
type Set[T comparable] struct {
	choices []Choice[T]
}

func newSet[T comparable](choices ...Choice[T]) Set[T] {
	return Set[T]{choices: choices}
}

// Choices returns a copy of the pairs in declaration order.
func (s Set[T]) Choices() []Choice[T] {
	out := make([]Choice[T], len(s.choices))
	copy(out, s.choices)
	return out
}

// Values returns the values in declaration order.
func (s Set[T]) Values() []T {
	out := make([]T, len(s.choices))
	for i, c := range s.choices {
		out[i] = c.Value
	}
	return out
}

// Default is the first declared value.
func (s Set[T]) Default() T {
	return s.choices[0].Value
}

func (s Set[T]) Valid(v T) bool {
	for _, c := range s.choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// Label returns the label for v, or "" when v is not a member.
func (s Set[T]) Label(v T) string {
	for _, c := range s.choices {
		if c.Value == v {
			return c.Label
		}
	}
	return ""
}

// ByLabel looks a value up by its label, ignoring case.
func (s Set[T]) ByLabel(label string) (T, bool) {
	for _, c := range s.choices {
		if strings.EqualFold(c.Label, strings.TrimSpace(label)) {
			return c.Value, true
		}
	}
	var zero T
	return zero, false
}
