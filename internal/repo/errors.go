package repo

import (
	"errors"
	"fmt"

	"entgo.io/ent/dialect/sql/sqlgraph"
)

var (
	ErrNotFound   = errors.New("repo: record not found")
	ErrConstraint = errors.New("repo: constraint violation")
)

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConstraint(err error) bool { return errors.Is(err, ErrConstraint) }

// IsUnique reports whether err is a unique-constraint violation.
func IsUnique(err error) bool {
	return IsConstraint(err) && sqlgraph.IsUniqueConstraintError(err)
}

// wrapErr tags driver constraint violations with ErrConstraint while keeping
// the driver error in the chain.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if sqlgraph.IsConstraintError(err) {
		return &constraintError{err: err}
	}
	return err
}

type constraintError struct {
	err error
}

func (e *constraintError) Error() string { return fmt.Sprintf("%v: %v", ErrConstraint, e.err) }

func (e *constraintError) Is(target error) bool { return target == ErrConstraint }

func (e *constraintError) Unwrap() error { return e.err }
