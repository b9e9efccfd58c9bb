// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"fmt"
	"strings"
)

// Bound names the side of a numeric range that was violated.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// MissingFieldError lists declared fields absent from a record.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

// OutOfRangeError reports a numeric value outside its declared bounds.
type OutOfRangeError struct {
	Field string
	Value float64
	Bound Bound
	Limit float64
}

func (e *OutOfRangeError) Error() string {
	if e.Bound == BoundMin {
		return fmt.Sprintf("field %q: %v is below the minimum %v", e.Field, e.Value, e.Limit)
	}
	return fmt.Sprintf("field %q: %v is above the maximum %v", e.Field, e.Value, e.Limit)
}

// InvalidValueError reports a value of the wrong type or form.
type InvalidValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("field %q: invalid value %v: %s", e.Field, e.Value, e.Reason)
}

// DuplicateFieldError reports two record keys that resolve to one field.
type DuplicateFieldError struct {
	Field string
	Keys  []string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %q given more than once (keys: %s)", e.Field, strings.Join(e.Keys, ", "))
}
