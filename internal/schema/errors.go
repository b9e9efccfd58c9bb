// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotCategorical is returned when a label operation targets a numeric field.
	ErrNotCategorical = errors.New("field is not categorical")
	// ErrUnknownCode is returned when a code has no label.
	ErrUnknownCode = errors.New("no label for code")
)

// UnknownFieldError reports a field name that the schema does not declare.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// UnknownCategoryError reports a categorical value outside the field's label set.
type UnknownCategoryError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("field %q: unknown category %q (allowed: %s)",
		e.Field, e.Value, strings.Join(e.Allowed, ", "))
}
