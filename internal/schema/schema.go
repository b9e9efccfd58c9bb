// SPDX-License-Identifier: Apache-2.0

// Package schema declares the input fields of the survival classifier and the
// integer encoding of every categorical field.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Kind is the semantic type of an input field.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// FieldSpec declares one input field.
type FieldSpec struct {
	// Name is the canonical key of the field and its column name in the
	// feature vector.
	Name string `json:"name" yaml:"name"`
	// Label is the human-readable form caption. It is also accepted as a
	// request key.
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Kind    Kind     `json:"kind" yaml:"kind"`

	// Numeric fields only. Default is a presentation hint; the encoder never
	// substitutes it for a missing value.
	Min     float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Default float64 `json:"default,omitempty" yaml:"default,omitempty"`
	Integer bool    `json:"integer,omitempty" yaml:"integer,omitempty"`

	// Categorical fields only. A label's index is its code.
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// IsCategorical reports whether the field is label-encoded.
func (f FieldSpec) IsCategorical() bool {
	return f.Kind == KindCategorical
}

// Registry is the immutable set of declared fields. It is safe for concurrent
// use because nothing mutates it after New returns.
type Registry struct {
	fields []FieldSpec
	index  map[string]int
	keys   map[string]string
	codes  map[string]map[string]int
}

// New validates fields and builds a Registry. The order of fields is the
// order of the model's feature vector.
func New(fields []FieldSpec) (*Registry, error) {
	if len(fields) == 0 {
		return nil, errors.New("schema declares no fields")
	}
	r := &Registry{
		fields: make([]FieldSpec, len(fields)),
		index:  make(map[string]int, len(fields)),
		keys:   make(map[string]string, len(fields)*3),
		codes:  make(map[string]map[string]int),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := r.index[f.Name]; dup {
			return nil, fmt.Errorf("field %q declared twice", f.Name)
		}
		if err := validateField(f); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		f.Aliases = append([]string(nil), f.Aliases...)
		f.Labels = append([]string(nil), f.Labels...)
		r.fields[i] = f
		r.index[f.Name] = i

		for _, key := range append([]string{f.Name, f.Label}, f.Aliases...) {
			if key == "" {
				continue
			}
			n := normalizeKey(key)
			if owner, taken := r.keys[n]; taken && owner != f.Name {
				return nil, fmt.Errorf("field %q: key %q collides with field %q", f.Name, key, owner)
			}
			r.keys[n] = f.Name
		}

		if f.IsCategorical() {
			codes := make(map[string]int, len(f.Labels))
			for code, label := range f.Labels {
				codes[label] = code
			}
			r.codes[f.Name] = codes
		}
	}
	return r, nil
}

func validateField(f FieldSpec) error {
	switch f.Kind {
	case KindNumeric:
		if f.Min > f.Max {
			return fmt.Errorf("min %v is greater than max %v", f.Min, f.Max)
		}
		if f.Default < f.Min || f.Default > f.Max {
			return fmt.Errorf("default %v outside [%v, %v]", f.Default, f.Min, f.Max)
		}
		if len(f.Labels) > 0 {
			return errors.New("numeric field cannot declare labels")
		}
	case KindCategorical:
		if len(f.Labels) == 0 {
			return errors.New("categorical field needs at least one label")
		}
		seen := make(map[string]struct{}, len(f.Labels))
		for _, label := range f.Labels {
			if strings.TrimSpace(label) == "" {
				return errors.New("empty label")
			}
			if _, dup := seen[label]; dup {
				return fmt.Errorf("label %q listed twice", label)
			}
			seen[label] = struct{}{}
		}
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}
	return nil
}

// GetFieldSpecs returns every declared field in feature-vector order. The
// returned slice is a copy.
func (r *Registry) GetFieldSpecs() []FieldSpec {
	out := make([]FieldSpec, len(r.fields))
	for i, f := range r.fields {
		f.Aliases = append([]string(nil), f.Aliases...)
		f.Labels = append([]string(nil), f.Labels...)
		out[i] = f
	}
	return out
}

// Names returns the canonical field names in feature-vector order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of declared fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Field looks up a field by canonical name.
func (r *Registry) Field(name string) (FieldSpec, error) {
	i, ok := r.index[name]
	if !ok {
		return FieldSpec{}, &UnknownFieldError{Field: name}
	}
	f := r.fields[i]
	f.Aliases = append([]string(nil), f.Aliases...)
	f.Labels = append([]string(nil), f.Labels...)
	return f, nil
}

// Resolve maps a request key to a canonical field name. Keys match the
// field's name, label or aliases, ignoring case and non-alphanumerics.
func (r *Registry) Resolve(key string) (string, bool) {
	if _, ok := r.index[key]; ok {
		return key, true
	}
	name, ok := r.keys[normalizeKey(key)]
	return name, ok
}

// EncodeLabel returns the code of rawLabel in the field's label sequence.
func (r *Registry) EncodeLabel(fieldName, rawLabel string) (int, error) {
	i, ok := r.index[fieldName]
	if !ok {
		return 0, &UnknownFieldError{Field: fieldName}
	}
	f := r.fields[i]
	if !f.IsCategorical() {
		return 0, fmt.Errorf("field %q: %w", fieldName, ErrNotCategorical)
	}
	code, ok := r.codes[fieldName][rawLabel]
	if !ok {
		return 0, &UnknownCategoryError{
			Field:   fieldName,
			Value:   rawLabel,
			Allowed: append([]string(nil), f.Labels...),
		}
	}
	return code, nil
}

// DecodeLabel is the inverse of EncodeLabel.
func (r *Registry) DecodeLabel(fieldName string, code int) (string, error) {
	i, ok := r.index[fieldName]
	if !ok {
		return "", &UnknownFieldError{Field: fieldName}
	}
	f := r.fields[i]
	if !f.IsCategorical() {
		return "", fmt.Errorf("field %q: %w", fieldName, ErrNotCategorical)
	}
	if code < 0 || code >= len(f.Labels) {
		return "", fmt.Errorf("field %q code %d: %w", fieldName, code, ErrUnknownCode)
	}
	return f.Labels[code], nil
}

func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
