// SPDX-License-Identifier: Apache-2.0

package schema

// LabelCode pairs a categorical label with its code.
type LabelCode struct {
	Label string `json:"label" yaml:"label"`
	Code  int    `json:"code" yaml:"code"`
}

// FieldDescription is the presentation view of a field, used to render
// forms and tool schemas.
type FieldDescription struct {
	Position int         `json:"position" yaml:"position"`
	Name     string      `json:"name" yaml:"name"`
	Label    string      `json:"label,omitempty" yaml:"label,omitempty"`
	Aliases  []string    `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Kind     Kind        `json:"kind" yaml:"kind"`
	Min      *float64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64    `json:"max,omitempty" yaml:"max,omitempty"`
	Default  *float64    `json:"default,omitempty" yaml:"default,omitempty"`
	Integer  bool        `json:"integer,omitempty" yaml:"integer,omitempty"`
	Labels   []LabelCode `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Describe lists the registry's fields in feature-vector order.
func (r *Registry) Describe() []FieldDescription {
	out := make([]FieldDescription, len(r.fields))
	for i, f := range r.fields {
		d := FieldDescription{
			Position: i,
			Name:     f.Name,
			Label:    f.Label,
			Aliases:  append([]string(nil), f.Aliases...),
			Kind:     f.Kind,
		}
		if f.IsCategorical() {
			d.Labels = make([]LabelCode, len(f.Labels))
			for code, label := range f.Labels {
				d.Labels[code] = LabelCode{Label: label, Code: code}
			}
		} else {
			lo, hi, def := f.Min, f.Max, f.Default
			d.Min, d.Max, d.Default = &lo, &hi, &def
			d.Integer = f.Integer
		}
		out[i] = d
	}
	return out
}
