// SPDX-License-Identifier: Apache-2.0

// Package encoder turns a raw patient record into the numeric feature vector
// the survival classifier was trained on.
package encoder

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/oncoform/survival-mcp/internal/schema"
)

// PatientRecord maps field keys to raw values as supplied by the caller.
// Keys may be canonical names, labels or aliases.
type PatientRecord map[string]any

// EncodedRecord is the feature vector handed to the predictor. Names and
// Values are parallel and follow the registry's field order.
type EncodedRecord struct {
	Names  []string
	Values []float64
}

// Len returns the number of features.
func (r EncodedRecord) Len() int {
	return len(r.Values)
}

// Get returns the value of a named feature.
func (r EncodedRecord) Get(name string) (float64, bool) {
	i := slices.Index(r.Names, name)
	if i < 0 || i >= len(r.Values) {
		return 0, false
	}
	return r.Values[i], true
}

// Map returns the features keyed by name.
func (r EncodedRecord) Map() map[string]float64 {
	out := make(map[string]float64, len(r.Names))
	for i, name := range r.Names {
		if i < len(r.Values) {
			out[name] = r.Values[i]
		}
	}
	return out
}

// Encoder validates and encodes patient records against a registry.
type Encoder struct {
	reg *schema.Registry
}

// New creates an Encoder bound to reg.
func New(reg *schema.Registry) *Encoder {
	return &Encoder{reg: reg}
}

// Registry returns the registry the encoder validates against.
func (e *Encoder) Registry() *schema.Registry {
	return e.reg
}

// Encode is shorthand for New(reg).Encode(rec).
func Encode(reg *schema.Registry, rec PatientRecord) (EncodedRecord, error) {
	return New(reg).Encode(rec)
}

// Encode validates rec and returns its feature vector. On error the returned
// record is always empty.
//
// Errors are reported in this order: undeclared or duplicated keys, missing
// fields (all of them at once), then the first invalid value in field order.
func (e *Encoder) Encode(rec PatientRecord) (EncodedRecord, error) {
	values, err := e.resolve(rec)
	if err != nil {
		return EncodedRecord{}, err
	}

	specs := e.reg.GetFieldSpecs()
	var missing []string
	for _, f := range specs {
		if v, ok := values[f.Name]; !ok || v == nil {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return EncodedRecord{}, &MissingFieldError{Fields: missing}
	}

	out := EncodedRecord{
		Names:  make([]string, len(specs)),
		Values: make([]float64, len(specs)),
	}
	for i, f := range specs {
		v, err := e.encodeValue(f, values[f.Name])
		if err != nil {
			return EncodedRecord{}, err
		}
		out.Names[i] = f.Name
		out.Values[i] = v
	}
	return out, nil
}

// resolve rekeys rec by canonical field name.
func (e *Encoder) resolve(rec PatientRecord) (map[string]any, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	values := make(map[string]any, len(rec))
	source := make(map[string]string, len(rec))
	for _, k := range keys {
		name, ok := e.reg.Resolve(k)
		if !ok {
			return nil, &schema.UnknownFieldError{Field: k}
		}
		if prev, dup := source[name]; dup {
			return nil, &DuplicateFieldError{Field: name, Keys: []string{prev, k}}
		}
		source[name] = k
		values[name] = rec[k]
	}
	return values, nil
}

func (e *Encoder) encodeValue(f schema.FieldSpec, raw any) (float64, error) {
	if f.IsCategorical() {
		label, ok := labelOf(raw)
		if !ok {
			return 0, &InvalidValueError{Field: f.Name, Value: raw, Reason: "expected a category label"}
		}
		code, err := e.reg.EncodeLabel(f.Name, label)
		if err != nil {
			return 0, err
		}
		return float64(code), nil
	}

	v, ok := numberOf(raw)
	if !ok {
		return 0, &InvalidValueError{Field: f.Name, Value: raw, Reason: "expected a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidValueError{Field: f.Name, Value: raw, Reason: "must be finite"}
	}
	if f.Integer && math.Trunc(v) != v {
		return 0, &InvalidValueError{Field: f.Name, Value: raw, Reason: "must be a whole number"}
	}
	if v < f.Min {
		return 0, &OutOfRangeError{Field: f.Name, Value: v, Bound: BoundMin, Limit: f.Min}
	}
	if v > f.Max {
		return 0, &OutOfRangeError{Field: f.Name, Value: v, Bound: BoundMax, Limit: f.Max}
	}
	return v, nil
}

func numberOf(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// labelOf renders a raw categorical value as a label. Whole numbers render
// without a decimal point so that 1, 1.0 and "1" all match the label "1".
func labelOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		f, err := v.Float64()
		if err != nil {
			return "", false
		}
		return formatFloat(f)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case bool, nil:
		return "", false
	}
	if f, ok := numberOf(raw); ok {
		return formatFloat(f)
	}
	return "", false
}

func formatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if math.Trunc(f) == f && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
