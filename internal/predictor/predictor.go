// SPDX-License-Identifier: Apache-2.0

// Package predictor adapts trained survival classifiers to encoded feature
// vectors.
package predictor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/oncoform/survival-mcp/internal/encoder"
)

// Predictor classifies one encoded record. A returned code of 0 means the
// patient is predicted alive; any other code means dead.
type Predictor interface {
	Predict(ctx context.Context, rec encoder.EncodedRecord) (int, error)
	// Features returns the feature order the model was trained on.
	Features() []string
}

// Outcome is the survival label derived from a predictor code.
type Outcome int

const (
	Alive Outcome = iota
	Dead
)

// OutcomeFromCode maps a raw predictor code to an Outcome.
func OutcomeFromCode(code int) Outcome {
	if code == 0 {
		return Alive
	}
	return Dead
}

func (o Outcome) String() string {
	if o == Alive {
		return "Alive"
	}
	return "Dead"
}

// MarshalText renders the outcome label in JSON and YAML output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// checkFeatures verifies that rec matches the trained feature order exactly.
func checkFeatures(want []string, rec encoder.EncodedRecord) error {
	if len(rec.Names) != len(want) || len(rec.Values) != len(want) {
		return fmt.Errorf("feature vector has %d values, model expects %d", len(rec.Values), len(want))
	}
	for i, name := range want {
		if rec.Names[i] != name {
			return fmt.Errorf("feature %d is %q, model expects %q", i, rec.Names[i], name)
		}
	}
	return nil
}

// compareFeatureOrder reports the first difference between an artifact's
// feature list and the schema's field order.
func compareFeatureOrder(artifact, schema []string) error {
	if slices.Equal(artifact, schema) {
		return nil
	}
	for i := 0; i < len(artifact) && i < len(schema); i++ {
		if artifact[i] != schema[i] {
			return fmt.Errorf("model feature %d is %q but schema field %d is %q", i, artifact[i], i, schema[i])
		}
	}
	return fmt.Errorf("model has %d features (%s), schema declares %d",
		len(artifact), strings.Join(artifact, ", "), len(schema))
}

type serialized struct {
	mu sync.Mutex
	p  Predictor
}

// Serialized guards p with a mutex so at most one Predict call runs at a
// time. Use it for models that are not safe for concurrent inference.
func Serialized(p Predictor) Predictor {
	return &serialized{p: p}
}

func (s *serialized) Predict(ctx context.Context, rec encoder.EncodedRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Predict(ctx, rec)
}

func (s *serialized) Features() []string {
	return s.p.Features()
}
