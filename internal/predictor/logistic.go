// SPDX-License-Identifier: Apache-2.0

package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/oncoform/survival-mcp/internal/encoder"
)

// Logistic is a trained binary logistic regression: code 1 when
// sigmoid(w·x + b) reaches the threshold.
type Logistic struct {
	features  []string
	weights   []float64
	intercept float64
	threshold float64
}

// NewLogistic builds a Logistic model. Weights are aligned with features.
func NewLogistic(features []string, weights []float64, intercept, threshold float64) (*Logistic, error) {
	if len(features) == 0 {
		return nil, errors.New("logistic: no features")
	}
	if len(weights) != len(features) {
		return nil, fmt.Errorf("logistic: %d weights for %d features", len(weights), len(features))
	}
	if !(threshold > 0 && threshold < 1) {
		return nil, fmt.Errorf("logistic: threshold %v outside (0, 1)", threshold)
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("logistic: weight %d is not finite", i)
		}
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, errors.New("logistic: intercept is not finite")
	}
	return &Logistic{
		features:  append([]string(nil), features...),
		weights:   append([]float64(nil), weights...),
		intercept: intercept,
		threshold: threshold,
	}, nil
}

func (m *Logistic) Features() []string {
	return append([]string(nil), m.features...)
}

// Probability returns p(code = 1) for rec.
func (m *Logistic) Probability(rec encoder.EncodedRecord) (float64, error) {
	if err := checkFeatures(m.features, rec); err != nil {
		return 0, err
	}
	z := m.intercept
	for j, v := range rec.Values {
		z += m.weights[j] * v
	}
	return sigmoid(z), nil
}

func (m *Logistic) Predict(ctx context.Context, rec encoder.EncodedRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &PredictionError{Err: err}
	}
	p, err := m.Probability(rec)
	if err != nil {
		return 0, &PredictionError{Err: err}
	}
	if p >= m.threshold {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
