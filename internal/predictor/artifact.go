// SPDX-License-Identifier: Apache-2.0

package predictor

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/oncoform/survival-mcp/internal/schema"
)

// Artifact kinds.
const (
	KindLogistic = "logistic"
	KindRule     = "rule"
)

const defaultThreshold = 0.5

// artifact is the serialized form of a trained model.
type artifact struct {
	Kind     string   `yaml:"kind"`
	Name     string   `yaml:"name"`
	Features []string `yaml:"features"`
	// Concurrent=false wraps the model in Serialized.
	Concurrent *bool `yaml:"concurrent"`

	// logistic
	Weights   []float64 `yaml:"weights"`
	Intercept float64   `yaml:"intercept"`
	Threshold *float64  `yaml:"threshold"`

	// rule
	Expression string `yaml:"expression"`
}

// Load reads a model artifact and checks that its feature order matches the
// schema. Every failure is a *ModelLoadError.
func Load(path string, reg *schema.Registry) (Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	p, err := Parse(data, reg)
	if err != nil {
		var loadErr *ModelLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	return p, nil
}

// Parse decodes a YAML or JSON model artifact.
func Parse(data []byte, reg *schema.Registry) (Predictor, error) {
	var a artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, &ModelLoadError{Err: fmt.Errorf("failed to unmarshal artifact: %w", err)}
	}
	if err := compareFeatureOrder(a.Features, reg.Names()); err != nil {
		return nil, &ModelLoadError{Err: err}
	}

	var (
		p   Predictor
		err error
	)
	switch a.Kind {
	case KindLogistic:
		threshold := defaultThreshold
		if a.Threshold != nil {
			threshold = *a.Threshold
		}
		p, err = NewLogistic(a.Features, a.Weights, a.Intercept, threshold)
	case KindRule:
		p, err = NewRule(a.Features, a.Expression)
	case "":
		err = errors.New("artifact kind is required")
	default:
		err = fmt.Errorf("unsupported artifact kind %q", a.Kind)
	}
	if err != nil {
		return nil, &ModelLoadError{Err: err}
	}

	if a.Concurrent != nil && !*a.Concurrent {
		p = Serialized(p)
	}
	return p, nil
}
