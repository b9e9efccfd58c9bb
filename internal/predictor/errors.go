// SPDX-License-Identifier: Apache-2.0

package predictor

import "fmt"

// ModelLoadError is fatal: the process must not serve requests without a model.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load model: %v", e.Err)
	}
	return fmt.Sprintf("failed to load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// PredictionError wraps any failure raised while invoking a model. The
// message never includes the cause, which is only reachable through Unwrap.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return "prediction failed"
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
