// SPDX-License-Identifier: Apache-2.0

package survival

import (
	"errors"
	"fmt"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/predictor"
	"github.com/oncoform/survival-mcp/internal/schema"
)

// Status is the terminal state of a prediction request.
type Status string

const (
	StatusPredicted        Status = "Predicted"
	StatusValidationFailed Status = "ValidationFailed"
	StatusPredictionFailed Status = "PredictionFailed"
)

// ErrorKind tags the failure carried by a Result.
type ErrorKind string

const (
	KindUnknownField    ErrorKind = "unknown_field"
	KindUnknownCategory ErrorKind = "unknown_category"
	KindOutOfRange      ErrorKind = "out_of_range"
	KindMissingField    ErrorKind = "missing_field"
	KindInvalidValue    ErrorKind = "invalid_value"
	KindDuplicateField  ErrorKind = "duplicate_field"
	KindInvalidInput    ErrorKind = "invalid_input"
	KindPrediction      ErrorKind = "prediction_error"
)

// ErrorDetail is the structured error handed back to the presentation layer.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Value   string    `json:"value,omitempty"`
	// Allowed lists the valid labels for an unknown category.
	Allowed []string `json:"allowed,omitempty"`
	// Bound and Limit name the violated side of a numeric range.
	Bound   string   `json:"bound,omitempty"`
	Limit   *float64 `json:"limit,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// Result is the tagged outcome of one request: either a prediction or exactly
// one error.
type Result struct {
	RequestID string             `json:"request_id"`
	Status    Status             `json:"status"`
	Outcome   string             `json:"outcome,omitempty"`
	Code      *int               `json:"code,omitempty"`
	Features  map[string]float64 `json:"features,omitempty"`
	Parser    string             `json:"parser,omitempty"`
	Error     *ErrorDetail       `json:"error,omitempty"`
}

// OK reports whether a prediction was made.
func (r Result) OK() bool {
	return r.Status == StatusPredicted
}

// classify maps an encode-stage error onto an ErrorDetail.
func classify(err error) *ErrorDetail {
	var (
		unknownField    *schema.UnknownFieldError
		unknownCategory *schema.UnknownCategoryError
		outOfRange      *encoder.OutOfRangeError
		missing         *encoder.MissingFieldError
		invalid         *encoder.InvalidValueError
		duplicate       *encoder.DuplicateFieldError
		prediction      *predictor.PredictionError
	)
	switch {
	case errors.As(err, &unknownField):
		return &ErrorDetail{Kind: KindUnknownField, Message: err.Error(), Field: unknownField.Field}
	case errors.As(err, &unknownCategory):
		return &ErrorDetail{
			Kind:    KindUnknownCategory,
			Message: err.Error(),
			Field:   unknownCategory.Field,
			Value:   unknownCategory.Value,
			Allowed: unknownCategory.Allowed,
		}
	case errors.As(err, &outOfRange):
		limit := outOfRange.Limit
		return &ErrorDetail{
			Kind:    KindOutOfRange,
			Message: err.Error(),
			Field:   outOfRange.Field,
			Value:   fmt.Sprint(outOfRange.Value),
			Bound:   string(outOfRange.Bound),
			Limit:   &limit,
		}
	case errors.As(err, &missing):
		return &ErrorDetail{Kind: KindMissingField, Message: err.Error(), Missing: missing.Fields}
	case errors.As(err, &invalid):
		return &ErrorDetail{
			Kind:    KindInvalidValue,
			Message: err.Error(),
			Field:   invalid.Field,
			Value:   fmt.Sprint(invalid.Value),
		}
	case errors.As(err, &duplicate):
		return &ErrorDetail{Kind: KindDuplicateField, Message: err.Error(), Field: duplicate.Field}
	case errors.As(err, &prediction):
		return &ErrorDetail{Kind: KindPrediction, Message: prediction.Error()}
	}
	return &ErrorDetail{Kind: KindInvalidInput, Message: err.Error()}
}
