// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/record"
	"github.com/oncoform/survival-mcp/internal/survival"
)

// MetadataPredictSurvival describes the predict_survival tool.
var MetadataPredictSurvival = &mcp.Tool{
	Name: "predict_survival",
	Description: "Predict whether a breast-cancer patient is Alive or Dead from their clinical attributes. " +
		"Supply every field listed by describe_patient_schema, either as a `fields` object or as a " +
		"YAML/JSON/form-encoded `content` document. Categorical values must match one of the field's " +
		"labels exactly; numeric values must fall inside the field's range. Missing fields are rejected, " +
		"never defaulted. The result carries either the predicted outcome or one structured error " +
		"(kind, field, offending value, allowed labels or violated bound) so the form can be corrected.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"fields": map[string]interface{}{
				"type":                 "object",
				"description":          "Patient record keyed by field name, form label or alias.",
				"additionalProperties": true,
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw patient record document, used when fields is omitted.",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint for content. One of: yaml, json, form. If omitted, auto-detection is used.",
				"enum":        []string{"yaml", "json", "form"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the content document, echoed in parser errors.",
			},
		},
	},
}

// InputPredictSurvival is the input for the PredictSurvival tool.
type InputPredictSurvival struct {
	Fields   map[string]any `json:"fields,omitempty"`
	Content  string         `json:"content,omitempty"`
	Format   string         `json:"format,omitempty"`
	SourceID string         `json:"source_id,omitempty"`
}

// OutputPredictSurvival is the output for the PredictSurvival tool.
type OutputPredictSurvival struct {
	RequestID string `json:"request_id"`
	// Status is Predicted, ValidationFailed or PredictionFailed.
	Status string `json:"status"`
	// Outcome is Alive or Dead when Status is Predicted.
	Outcome  string                `json:"outcome,omitempty"`
	Code     *int                  `json:"code,omitempty"`
	Features map[string]float64    `json:"features,omitempty"`
	Error    *survival.ErrorDetail `json:"error,omitempty"`
}

// PredictSurvival runs the prediction pipeline over the supplied record.
// Validation and prediction failures are part of the output, not tool errors.
func (h *Handlers) PredictSurvival(ctx context.Context, _ *mcp.CallToolRequest, input InputPredictSurvival) (*mcp.CallToolResult, OutputPredictSurvival, error) {
	var res survival.Result
	switch {
	case input.Fields != nil:
		res = h.pipeline.Predict(ctx, encoder.PatientRecord(input.Fields))
	case input.Content != "":
		sourceID := input.SourceID
		if sourceID == "" {
			sourceID = "unknown"
		}
		res = h.pipeline.PredictSource(ctx, record.Source{
			Content: []byte(input.Content),
			Format:  input.Format,
			ID:      sourceID,
		})
	default:
		return nil, OutputPredictSurvival{}, fmt.Errorf("fields or content is required")
	}

	return nil, OutputPredictSurvival{
		RequestID: res.RequestID,
		Status:    string(res.Status),
		Outcome:   res.Outcome,
		Code:      res.Code,
		Features:  res.Features,
		Error:     res.Error,
	}, nil
}
