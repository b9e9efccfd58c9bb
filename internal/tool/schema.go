// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoform/survival-mcp/internal/schema"
)

// MetadataDescribePatientSchema describes the describe_patient_schema tool.
var MetadataDescribePatientSchema = &mcp.Tool{
	Name: "describe_patient_schema",
	Description: "List the patient fields the survival model expects, in feature order. " +
		"Numeric fields report their range, default and whether they must be whole numbers. " +
		"Categorical fields report their allowed labels and the integer code each label encodes to.",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	},
}

// InputDescribePatientSchema is the (empty) input for the DescribePatientSchema tool.
type InputDescribePatientSchema struct{}

// OutputDescribePatientSchema is the output for the DescribePatientSchema tool.
type OutputDescribePatientSchema struct {
	Fields []schema.FieldDescription `json:"fields"`
}

// DescribePatientSchema returns the field schema in feature order.
func (h *Handlers) DescribePatientSchema(_ context.Context, _ *mcp.CallToolRequest, _ InputDescribePatientSchema) (*mcp.CallToolResult, OutputDescribePatientSchema, error) {
	return nil, OutputDescribePatientSchema{Fields: h.pipeline.Schema().Describe()}, nil
}
