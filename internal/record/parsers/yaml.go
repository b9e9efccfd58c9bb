// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/record"
)

// YAMLParser parses YAML and JSON objects into patient records. The object
// is either the record itself or wraps it under a top-level "fields" key.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Name() string {
	return "yaml"
}

func (p *YAMLParser) CanHandle(source record.Source) bool {
	switch strings.ToLower(source.Format) {
	case "yaml", "yml", "json":
		return true
	case "":
	default:
		return false
	}
	content := strings.TrimSpace(string(source.Content))
	// JSON object
	if strings.HasPrefix(content, "{") {
		return true
	}
	// Plain YAML: key: value at the start
	if len(content) > 0 && strings.Contains(strings.SplitN(content, "\n", 2)[0], ":") {
		return !strings.HasPrefix(content, "#")
	}
	return false
}

func (p *YAMLParser) Parse(_ context.Context, source record.Source) (encoder.PatientRecord, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(source.Content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML/JSON: %w", err)
	}
	if doc == nil {
		return nil, errors.New("document is empty")
	}

	if len(doc) == 1 {
		if inner, ok := doc["fields"]; ok {
			fields, ok := inner.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("\"fields\" must be an object, got %T", inner)
			}
			doc = fields
		}
	}
	return encoder.PatientRecord(doc), nil
}
