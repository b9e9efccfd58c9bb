// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/record"
)

// FormParser parses URL-encoded form submissions ("ERStatus=Positive&...").
// All values arrive as strings; the encoder parses numeric fields.
type FormParser struct{}

func NewFormParser() *FormParser {
	return &FormParser{}
}

func (p *FormParser) Name() string {
	return "form"
}

func (p *FormParser) CanHandle(source record.Source) bool {
	switch strings.ToLower(source.Format) {
	case "form", "urlencoded", "x-www-form-urlencoded":
		return true
	case "":
	default:
		return false
	}
	content := strings.TrimSpace(string(source.Content))
	if content == "" || strings.ContainsAny(content, "{\n") {
		return false
	}
	return strings.Contains(content, "=") && !strings.Contains(strings.SplitN(content, "=", 2)[0], ":")
}

func (p *FormParser) Parse(_ context.Context, source record.Source) (encoder.PatientRecord, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(source.Content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	rec := make(encoder.PatientRecord, len(values))
	for key, vs := range values {
		if len(vs) != 1 {
			return nil, fmt.Errorf("form key %q given %d times", key, len(vs))
		}
		rec[key] = vs[0]
	}
	return rec, nil
}
