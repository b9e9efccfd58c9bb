// SPDX-License-Identifier: Apache-2.0

// Package record turns raw request documents into patient records.
package record

import (
	"context"
	"fmt"

	"github.com/oncoform/survival-mcp/internal/encoder"
)

// Source describes a raw request document.
type Source struct {
	// Content is the raw document content.
	Content []byte
	Format  string
	ID      string
}

type Parser interface {
	CanHandle(source Source) bool
	Parse(ctx context.Context, source Source) (encoder.PatientRecord, error)
	Name() string
}

// Registry selects a parser for each source.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a Registry. Parsers are tried in order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// Parse decodes source with the first parser that can handle it and returns
// the record along with the parser's name.
func (r *Registry) Parse(ctx context.Context, source Source) (encoder.PatientRecord, string, error) {
	parser, err := r.selectParser(source)
	if err != nil {
		return nil, "", err
	}

	rec, err := parser.Parse(ctx, source)
	if err != nil {
		return nil, parser.Name(), fmt.Errorf("parser %q failed: %w", parser.Name(), err)
	}
	return rec, parser.Name(), nil
}

// selectParser returns the first registered parser that can handle the given source.
func (r *Registry) selectParser(source Source) (Parser, error) {
	for _, parser := range r.parsers {
		if parser.CanHandle(source) {
			return parser, nil
		}
	}
	return nil, fmt.Errorf("unsupported record format: no parser found for source %q (format hint: %q)", source.ID, source.Format)
}

// RegisteredParsers returns the names of all currently registered parsers.
func (r *Registry) RegisteredParsers() []string {
	names := make([]string, len(r.parsers))
	for i, parser := range r.parsers {
		names[i] = parser.Name()
	}
	return names
}
