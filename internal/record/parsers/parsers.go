// SPDX-License-Identifier: Apache-2.0

// Package parsers holds the record parsers for each supported request format.
package parsers

import "github.com/oncoform/survival-mcp/internal/record"

// Default builds a Registry with all parsers registered. The form parser
// comes first because a bare "key=value" line is never a YAML mapping.
func Default() *record.Registry {
	return record.NewRegistry(
		NewFormParser(),
		NewYAMLParser(),
	)
}
