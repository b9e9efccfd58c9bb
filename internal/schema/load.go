// SPDX-License-Identifier: Apache-2.0

package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
)

//go:embed default_schema.yaml
var defaultSchema []byte

//go:embed schema.cue
var schemaDefinition string

// document is the on-disk form of a schema.
type document struct {
	Version string     `yaml:"version"`
	Fields  []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name    string   `yaml:"name"`
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
	Kind    Kind     `yaml:"kind"`
	Min     float64  `yaml:"min"`
	Max     float64  `yaml:"max"`
	Default *float64 `yaml:"default"`
	Integer bool     `yaml:"integer"`
	// Labels are strings or integers; integers are kept as their decimal text.
	Labels  []any    `yaml:"labels"`
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return Parse(defaultSchema)
})

// Default returns the registry built from the embedded schema.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// DefaultDocument returns the embedded schema document.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultSchema...)
}

// Load reads and parses a schema file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return reg, nil
}

// Parse validates a YAML or JSON schema document and builds a Registry.
func Parse(data []byte) (*Registry, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	fields := make([]FieldSpec, len(doc.Fields))
	for i, fd := range doc.Fields {
		f := FieldSpec{
			Name:    fd.Name,
			Label:   fd.Label,
			Aliases: fd.Aliases,
			Kind:    fd.Kind,
			Min:     fd.Min,
			Max:     fd.Max,
			Integer: fd.Integer,
		}
		for _, l := range fd.Labels {
			text, err := labelText(l)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", fd.Name, err)
			}
			f.Labels = append(f.Labels, text)
		}
		if fd.Kind == KindNumeric {
			f.Default = fd.Min
			if fd.Default != nil {
				f.Default = *fd.Default
			}
		}
		fields[i] = f
	}
	return New(fields)
}

func labelText(l any) (string, error) {
	switch v := l.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	}
	return "", fmt.Errorf("label %v must be a string or integer", l)
}

// validateDocument checks the raw document against the #Schema definition.
func validateDocument(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	cctx := cuecontext.New()
	def := cctx.CompileString(schemaDefinition).LookupPath(cue.ParsePath("#Schema"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("schema definition: %w", err)
	}

	value := cctx.Encode(raw)
	if err := value.Err(); err != nil {
		return fmt.Errorf("schema document: %w", err)
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema does not conform: %w", err)
	}
	return nil
}
