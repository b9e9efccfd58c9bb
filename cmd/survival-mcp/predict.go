// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/record"
	"github.com/oncoform/survival-mcp/internal/survival"
)

func predictCmd(a *app) *cobra.Command {
	var (
		file   string
		format string
		sets   []string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict survival for one patient record",
		Long: `Predict reads one patient record and prints the result as JSON.

The record is given either as a YAML/JSON/form document (--file, "-" for
stdin) or field by field (--set Name=value, repeatable). The command exits
non-zero unless a prediction was made.`,
		Example: `  survival-mcp predict --model model.yaml --file patient.yaml
  survival-mcp predict --model model.yaml --set AgeAtDiagnosis=45 --set Cellularity=High ...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (len(sets) == 0) {
				return fmt.Errorf("exactly one of --file or --set is required")
			}

			pipeline, err := a.pipeline(nil)
			if err != nil {
				return err
			}

			var res survival.Result
			if len(sets) > 0 {
				rec, err := recordFromSets(sets)
				if err != nil {
					return err
				}
				res = pipeline.Predict(cmd.Context(), rec)
			} else {
				src, err := readSource(cmd.InOrStdin(), file, format)
				if err != nil {
					return err
				}
				res = pipeline.PredictSource(cmd.Context(), src)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
			if !res.OK() {
				return fmt.Errorf("%s: %s", res.Status, res.Error.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `Patient record file ("-" for stdin)`)
	cmd.Flags().StringVar(&format, "format", "", "Record format: yaml, json or form (default: by extension, then auto-detect)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as Name=value (repeatable)")
	return cmd
}

// recordFromSets builds a record from Name=value pairs. Values stay strings;
// the encoder parses numeric fields.
func recordFromSets(sets []string) (encoder.PatientRecord, error) {
	rec := make(encoder.PatientRecord, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected Name=value", s)
		}
		if _, dup := rec[name]; dup {
			return nil, fmt.Errorf("field %q set more than once", name)
		}
		rec[name] = value
	}
	return rec, nil
}

func readSource(stdin io.Reader, file, format string) (record.Source, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return record.Source{}, fmt.Errorf("failed to read record: %w", err)
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml":
			format = "yaml"
		case ".json":
			format = "json"
		}
	}
	return record.Source{Content: data, Format: format, ID: file}, nil
}
