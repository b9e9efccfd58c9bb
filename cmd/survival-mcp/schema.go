// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func schemaCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the patient field schema in feature order",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			fields := reg.Describe()

			var out []byte
			switch output {
			case "yaml":
				out, err = yaml.Marshal(fields)
			case "json":
				out, err = json.MarshalIndent(fields, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unsupported output %q: want yaml or json", output)
			}
			if err != nil {
				return fmt.Errorf("failed to render schema: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}
