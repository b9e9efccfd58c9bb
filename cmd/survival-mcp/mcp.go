// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/oncoform/survival-mcp/internal/tool"
)

func mcpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the prediction tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := a.pipeline(nil)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a.logger.Info("mcp server starting on stdio")
			return tool.NewServer(pipeline, Version).Run(ctx, &mcp.StdioTransport{})
		},
	}
}
