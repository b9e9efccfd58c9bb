// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the survival pipeline as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oncoform/survival-mcp/internal/survival"
)

const serverName = "survival-mcp"

// Handlers binds the MCP tool handlers to a pipeline.
type Handlers struct {
	pipeline *survival.Pipeline
}

func NewHandlers(pipeline *survival.Pipeline) *Handlers {
	return &Handlers{pipeline: pipeline}
}

// Register adds every tool to server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataPredictSurvival, h.PredictSurvival)
	mcp.AddTool(server, MetadataDescribePatientSchema, h.DescribePatientSchema)
}

// NewServer creates an MCP server with all tools registered.
func NewServer(pipeline *survival.Pipeline, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	NewHandlers(pipeline).Register(server)
	return server
}
