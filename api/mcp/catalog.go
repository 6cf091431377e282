package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

var (
	listComplexesToolName    = "list_complexes"
	listComplexesDescription = "List residential complexes (ЖК), highest rating first, optionally in one city. Returns the same reduced view the search assistant is given."

	getComplexesToolName    = "get_complexes"
	getComplexesDescription = "Look up residential complexes by id, for example the ids of an [IDS: ...] marker in an assistant answer. Unknown ids are skipped."
)

// ListComplexesInput represents the input arguments for the list_complexes tool.
type ListComplexesInput struct {
	CityID string `json:"city_id,omitempty" jsonschema:"city id to filter by (default: all cities)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of complexes to return (default: all)"`
}

// GetComplexesInput represents the input arguments for the get_complexes tool.
type GetComplexesInput struct {
	IDs []string `json:"ids" jsonschema:"complex ids in the order to return them"`
}

// ComplexesOutput represents the output of both catalog tools.
type ComplexesOutput struct {
	Complexes []catalog.PromptEntry `json:"complexes"`
	Count     int                   `json:"count"`
}

func (s *Server) handleListComplexes(ctx context.Context, _ *mcp.CallToolRequest, input ListComplexesInput) (*mcp.CallToolResult, ComplexesOutput, error) {
	logger := s.config.Logger
	logger.Debug("MCP list_complexes request",
		"city_id", input.CityID,
		"limit", input.Limit,
	)

	complexes, err := s.config.Driver.ListComplexes(ctx, storage.ComplexFilter{CityID: input.CityID})
	if err != nil {
		logger.Error("failed to list complexes", "error", err)
		return nil, ComplexesOutput{}, fmt.Errorf("failed to list complexes: %w", err)
	}

	if input.Limit > 0 && len(complexes) > input.Limit {
		complexes = complexes[:input.Limit]
	}

	return nil, newComplexesOutput(complexes), nil
}

func (s *Server) handleGetComplexes(ctx context.Context, _ *mcp.CallToolRequest, input GetComplexesInput) (*mcp.CallToolResult, ComplexesOutput, error) {
	logger := s.config.Logger
	logger.Debug("MCP get_complexes request", "ids", input.IDs)

	complexes, err := s.config.Driver.GetComplexes(ctx, input.IDs)
	if err != nil {
		logger.Error("failed to get complexes", "error", err)
		return nil, ComplexesOutput{}, fmt.Errorf("failed to get complexes: %w", err)
	}

	return nil, newComplexesOutput(complexes), nil
}

func newComplexesOutput(complexes []catalog.Complex) ComplexesOutput {
	entries := catalog.PromptEntries(complexes)
	return ComplexesOutput{
		Complexes: entries,
		Count:     len(entries),
	}
}
