// Package mcp exposes the gateway operations as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultNumResults = 10

type Server struct {
	svc       *gateway.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

func NewServer(svc *gateway.Service, logger *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger.With("module", "mcp"),
	}
	s.mcpServer = server.NewMCPServer(
		"graphgate",
		gateway.Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// SSEServer returns the SSE transport mounted under basePath.
func (s *Server) SSEServer(basePath string) *server.SSEServer {
	return server.NewSSEServer(
		s.mcpServer,
		server.WithBasePath(basePath),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
	)
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "add_episode",
		Description: "Ingest an episode of text into the knowledge graph",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name":               stringProp("Short label for the episode"),
				"episode_body":       stringProp("The text to ingest"),
				"source_description": stringProp("Where the text came from"),
				"reference_time":     stringProp("When the episode happened (ISO 8601)"),
				"group_id":           stringProp("Graph partition the episode belongs to"),
			},
			Required: []string{"name", "episode_body", "source_description", "reference_time", "group_id"},
		},
	}, s.handleAddEpisode)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "search",
		Description: "Search facts in the knowledge graph",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query":     stringProp("Free-text query"),
				"group_ids": stringProp("Comma-separated group ids; empty searches every group"),
				"num_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of facts (default 10)",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearch)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_episode",
		Description: "Delete an episode by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"episode_id": stringProp("Episode uuid"),
			},
			Required: []string{"episode_id"},
		},
	}, s.handleDeleteEpisode)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_entity_edges",
		Description: "List facts whose relation name contains the entity name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"entity_name": stringProp("Entity name, matched case-insensitively"),
				"group_ids":   stringProp("Comma-separated group ids"),
			},
			Required: []string{"entity_name"},
		},
	}, s.handleGetEntityEdges)
}

func parseParams(args interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleAddEpisode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var body gateway.EpisodeRequestBody
	if err := parseParams(request.Params.Arguments, &body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if missing := body.Missing(); len(missing) > 0 {
		return mcp.NewToolResultError("invalid parameters: missing " + strings.Join(missing, ", ")), nil
	}

	resp, err := s.svc.AddEpisode(ctx, body.Request())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add episode: %v", err)), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Query      string `json:"query"`
		GroupIDs   string `json:"group_ids"`
		NumResults *int   `json:"num_results"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	limit := defaultNumResults
	if params.NumResults != nil {
		limit = *params.NumResults
	}

	res, err := s.svc.Search(ctx, params.Query, gateway.ParseGroupIDs(params.GroupIDs), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(res)
}

func (s *Server) handleDeleteEpisode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		EpisodeID string `json:"episode_id"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	resp, err := s.svc.DeleteEpisode(ctx, params.EpisodeID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleGetEntityEdges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		EntityName string `json:"entity_name"`
		GroupIDs   string `json:"group_ids"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	res, err := s.svc.GetEntityEdges(ctx, params.EntityName, gateway.ParseGroupIDs(params.GroupIDs))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get entity edges: %v", err)), nil
	}
	return jsonResult(res)
}
