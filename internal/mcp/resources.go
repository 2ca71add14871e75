// ABOUTME: MCP resource implementations for the dojo journal.
// ABOUTME: Provides dojo://today, dojo://level, and dojo://programs resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	todayURI    = "dojo://today"
	levelURI    = "dojo://level"
	programsURI = "dojo://programs"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today",
		Description: "Today's sessions, hydration, supplements, and level",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         levelURI,
		Name:        "Level",
		Description: "Current level and XP progress",
		MIMEType:    "application/json",
	}, s.handleLevelResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         programsURI,
		Name:        "Programs",
		Description: "Every workout program with its exercises",
		MIMEType:    "application/json",
	}, s.handleProgramsResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sum, err := s.journal.Summary(s.journal.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return jsonResource(todayURI, sum)
}

func (s *Server) handleLevelResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	info, err := s.journal.Level()
	if err != nil {
		return nil, fmt.Errorf("failed to compute level: %w", err)
	}
	today, err := s.journal.Breakdown(s.journal.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to compute today's XP: %w", err)
	}
	return jsonResource(levelURI, newLevelOutput(info, today))
}

func (s *Server) handleProgramsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	programs, err := s.journal.Programs()
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	return jsonResource(programsURI, map[string]any{
		"programs": programs,
		"count":    len(programs),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
