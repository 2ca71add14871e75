// ABOUTME: MCP server setup for the dojo journal.
// ABOUTME: Wraps the MCP server with journal access so assistants can coach and log.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dojo/internal/journal"
	"github.com/harperreed/dojo/internal/models"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with journal access.
type Server struct {
	mcpServer *mcp.Server
	journal   *journal.Service
	catalog   models.Catalog
	logger    *log.Logger
}

// NewServer creates a new MCP server backed by j.
func NewServer(j *journal.Service, catalog models.Catalog, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if catalog == nil {
		catalog = models.DefaultCatalog()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "dojo",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		journal:   j,
		catalog:   catalog,
		logger:    logger.WithPrefix("mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
