package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/terramesa/uplinkmap/internal/geoindex"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the loaded dataset to AI
// agents: name search, nearest-node lookup, connector-line status and
// dataset summaries.
type Server struct {
	index    *hierarchy.Index
	state    *hierarchy.State
	searcher *search.Index
	locator  *geoindex.Index
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server over an already loaded dataset.
func NewServer(index *hierarchy.Index, state *hierarchy.State, searcher *search.Index, locator *geoindex.Index) *Server {
	s := &Server{
		index:    index,
		state:    state,
		searcher: searcher,
		locator:  locator,
	}

	s.mcp = server.NewMCPServer(
		"uplinkmap",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchNodesTool, s.handleSearchNodes)
	s.mcp.AddTool(nearestNodeTool, s.handleNearestNode)
	s.mcp.AddTool(linkVisibilityTool, s.handleLinkVisibility)
	s.mcp.AddTool(datasetStatsTool, s.handleDatasetStats)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
