// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Speeddial tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mklint/speeddial/internal/collection"
)

// Server wraps the MCP server with Speeddial tools.
type Server struct {
	mcp   *server.MCPServer
	store *collection.Store
}

// New creates a new MCP server with all Speeddial tools registered.
func New(store *collection.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Speeddial",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_websites",
		mcp.WithDescription("Search websites on a launcher page. Supports the tag query "+
			"grammar: 'tag:<name>' filters by tag, optionally followed by name text "+
			"(e.g. 'tag:work gh'); plain text matches website names."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("page", mcp.Description("Page index to search (default 0)")),
	), s.searchWebsites)

	s.mcp.AddTool(mcp.NewTool("list_websites",
		mcp.WithDescription("List every website in the collection in page/order sequence."),
	), s.listWebsites)

	s.mcp.AddTool(mcp.NewTool("add_website",
		mcp.WithDescription("Add a website to the collection. The URL may omit the scheme; "+
			"https:// is assumed. The website is placed on the first free grid slot."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name, 1-50 characters")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Target URL (scheme optional)")),
	), s.addWebsite)

	s.mcp.AddTool(mcp.NewTool("visit_website",
		mcp.WithDescription("Record a visit to a website and return its URL to open."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Website id")),
	), s.visitWebsite)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List all tags in the collection."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("export_collection",
		mcp.WithDescription("Export the full collection as a snapshot JSON document. "+
			"The document follows the snapshot format contract; read it via the "+
			"speeddial://snapshot-format resource."),
	), s.exportCollection)

	// Resource: snapshot format contract.
	s.mcp.AddResource(
		mcp.NewResource("speeddial://snapshot-format", "Snapshot Format Contract",
			mcp.WithResourceDescription("Canonical snapshot JSON format produced by export_collection."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSnapshotFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchWebsites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := req.GetInt("page", 0)
	if page < 0 {
		page = 0
	}
	out, _ := json.MarshalIndent(s.store.Search(page, query), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listWebsites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.store.Websites(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addWebsite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	site, err := s.store.AddWebsite(collection.WebsiteInput{Name: name, URL: url})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", site.ID, site.URL)), nil
}

func (s *Server) visitWebsite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	site, err := s.store.VisitWebsite(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(site.URL), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.store.Tags(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(s.store.Export(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readSnapshotFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "speeddial://snapshot-format",
			MIMEType: "text/markdown",
			Text:     SnapshotFormatContract,
		},
	}, nil
}
