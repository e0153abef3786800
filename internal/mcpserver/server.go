// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes parcel catalog tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mos-jef/title-crm/internal/parcelservice"
)

// Server wraps the MCP server with parcel catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *parcelservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *parcelservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Title CRM",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_parcels",
		mcp.WithDescription("List every parcel record in the catalog as JSON."),
	), s.listParcels)

	s.mcp.AddTool(mcp.NewTool("get_parcel",
		mcp.WithDescription("Read one parcel record by its id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Parcel record id")),
	), s.getParcel)

	s.mcp.AddTool(mcp.NewTool("find_parcel",
		mcp.WithDescription("Find a parcel by assessor parcel number. "+
			"Hyphens, periods, spacing, and case are ignored, so 123-45-678 "+
			"and 12345678 find the same record."),
		mcp.WithString("apn", mcp.Required(), mcp.Description("Assessor parcel number")),
	), s.findParcel)

	s.mcp.AddTool(mcp.NewTool("set_completed",
		mcp.WithDescription("Set or clear the completed flag on a parcel record."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Parcel record id")),
		mcp.WithBoolean("completed", mcp.Required(), mcp.Description("New flag value")),
	), s.setCompleted)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List a parcel's documents grouped by category folder."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Parcel record id")),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("attach_document",
		mcp.WithDescription("Copy a local document into a parcel's category folder. "+
			"Read the titlecrm://folder-layout resource for the category names."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Parcel record id")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category folder name, e.g. Taxes")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the document to attach")),
	), s.attachDocument)

	// Resource: folder layout contract.
	s.mcp.AddResource(
		mcp.NewResource("titlecrm://folder-layout", "Parcel Folder Layout",
			mcp.WithResourceDescription("Canonical category folder layout every parcel folder follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFolderLayoutResource,
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

func (s *Server) listParcels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	parcels := s.svc.ListParcels(ctx)
	out, _ := json.MarshalIndent(parcels, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getParcel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetParcel(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findParcel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("apn")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.FindByAPN(ctx, raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no parcel matches apn %q", raw)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) setCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	completed, err := req.RequireBool("completed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.SetCompleted(ctx, id, completed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("parcel %s completed=%t", p.ID, p.Completed)), nil
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := s.svc.ListFiles(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(files, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readFolderLayoutResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "titlecrm://folder-layout",
			MIMEType: "text/markdown",
			Text:     FolderLayoutContract,
		},
	}, nil
}
