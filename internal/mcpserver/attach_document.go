package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const maxDocumentSize = 50 << 20 // 50 MB

var allowedDocExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true,
}

func (s *Server) attachDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sourcePath, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !allowedDocExtensions[ext] {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension: %s (allowed: pdf, png, jpg, jpeg, tif, tiff)", ext)), nil
	}

	info, statErr := os.Stat(sourcePath)
	if statErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read source file: %v", statErr)), nil
	}
	if info.IsDir() {
		return mcp.NewToolResultError(fmt.Sprintf("source is a directory: %s", sourcePath)), nil
	}
	if info.Size() > maxDocumentSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", info.Size(), maxDocumentSize)), nil
	}

	name := filepath.Base(sourcePath)
	if err := s.svc.AttachFile(ctx, id, category, sourcePath, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("attached %s to parcel %s under %s", name, id, category)), nil
}
