// Package mcpadapter exposes the screener as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/core/ports"
)

const (
	serverName    = "resume-screener"
	serverVersion = "1.0.0"
)

type Server struct {
	screener ports.ResumeScreener
	catalog  ports.CategoryCatalog
	mcp      *server.MCPServer
}

func NewServer(screener ports.ResumeScreener, catalog ports.CategoryCatalog) *Server {
	s := &Server{
		screener: screener,
		catalog:  catalog,
		mcp:      server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool("screen_resume",
		mcp.WithDescription("Classify a resume into a job category. Supports .pdf, .docx and .txt files."),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Original file name; the extension selects the extractor"),
		),
		mcp.WithString("content_base64",
			mcp.Required(),
			mcp.Description("File content, standard base64"),
		),
		mcp.WithBoolean("include_text",
			mcp.Description("Return the extracted and normalized text"),
		),
	), s.screenResume)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the job categories the loaded model can predict"),
	), s.listCategories)

	return s
}

// ServeStdio blocks until stdin is closed or the process is signalled.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) screenResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	encoded, err := req.RequireString("content_base64")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("content_base64 is not valid base64: %v", err)), nil
	}

	screening, err := s.screener.Screen(ctx, filename, payload)
	if err != nil {
		return mcp.NewToolResultError(toolError(err)), nil
	}
	if !req.GetBool("include_text", false) {
		out := screening.WithoutText()
		screening = &out
	}

	body, err := json.Marshal(screening)
	if err != nil {
		return nil, fmt.Errorf("marshal screening: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) listCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(map[string]any{"categories": s.catalog.Categories()})
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

func toolError(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrUnsupportedFormat),
		domain.IsKind(err, domain.ErrExtractionFailure),
		domain.IsKind(err, domain.ErrInvalidInput):
		return domain.KindName(err) + ": " + err.Error()
	default:
		return domain.KindName(err) + ": screening failed"
	}
}
