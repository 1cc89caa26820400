// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the post converter and migration journal over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/postmigrate/internal/apperr"
	"github.com/starford/postmigrate/internal/migrator"
	"github.com/starford/postmigrate/internal/models"
)

// FormatURI is the resource URI of FormatContract.
const FormatURI = "postmigrate://format"

// Server wraps the MCP server with postmigrate tools.
type Server struct {
	mcp *server.MCPServer
	svc *migrator.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *migrator.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"postmigrate",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("convert_post",
		mcp.WithDescription("Convert one legacy Jekyll post to the canonical format without writing it. "+
			"Returns the outcome, the converted text and a line diff. Read the format contract first via "+
			"get_format_contract or the "+FormatURI+" resource."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Post filename, e.g. 2020-01-15-hello-world.md")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full legacy post text including the header block")),
	), s.convertPost)

	s.mcp.AddTool(mcp.NewTool("migrate_file",
		mcp.WithDescription("Convert one post from the input directory and write it to the output directory."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the input directory")),
	), s.migrateFile)

	s.mcp.AddTool(mcp.NewTool("list_migrations",
		mcp.WithDescription("List migration journal rows, newest post first."),
		mcp.WithString("status", mcp.Description("Optional filter: migrated or skipped")),
		mcp.WithString("query", mcp.Description("Optional text matched against filename, title and tags")),
	), s.listMigrations)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a converted post from the output directory."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the output directory")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the legacy input and canonical output format contract."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Post Format Contract",
			mcp.WithResourceDescription("Legacy Jekyll input format and canonical output format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) convertPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := s.svc.Preview(filename, content)
	if p.Outcome.Status == models.StatusSkipped {
		return mcp.NewToolResultError(fmt.Sprintf("skipped %s: %s", filename, p.Outcome.Reason)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) migrateFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	o, err := s.svc.MigrateFile(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if o.Status == models.StatusSkipped {
		return mcp.NewToolResultError(fmt.Sprintf("skipped %s: %s", o.Filename, o.Reason)), nil
	}
	out, _ := json.MarshalIndent(o, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listMigrations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	query := req.GetString("query", "")

	var (
		rows []models.Outcome
		err  error
	)
	if query != "" {
		rows, err = s.svc.SearchMigrations(ctx, query, 50)
	} else {
		rows, _, err = s.svc.Migrations(ctx, models.Status(status), 50, 0)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no migrations found"), nil
	}

	lines := make([]string, len(rows))
	for i, o := range rows {
		switch o.Status {
		case models.StatusSkipped:
			lines[i] = fmt.Sprintf("%s\tskipped\t%s", o.Filename, o.Reason)
		default:
			lines[i] = fmt.Sprintf("%s\t%s\t%s", o.Filename, o.Status, o.OutputPath)
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.Output(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
