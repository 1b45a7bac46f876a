// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz documents for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/repository"
)

// Server wraps the MCP server with Ansuz document tools.
type Server struct {
	mcp     *server.MCPServer
	docs    *repository.Documents
	exports *export.Registry
}

// New creates a new MCP server with all Ansuz tools registered.
func New(docs *repository.Documents, exports *export.Registry) *Server {
	s := &Server{docs: docs, exports: exports}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document including its content and metadata."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new Markdown document. The body MUST follow the "+
			"Ansuz document contract (plain Markdown, title and tags as metadata, no "+
			"frontmatter). Read the contract first via the get_document_contract tool "+
			"or the ansuz://document-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Document title")),
		mcp.WithString("content", mcp.Description("Markdown body (empty for a blank document)")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("update_document",
		mcp.WithDescription("Update a document. Only the provided fields change; "+
			"omitted fields keep their current value."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New Markdown body (replaces the old body)")),
		mcp.WithString("tags", mcp.Description("New comma-separated tags (empty clears them)")),
	), s.updateDocument)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the canonical Ansuz document contract. "+
			"Call this before creating or updating documents to ensure correct structure."),
	), s.getDocumentContract)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents, most recently modified first."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Render a document to a file in the requested format."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("format", mcp.Required(), mcp.Description("Export format: pdf, html, docx, or xlsx")),
		mcp.WithString("dir", mcp.Description("Optional output directory (default: current directory)")),
	), s.exportDocument)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Import a Markdown or plain-text file from a URL or a "+
			"base64 data URI as a new document. The title is derived from the file name."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data: URI of the file")),
		mcp.WithString("filename", mcp.Description("Optional file name used to derive the title")),
	), s.importDocument)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://document-format", "Document Contract",
			mcp.WithResourceDescription("Canonical document structure that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentContractResource,
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

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.docs.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.docs.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields := models.DocumentFields{Title: title}
	if v, cErr := req.RequireString("content"); cErr == nil {
		fields.Content = v
	}
	if v, tErr := req.RequireString("tags"); tErr == nil {
		fields.Tags = splitTags(v)
	}

	doc, err := s.docs.Create(ctx, fields)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", doc.ID)), nil
}

func (s *Server) updateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var patch models.DocumentPatch
	if v, tErr := req.RequireString("title"); tErr == nil {
		patch.Title = &v
	}
	if v, cErr := req.RequireString("content"); cErr == nil {
		patch.Content = &v
	}
	if v, tErr := req.RequireString("tags"); tErr == nil {
		tags := splitTags(v)
		patch.Tags = &tags
	}
	if patch.IsZero() {
		return mcp.NewToolResultError("nothing to update: provide title, content, or tags"), nil
	}

	doc, err := s.docs.Update(ctx, id, patch)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", doc.ID)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}

	var lines []string
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", d.ID, d.Title, d.ModifiedAt.Format(time.RFC3339)))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

type exportResult struct {
	SavedPath string `json:"savedPath"`
	Format    string `json:"format"`
	Size      int64  `json:"size"`
}

func (s *Server) exportDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir := "."
	if v, dErr := req.RequireString("dir"); dErr == nil && v != "" {
		dir = v
	}

	exp, err := s.exports.Get(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.docs.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := exp.Export(*doc, export.DefaultOptions())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}

	savePath := filepath.Join(dir, export.Filename(doc.Title, exp.Format()))
	if err := os.WriteFile(savePath, data, 0o644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write %s: %v", savePath, err)), nil
	}

	out, _ := json.Marshal(exportResult{
		SavedPath: savePath,
		Format:    exp.Format(),
		Size:      int64(len(data)),
	})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentContract), nil
}

func (s *Server) readDocumentContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentContract,
		},
	}, nil
}

// splitTags parses a comma-separated tag string, dropping empty entries.
func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
