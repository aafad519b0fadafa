package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/acroform"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}
	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_form_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fields")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	), s.handlePDFFormFields)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_form_fill",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fill")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF form to fill"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Path of the .pdf file to write"),
		),
		mcp.WithObject("values",
			mcp.Required(),
			mcp.Description("Map of fully qualified field names to values. A JSON-encoded string is also accepted."),
		),
	), s.handlePDFFormFill)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	), s.handlePDFValidateFile)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	), s.handlePDFServerInfo)
}

func (s *Server) handlePDFFormFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFFormFields(pdf.PDFFormFieldsRequest{Path: path})
	if err != nil {
		s.logger.Warn("pdf_form_fields failed", zap.String("path", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFormFieldsResult(result)), nil
}

func (s *Server) handlePDFFormFill(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values, err := parseValues(request.GetArguments()["values"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid values: %v", err)), nil
	}

	result, err := s.pdfService.PDFFormFill(pdf.PDFFormFillRequest{
		Path:       path,
		OutputPath: output,
		Values:     values,
	})
	if err != nil {
		s.logger.Warn("pdf_form_fill failed", zap.String("path", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFormFillResult(result)), nil
}

func (s *Server) handlePDFValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)), nil
	}
	form := "has no AcroForm"
	if result.HasForm {
		form = "has an AcroForm"
	}
	return mcp.NewToolResultText(
		fmt.Sprintf("PDF file %s is valid and readable (%d pages) and %s", result.Path, result.Pages, form)), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.PDFServerInfo(ctx, pdf.PDFServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// parseValues accepts the values argument either as an object or as a
// JSON-encoded object string
func parseValues(raw any) (map[string]acroform.FieldValue, error) {
	var obj map[string]any
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("values are required")
	case map[string]any:
		obj = v
	case string:
		dec := json.NewDecoder(strings.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("values must be a JSON object: %w", err)
		}
	default:
		return nil, fmt.Errorf("values must be an object, got %T", raw)
	}

	return acroform.ParseValueMap(obj)
}

func formatFormFieldsResult(result *pdf.PDFFormFieldsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Form fields in %s\n", result.Path)
	fmt.Fprintf(&b, "Pages: %d\n", result.Pages)

	if !result.HasForm {
		b.WriteString("This document has no AcroForm.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Fields: %d\n\n", result.Count)
	for i, f := range result.Fields {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f)
		if f.DefaultValue != nil {
			fmt.Fprintf(&b, "   default: %q\n", f.DefaultValue.String())
		}
		if f.Tooltip != nil {
			fmt.Fprintf(&b, "   tooltip: %s\n", *f.Tooltip)
		}
		var flags []string
		if f.ReadOnly() {
			flags = append(flags, "read-only")
		}
		if f.Required() {
			flags = append(flags, "required")
		}
		if f.NoExport() {
			flags = append(flags, "no-export")
		}
		if len(flags) > 0 {
			fmt.Fprintf(&b, "   flags: %s\n", strings.Join(flags, ", "))
		}
	}

	if data, err := json.MarshalIndent(result.Fields, "", "  "); err == nil {
		b.WriteString("\nJSON:\n")
		b.Write(data)
		b.WriteString("\n")
	}
	return b.String()
}

func formatFormFillResult(result *pdf.PDFFormFillResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filled %s\n", result.Path)
	fmt.Fprintf(&b, "Output: %s (%d bytes)\n", result.OutputPath, result.Size)
	fmt.Fprintf(&b, "Fields updated: %d\n", len(result.Report.FieldsUpdated))
	for _, name := range result.Report.FieldsUpdated {
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	fmt.Fprintf(&b, "Widget annotations updated: %d\n", result.Report.AnnotationsUpdated)

	if len(result.Report.Unmatched) > 0 {
		unmatched := append([]string(nil), result.Report.Unmatched...)
		sort.Strings(unmatched)
		fmt.Fprintf(&b, "\nNo field or widget matched: %s\n", strings.Join(unmatched, ", "))
		b.WriteString("Use pdf_form_fields to list the qualified names.\n")
	}
	return b.String()
}

func formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s v%s - Server Information\n", result.ServerName, result.Version)
	fmt.Fprintf(&b, "Directory: %s\n", result.DefaultDirectory)
	fmt.Fprintf(&b, "Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	fmt.Fprintf(&b, "Overwrite: %t\n\n", result.AllowOverwrite)

	if len(result.DirectoryContents) == 0 {
		b.WriteString("Directory Contents: no PDF files found\n\n")
	} else {
		fmt.Fprintf(&b, "Directory Contents (%d PDF files):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 {
				fmt.Fprintf(&b, "   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			fmt.Fprintf(&b, "   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		if result.Truncated {
			b.WriteString("   (listing truncated)\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Available Tools:\n")
	for _, tool := range result.AvailableTools {
		fmt.Fprintf(&b, "\n- %s\n", tool.Name)
		fmt.Fprintf(&b, "  Usage: %s\n", tool.Usage)
		fmt.Fprintf(&b, "  Parameters: %s\n", tool.Parameters)
	}

	b.WriteString("\n" + result.UsageGuidance)
	return b.String()
}

// SSEHandler exposes the MCP server over server-sent events. baseURL is the
// externally visible address used to build message endpoint URLs.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	return server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
}

// Run serves MCP over stdin and stdout until ctx is done or input ends
func (s *Server) Run(ctx context.Context) error {
	if !s.config.IsStdioMode() {
		return fmt.Errorf("mode %q is served by the HTTP transport, not stdio", s.config.Mode)
	}

	s.logger.Info("starting MCP server in stdio mode",
		zap.String("directory", s.config.PDFDirectory),
		zap.String("version", s.config.Version),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
