package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-acroform/internal/config"
	"github.com/a3tai/pdf-acroform/internal/convert"
	"github.com/a3tai/pdf-acroform/internal/descriptions"
	"github.com/a3tai/pdf-acroform/internal/logging"
	"github.com/a3tai/pdf-acroform/internal/pdf/security"
)

const (
	// EndpointPath is where the streamable HTTP transport is served
	EndpointPath = "/mcp"

	shutdownTimeout = 5 * time.Second
)

// Converter is the conversion surface the tools drive
type Converter interface {
	Detect(ctx context.Context, inputPath string) (*convert.Result, error)
	Convert(ctx context.Context, inputPath, outputPath string) (*convert.Result, error)
}

// ToolInfo summarizes one registered tool for pdf_server_info
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

var tools = []ToolInfo{
	{
		Name:        "pdf_detect_fields",
		Description: "Detect checkbox and text fields in a flat PDF and report them as JSON without writing anything",
		Parameters:  "path (required)",
	},
	{
		Name:        "pdf_convert_acroform",
		Description: "Detect fields in a flat PDF and write a fillable AcroForm copy",
		Parameters:  "path (required), output (optional, defaults to <name>_editable.pdf)",
	},
	{
		Name:        "pdf_server_info",
		Description: "Report server configuration and available tools",
		Parameters:  "none",
	},
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	converter Converter
	paths     *security.PathValidator
	mcpServer *server.MCPServer
	logger    *logging.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, converter Converter, logger *logging.Logger) (*Server, error) {
	if converter == nil {
		return nil, fmt.Errorf("converter cannot be nil")
	}
	paths, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF directory: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		converter: converter,
		paths:     paths,
		mcpServer: mcpServer,
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	detectTool := mcp.NewTool(
		tools[0].Name,
		mcp.WithDescription(descriptions.GetToolDescription(tools[0].Name)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF file, absolute or relative to the server directory"),
		),
	)
	s.mcpServer.AddTool(detectTool, s.handleDetectFields)

	convertTool := mcp.NewTool(
		tools[1].Name,
		mcp.WithDescription(descriptions.GetToolDescription(tools[1].Name)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF file, absolute or relative to the server directory"),
		),
		mcp.WithString("output",
			mcp.Description("Output PDF path; defaults to the input name with the configured suffix"),
		),
	)
	s.mcpServer.AddTool(convertTool, s.handleConvert)

	infoTool := mcp.NewTool(
		tools[2].Name,
		mcp.WithDescription(descriptions.GetToolDescription(tools[2].Name)),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

func (s *Server) handleDetectFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := s.paths.ResolveInput(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.converter.Detect(ctx, in)
	if err != nil {
		s.logger.Error("detect failed", "path", in, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("field detection failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := s.paths.ResolveInput(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output := request.GetString("output", "")
	if output == "" {
		output = convert.DefaultOutputPath(in, s.config.OutputSuffix)
	}
	out, err := s.paths.ResolveOutput(output)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.converter.Convert(ctx, in, out)
	if err != nil {
		s.logger.Error("convert failed", "path", in, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("conversion failed: %v", err)), nil
	}
	return mcp.NewToolResultText(s.formatConvertResult(result)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

func (s *Server) formatConvertResult(result *convert.Result) string {
	text := fmt.Sprintf("Converted %s\n", result.InputPath)
	text += fmt.Sprintf("Output: %s\n", result.OutputPath)
	text += fmt.Sprintf("Fields: %d\n", result.TotalFields)
	text += fmt.Sprintf("Run: %s (%s)\n", result.RunID, result.Duration.Round(time.Millisecond))

	for _, p := range result.Pages {
		text += fmt.Sprintf("  page %d: %d field(s), %s\n", p.Page, len(p.Fields), p.Strategy)
	}

	if msgs := result.Warnings.Messages(); len(msgs) > 0 {
		text += fmt.Sprintf("\n%s:\n", result.Warnings.Summary())
		for _, m := range msgs {
			text += fmt.Sprintf("  • %s\n", m)
		}
	}
	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("%s v%s\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Directory: %s\n", s.paths.Root())
	text += fmt.Sprintf("Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Render DPI: %d\n", s.config.DPI)
	text += fmt.Sprintf("Local OCR language: %s\n", s.config.OCRLanguage)
	if s.config.MistralAPIKey != "" {
		text += "Remote OCR: configured\n"
	} else {
		text += "Remote OCR: not configured (scanned pages yield no fields)\n"
	}

	text += "\nAvailable Tools:\n"
	for _, tool := range tools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode for MCP server: %s", s.config.Mode)
	}
}

// runStdioMode serves MCP over the process's standard streams until ctx ends
// or stdin closes
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Info("starting stdio server", "dir", s.paths.Root())

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the streamable HTTP transport until ctx ends
func (s *Server) runServerMode(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}
	return s.serveHTTP(ctx, ln)
}

func (s *Server) serveHTTP(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, server.NewStreamableHTTPServer(s.mcpServer))
	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String(), "endpoint", EndpointPath)
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		s.logger.Info("HTTP server stopped")
		return nil
	}
}
