package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdf-acroform/internal/config"
	"github.com/a3tai/pdf-acroform/internal/convert"
	"github.com/a3tai/pdf-acroform/internal/logging"
	"github.com/a3tai/pdf-acroform/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger writes to stderr in every mode: stdout carries the MCP protocol
// in stdio mode and the JSON report of a dry run
func newLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	return logging.NewLoggerTo(w, cfg.ServerName, logging.ParseLevel(cfg.LogLevel))
}

// runConvert converts, or with --dry-run only detects, the input named on
// the command line
func runConvert(ctx context.Context, cfg *config.Config, conv mcp.Converter, stdout, stderr io.Writer) error {
	if cfg.DryRun {
		result, err := conv.Detect(ctx, cfg.InputPath)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	output := cfg.OutputPath
	if output == "" {
		output = convert.DefaultOutputPath(cfg.InputPath, cfg.OutputSuffix)
	}
	result, err := conv.Convert(ctx, cfg.InputPath, output)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Created %s with %d field(s)\n", result.OutputPath, result.TotalFields)
	msgs := result.Warnings.Messages()
	if len(msgs) == 0 {
		return nil
	}
	fmt.Fprintln(stderr, result.Warnings.Summary())
	for _, m := range msgs {
		fmt.Fprintf(stderr, "warning: %s\n", m)
	}
	return nil
}

// runServer serves MCP until the context ends or the transport fails
func runServer(ctx context.Context, cfg *config.Config, conv mcp.Converter, logger *logging.Logger) error {
	server, err := mcp.NewServer(cfg, conv, logger.With("mcp"))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	if cfg.IsServerMode() {
		logger.Info("starting", "config", cfg.String())
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg, os.Stderr)
	logger.Debug("configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conv := convert.New(convert.OptionsFromConfig(cfg, logger.With("convert")))

	if cfg.IsConvertMode() {
		err = runConvert(ctx, cfg, conv, os.Stdout, os.Stderr)
	} else {
		err = runServer(ctx, cfg, conv, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF AcroForm\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
