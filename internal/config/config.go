package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/pdf-acroform/internal/ocr"
)

const (
	// Mode constants
	ModeConvert = "convert"
	ModeStdio   = "stdio"
	ModeServer  = "server"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultDPI             = 150
	DefaultOCRLanguage     = "eng"
	DefaultMistralEndpoint = ocr.DefaultMistralEndpoint
	DefaultMistralModel    = ocr.DefaultMistralModel
	DefaultRemoteTimeout   = ocr.DefaultRemoteTimeout
	DefaultPdftoppm        = "pdftoppm"
	DefaultOutputSuffix    = "_editable"

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "PDF_ACROFORM"
)

// Config holds all configuration for the converter and its MCP server
type Config struct {
	// Server configuration
	Mode string // "convert", "stdio" or "server"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes
	OutputSuffix string

	// Detection configuration
	DPI          int
	OCRLanguage  string
	PdftoppmPath string

	// Remote OCR configuration
	MistralAPIKey   string
	MistralEndpoint string
	MistralModel    string
	RemoteTimeout   time.Duration

	// Convert mode arguments
	InputPath  string
	OutputPath string
	DryRun     bool

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:            ModeConvert,
		Host:            DefaultHost,
		Port:            DefaultPort,
		PDFDirectory:    currentDir,
		MaxFileSize:     DefaultMaxFileSize,
		OutputSuffix:    DefaultOutputSuffix,
		DPI:             DefaultDPI,
		OCRLanguage:     DefaultOCRLanguage,
		PdftoppmPath:    DefaultPdftoppm,
		MistralEndpoint: DefaultMistralEndpoint,
		MistralModel:    DefaultMistralModel,
		RemoteTimeout:   DefaultRemoteTimeout,
		Version:         "1.0.0",
		ServerName:      "pdf-acroform",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
// In convert mode the positional arguments are the input PDF and,
// optionally, the output path.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	loadDotEnv()
	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	populatePositionalArgs(cfg, pflag.Args())

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// The service's own variable name is honoured too
	_ = viper.BindEnv("mistral-api-key", envPrefix+"_MISTRAL_API_KEY", "MISTRAL_API_KEY")

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("output-suffix", cfg.OutputSuffix)
	viper.SetDefault("dpi", cfg.DPI)
	viper.SetDefault("ocr-language", cfg.OCRLanguage)
	viper.SetDefault("pdftoppm", cfg.PdftoppmPath)
	viper.SetDefault("mistral-endpoint", cfg.MistralEndpoint)
	viper.SetDefault("mistral-model", cfg.MistralModel)
	viper.SetDefault("remote-timeout", cfg.RemoteTimeout)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'convert' for one file, 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory the MCP tools may read and write PDF files in")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("output-suffix", cfg.OutputSuffix, "Suffix of the default output file name")
	pflag.Int("dpi", cfg.DPI, "Resolution pages are rendered at for local OCR")
	pflag.String("ocr-language", cfg.OCRLanguage, "Tesseract language(s), e.g. 'eng' or 'eng+deu'")
	pflag.String("pdftoppm", cfg.PdftoppmPath, "Path of the pdftoppm binary")
	pflag.String("mistral-api-key", "", "Mistral API key for remote OCR (or MISTRAL_API_KEY)")
	pflag.String("mistral-endpoint", cfg.MistralEndpoint, "Mistral OCR endpoint")
	pflag.String("mistral-model", cfg.MistralModel, "Mistral OCR model")
	pflag.Duration("remote-timeout", cfg.RemoteTimeout, "Timeout of the remote OCR request")
	pflag.Bool("dry-run", false, "Detect fields and print them as JSON without writing a PDF (convert mode only)")
}

var boundFlags = []string{
	"mode", "host", "port", "dir", "loglevel", "maxfilesize", "output-suffix",
	"dpi", "ocr-language", "pdftoppm",
	"mistral-api-key", "mistral-endpoint", "mistral-model", "remote-timeout",
	"dry-run",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range boundFlags {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s [options] input.pdf [output.pdf]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF AcroForm - detects form fields in flat PDFs and makes them fillable\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s form.pdf                                 "+
			"# writes form_editable.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dry-run form.pdf                       "+
			"# print detected fields as JSON\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/pdfs         # MCP over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # MCP over HTTP\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (a .env file is read too):\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_MODE            Run mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_HOST            Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_PORT            Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_DIR             PDF directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_LOGLEVEL        Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_DPI             Render resolution\n")
		fmt.Fprintf(os.Stderr, "  PDF_ACROFORM_OCR_LANGUAGE    Tesseract language\n")
		fmt.Fprintf(os.Stderr, "  MISTRAL_API_KEY              Mistral API key\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.OutputSuffix = viper.GetString("output-suffix")
	cfg.DPI = viper.GetInt("dpi")
	cfg.OCRLanguage = viper.GetString("ocr-language")
	cfg.PdftoppmPath = viper.GetString("pdftoppm")
	cfg.MistralAPIKey = viper.GetString("mistral-api-key")
	cfg.MistralEndpoint = viper.GetString("mistral-endpoint")
	cfg.MistralModel = viper.GetString("mistral-model")
	cfg.RemoteTimeout = viper.GetDuration("remote-timeout")
	cfg.DryRun = viper.GetBool("dry-run")
}

func populatePositionalArgs(cfg *Config, args []string) {
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}
	if len(args) > 1 {
		cfg.OutputPath = args[1]
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeConvert && c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be one of 'convert', 'stdio' or 'server'")
	}

	if c.Mode == ModeConvert && c.InputPath == "" {
		return errors.New("convert mode needs an input PDF")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// The tool directory only matters to the MCP modes
	if c.Mode != ModeConvert {
		if err := c.ensurePDFDirectory(); err != nil {
			return err
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.DPI < 36 || c.DPI > 1200 {
		return fmt.Errorf("dpi must be between 36 and 1200, got %d", c.DPI)
	}
	if c.OCRLanguage == "" {
		return errors.New("OCR language cannot be empty")
	}
	if c.RemoteTimeout <= 0 {
		return errors.New("remote timeout must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

func (c *Config) ensurePDFDirectory() error {
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration. The API key
// is only reported as set or not.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"DPI: %d, OCRLanguage: %s, RemoteOCR: %t}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.DPI, c.OCRLanguage, c.MistralAPIKey != "")
}

// IsConvertMode returns true if a single file is converted from the command line
func (c *Config) IsConvertMode() bool {
	return c.Mode == ModeConvert
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
