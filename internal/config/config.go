package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Log formats
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = LogFormatConsole
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix is prepended to every environment variable, e.g. MCP_PDF_FORMS_PORT
	EnvPrefix = "MCP_PDF_FORMS"
)

// ErrVersionRequested is returned by Load when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the PDF forms server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory   string
	MaxFileSize    int64 // Maximum PDF file size in bytes
	AllowOverwrite bool  // Whether a fill may replace an existing output file

	// APIKeys guard the HTTP API in server mode; empty disables auth
	APIKeys []string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		Version:      "1.0.0",
		ServerName:   "mcp-pdf-forms",
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load parses args with a dedicated flag set. Flags take precedence over
// MCP_PDF_FORMS_* environment variables, which take precedence over defaults.
func Load(program string, args []string) (*Config, error) {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return nil, ErrVersionRequested
		}
	}

	cfg := DefaultConfig()
	v := viper.New()
	setupViperEnvironment(v, cfg)

	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)
	defineCommandLineFlags(flags, cfg)
	flags.Usage = usage(program, flags)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	populateConfigFromViper(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("log-format", cfg.LogFormat)
	v.SetDefault("max-file-size", cfg.MaxFileSize)
	v.SetDefault("allow-overwrite", cfg.AllowOverwrite)
	v.SetDefault("api-key", []string{})
}

func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.PDFDirectory, "Directory containing PDF forms; all paths must stay inside it")
	flags.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("log-format", cfg.LogFormat, "Log format (console, json)")
	flags.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Bool("allow-overwrite", cfg.AllowOverwrite, "Allow filled forms to replace existing files")
	flags.StringSlice("api-key", nil, "Bearer token accepted by the HTTP API, repeatable (server mode only)")
}

func usage(program string, flags *pflag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", program)
		fmt.Fprintf(os.Stderr, "\nMCP PDF Forms - list and fill PDF form fields over MCP or HTTP\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio mode, current directory\n", program)
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/forms                     # stdio mode with custom directory\n", program)
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081 --log-format=json\n", program)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE, %s_HOST, %s_PORT, %s_DIR\n", EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOG_LEVEL, %s_LOG_FORMAT, %s_MAX_FILE_SIZE, %s_ALLOW_OVERWRITE\n",
			EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_API_KEY (space separated)\n", EnvPrefix)
	}
}

func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.LogLevel = v.GetString("log-level")
	cfg.LogFormat = v.GetString("log-format")
	cfg.MaxFileSize = v.GetInt64("max-file-size")
	cfg.AllowOverwrite = v.GetBool("allow-overwrite")
	cfg.APIKeys = v.GetStringSlice("api-key")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Create the PDF directory if it doesn't exist
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.LogFormat)
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

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, LogFormat: %s, "+
		"MaxFileSize: %d, AllowOverwrite: %t, APIKeys: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.LogFormat, c.MaxFileSize, c.AllowOverwrite, len(c.APIKeys))
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
