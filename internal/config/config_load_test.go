package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load("mcp-pdf-forms", []string{"--dir=" + dir})
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.False(t, cfg.AllowOverwrite)
	assert.Empty(t, cfg.APIKeys)
	assert.Equal(t, dir, cfg.PDFDirectory)
}

func TestLoad_Flags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "server mode with custom host and port",
			args: []string{"--mode=server", "--host=0.0.0.0", "--port=9090"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsServerMode())
				assert.Equal(t, "0.0.0.0:9090", cfg.Address())
			},
		},
		{
			name: "debug logging as json",
			args: []string{"--log-level=debug", "--log-format=json"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsDebug())
				assert.Equal(t, LogFormatJSON, cfg.LogFormat)
			},
		},
		{
			name: "custom max file size",
			args: []string{"--max-file-size=1024"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(1024), cfg.MaxFileSize)
			},
		},
		{
			name: "overwrite enabled",
			args: []string{"--allow-overwrite"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.AllowOverwrite)
			},
		},
		{
			name: "repeated api keys",
			args: []string{"--api-key=alpha", "--api-key=beta"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"alpha", "beta"}, cfg.APIKeys)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--dir=" + t.TempDir()}, tt.args...)
			cfg, err := Load("mcp-pdf-forms", args)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MCP_PDF_FORMS_MODE", "server")
	t.Setenv("MCP_PDF_FORMS_HOST", "192.168.1.1")
	t.Setenv("MCP_PDF_FORMS_PORT", "3000")
	t.Setenv("MCP_PDF_FORMS_DIR", dir)
	t.Setenv("MCP_PDF_FORMS_LOG_LEVEL", "warn")
	t.Setenv("MCP_PDF_FORMS_LOG_FORMAT", "json")
	t.Setenv("MCP_PDF_FORMS_MAX_FILE_SIZE", "200000000")
	t.Setenv("MCP_PDF_FORMS_ALLOW_OVERWRITE", "true")

	cfg, err := Load("mcp-pdf-forms", nil)
	require.NoError(t, err)

	assert.Equal(t, ModeServer, cfg.Mode)
	assert.Equal(t, "192.168.1.1", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, int64(200000000), cfg.MaxFileSize)
	assert.True(t, cfg.AllowOverwrite)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("MCP_PDF_FORMS_MODE", "server")
	t.Setenv("MCP_PDF_FORMS_HOST", "192.168.1.1")
	t.Setenv("MCP_PDF_FORMS_PORT", "3000")

	cfg, err := Load("mcp-pdf-forms", []string{
		"--mode=stdio", "--host=localhost", "--port=8888", "--dir=" + t.TempDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8888, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either"},
		{"invalid port", []string{"--mode=server", "--port=70000"}, "port must be between"},
		{"invalid log level", []string{"--log-level=verbose"}, "invalid log level"},
		{"invalid log format", []string{"--log-format=xml"}, "invalid log format"},
		{"non-positive max size", []string{"--max-file-size=0"}, "maximum file size must be positive"},
		{"unknown flag", []string{"--nope"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--dir=" + t.TempDir()}, tt.args...)
			_, err := Load("mcp-pdf-forms", args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_VersionFlag(t *testing.T) {
	for _, arg := range []string{"--version", "-version", "-v"} {
		_, err := Load("mcp-pdf-forms", []string{arg})
		assert.ErrorIs(t, err, ErrVersionRequested, arg)
	}
}
