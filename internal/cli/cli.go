// Package cli implements the pdf-forms command line tool.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	logpkg "github.com/a3tai/mcp-pdf-forms/internal/logger"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version   string
	verbose   bool
	logFormat string
	logger    *zap.Logger
	rootCmd   *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version, logger: zap.NewNop()}
	c.setupCommands()
	return c
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:           "pdf-forms",
		Short:         "List and fill AcroForm fields of PDF documents",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initLogger()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	c.rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", config.LogFormatConsole, "Log format (console, json)")

	c.rootCmd.AddCommand(c.newFieldsCommand())
	c.rootCmd.AddCommand(c.newFillCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	return c.rootCmd.Execute()
}

// Root exposes the root command, e.g. to set arguments and writers in tests
func (c *CLI) Root() *cobra.Command {
	return c.rootCmd
}

func (c *CLI) initLogger() error {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(c.logFormat, level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.logger = logger
	return nil
}

func checkFormat(format string) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format %q (must be one of: text, json)", format)
	}
	return nil
}
