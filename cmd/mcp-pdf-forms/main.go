package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/config"
	logpkg "github.com/a3tai/mcp-pdf-forms/internal/logger"
	"github.com/a3tai/mcp-pdf-forms/internal/mcp"
	"github.com/a3tai/mcp-pdf-forms/internal/pdf"
	chiTransport "github.com/a3tai/mcp-pdf-forms/internal/transport/chi"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, os.Args[0], os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-pdf-forms: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, program string, args []string, stdout io.Writer) error {
	cfg, err := config.Load(program, args)
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(stdout)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logpkg.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("loaded configuration", zap.Stringer("config", cfg))

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory,
		pdf.WithLogger(logger),
		pdf.WithOverwrite(cfg.AllowOverwrite),
	)
	if err != nil {
		return fmt.Errorf("failed to create PDF service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if cfg.IsServerMode() {
		return runServerMode(ctx, cfg, pdfService, server, logger)
	}
	return server.Run(ctx)
}

// runServerMode serves the HTTP API and MCP over SSE until ctx is done
func runServerMode(ctx context.Context, cfg *config.Config, pdfService *pdf.Service, server *mcp.Server,
	logger *zap.Logger,
) error {
	listener, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Address(), err)
	}

	baseURL := "http://" + listener.Addr().String()
	handler := chiTransport.NewRouter(
		chiTransport.NewServer(pdfService, cfg.Version, logger),
		chiTransport.RouterOptions{
			APIKeys: cfg.APIKeys,
			MCP:     server.SSEHandler(baseURL),
		},
	)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			zap.String("addr", listener.Addr().String()),
			zap.String("directory", cfg.PDFDirectory),
			zap.Bool("auth", len(cfg.APIKeys) > 0),
		)
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP PDF Forms\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
