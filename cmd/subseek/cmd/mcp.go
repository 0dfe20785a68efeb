package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/logging"
	mcpserver "github.com/subseek/subseek/internal/mcp"
	"github.com/subseek/subseek/pkg/captionsearch"
	"github.com/subseek/subseek/pkg/version"
)

func newMCPCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Start the Model Context Protocol server for AI assistants.

The server speaks JSON-RPC over stdin/stdout and exposes two tools:
  search_captions  full-text caption search with highlighted snippets
  get_video        metadata for a single video

Stdout is reserved for the protocol, so logs go to ` + logging.DefaultLogDir() + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level for the MCP session (default: debug)")

	return cmd
}

func runMCP(ctx context.Context, logLevel string) error {
	// Stdout carries JSON-RPC frames. File-only logging must be in
	// place before anything else can print.
	cleanup, err := logging.SetupMCPMode(logLevel)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config load failed", slog.String("error", err.Error()))
		return err
	}

	client, err := captionsearch.Open(cfg, slog.Default())
	if err != nil {
		slog.Error("backend open failed",
			slog.String("backend", cfg.Backend),
			slog.String("error", err.Error()))
		return err
	}
	defer func() { _ = client.Close() }()

	srv, err := mcpserver.NewServer(client, client.Videos(), slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("mcp server starting",
		slog.String("backend", cfg.Backend),
		slog.String("version", version.Version))

	return srv.Serve(ctx)
}
