package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/logging"
	"github.com/subseek/subseek/internal/server"
	"github.com/subseek/subseek/pkg/captionsearch"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Long: `Start the HTTP API server.

Endpoints:
  GET  /healthz            liveness probe
  GET  /api/search         caption search (q, type, sort, order, page, page_size)
  GET  /api/videos/:id     metadata for one video
  POST /api/videos/batch   metadata for multiple video ids

The listen address comes from server.addr in the config; --addr overrides it.
The server stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", `Listen address (overrides server.addr, e.g. ":8080")`)

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, addr string) error {
	// Server logs go to the rotating file and stderr unless --debug
	// already installed a logger.
	if !debugMode {
		if logger, cleanup, err := logging.Setup(logging.DefaultConfig()); err == nil {
			defer cleanup()
			slog.SetDefault(logger)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := captionsearch.Open(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	defer func() { _ = client.Close() }()

	srvCfg := server.FromConfig(cfg.Server)
	if addr != "" {
		srvCfg.Addr = addr
	}

	srv, err := server.New(client, client.Videos(), srvCfg, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	fmt.Fprintf(cmd.OutOrStdout(), "subseek listening on %s (backend: %s)\n", srvCfg.Addr, cfg.Backend)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return <-errCh
}
