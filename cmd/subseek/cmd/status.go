package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/logging"
	"github.com/subseek/subseek/internal/ui"
	"github.com/subseek/subseek/pkg/captionsearch"
)

// statusProbeTimeout bounds the backend count queries so an
// unreachable Elasticsearch cluster cannot hang the command.
const statusProbeTimeout = 5 * time.Second

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend health and index counts",
		Long: `Display information about the configured backend including:
  - Backend type and whether it is reachable
  - Number of indexed captions and stored videos
  - Storage paths and sizes (embedded backend)
  - Config and log file locations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	if !debugMode {
		logCfg := logging.DefaultConfig()
		logCfg.WriteToStderr = false
		if logger, cleanup, err := logging.Setup(logCfg); err == nil {
			defer cleanup()
			slog.SetDefault(logger)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	info := collectStatus(cmd.Context(), cfg)

	out := cmd.OutOrStdout()
	renderer := ui.NewStatusRenderer(out, ui.StylesFor(out))

	if jsonOutput {
		return renderer.RenderJSON(info)
	}
	return renderer.Render(info)
}

func collectStatus(ctx context.Context, cfg *config.Config) ui.StatusInfo {
	info := ui.StatusInfo{
		Backend: cfg.Backend,
		LogFile: logging.DefaultLogPath(),
	}

	if p := filepath.Join(resolveConfigDir(), ".subseek.yaml"); fileExists(p) {
		info.ConfigPath = p
	} else if config.UserConfigExists() {
		info.ConfigPath = config.GetUserConfigPath()
	}

	if cfg.Backend == config.BackendEmbedded {
		info.IndexPath = cfg.Embedded.IndexPath
		info.IndexSize = dirSize(cfg.Embedded.IndexPath) + fileSize(cfg.Embedded.SQLitePath)
	}

	ctx, cancel := context.WithTimeout(ctx, statusProbeTimeout)
	defer cancel()

	client, err := captionsearch.Open(cfg, slog.Default())
	if err != nil {
		slog.Warn("status_backend_unreachable", slog.String("error", err.Error()))
		info.BackendStatus = "offline"
		return info
	}
	defer func() { _ = client.Close() }()

	captions, err := client.CaptionCount(ctx)
	if err != nil {
		slog.Warn("status_caption_count_failed", slog.String("error", err.Error()))
		info.BackendStatus = "error"
		return info
	}

	videos, err := client.VideoCount(ctx)
	if err != nil {
		slog.Warn("status_video_count_failed", slog.String("error", err.Error()))
		info.BackendStatus = "error"
		return info
	}

	info.BackendStatus = "ready"
	info.CaptionCount = captions
	info.VideoCount = videos

	return info
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// dirSize sums the sizes of all regular files under path. Entries that
// cannot be read count as zero.
func dirSize(path string) int64 {
	var size int64

	_ = filepath.Walk(path, func(_ string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !fi.IsDir() {
			size += fi.Size()
		}
		return nil
	})

	return size
}
