package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/logging"
	"github.com/subseek/subseek/internal/store"
	"github.com/subseek/subseek/pkg/captionsearch"
)

func newLoadCmd() *cobra.Command {
	var captionsPath string
	var videosPath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk-load captions and video metadata from JSONL files",
		Long: `Load caption and video records into the configured backend.

Each input file holds one JSON object per line:

  captions: {"video_id": "v1", "text": "hello world", "start_time": 2.0, "end_time": 4.0}
  videos:   {"video_id": "v1", "title": "First", "upload_date": 1700000000, "views": 1200}

Captions go to the caption index, videos to the metadata store. Loading
a caption with the same video id and start time overwrites the previous
record, so reruns are safe.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, captionsPath, videosPath)
		},
	}

	cmd.Flags().StringVar(&captionsPath, "captions", "", "Path to a captions JSONL file")
	cmd.Flags().StringVar(&videosPath, "videos", "", "Path to a video metadata JSONL file")

	return cmd
}

func runLoad(cmd *cobra.Command, captionsPath, videosPath string) error {
	if captionsPath == "" && videosPath == "" {
		return fmt.Errorf("nothing to load: pass --captions and/or --videos")
	}

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

	client, err := captionsearch.Open(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	defer func() { _ = client.Close() }()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if captionsPath != "" {
		captions, err := readCaptionsFile(captionsPath)
		if err != nil {
			return err
		}
		if len(captions) == 0 {
			fmt.Fprintf(out, "No captions found in %s\n", captionsPath)
		} else {
			if err := client.IndexCaptions(ctx, captions); err != nil {
				return fmt.Errorf("failed to index captions: %w", err)
			}
			slog.Info("captions_loaded", slog.Int("count", len(captions)), slog.String("file", captionsPath))
			fmt.Fprintf(out, "Indexed %d captions from %s\n", len(captions), captionsPath)
		}
	}

	if videosPath != "" {
		videos, err := readVideosFile(videosPath)
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			fmt.Fprintf(out, "No videos found in %s\n", videosPath)
		} else {
			if err := client.PutVideos(ctx, videos); err != nil {
				return fmt.Errorf("failed to store videos: %w", err)
			}
			slog.Info("videos_loaded", slog.Int("count", len(videos)), slog.String("file", videosPath))
			fmt.Fprintf(out, "Stored %d videos from %s\n", len(videos), videosPath)
		}
	}

	return nil
}

func readCaptionsFile(path string) ([]store.Caption, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open captions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return store.ReadCaptionsJSONL(f)
}

func readVideosFile(path string) ([]store.VideoMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open videos file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return store.ReadVideosJSONL(f)
}
