package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/logging"
	"github.com/subseek/subseek/internal/search"
	"github.com/subseek/subseek/internal/ui"
	"github.com/subseek/subseek/pkg/captionsearch"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	wide       bool
	fuzziness  string
	sortBy     string
	order      string
	page       int
	pageSize   int
	jsonOutput bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search captions from the terminal",
		Long: `Run a one-shot caption search against the configured backend.

Results are grouped by video and printed with highlighted snippets.

Examples:
  subseek search "hello world"
  subseek search "hola mundo" --wide --fuzziness 2
  subseek search "tutorial" --sort views --order desc --page 1
  subseek search "chorus" --json`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runCLISearch(cmd, query, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.wide, "wide", false, "Match words independently with fuzziness instead of as a phrase")
	cmd.Flags().StringVar(&opts.fuzziness, "fuzziness", "", `Wide-mode edit distance: "0", "1", "2" or "AUTO"`)
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "Sort videos by: relevance, upload_date, duration, views, likes, caption_matches")
	cmd.Flags().StringVar(&opts.order, "order", "", "Sort order: asc or desc (default depends on the sort field)")
	cmd.Flags().IntVar(&opts.page, "page", 0, "Zero-based page of videos")
	cmd.Flags().IntVarP(&opts.pageSize, "page-size", "n", 0, "Videos per page (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the raw response as JSON")

	return cmd
}

func runCLISearch(cmd *cobra.Command, query string, opts searchOptions) error {
	// One-shot invocations log to file only so terminal output stays clean.
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

	mode := search.ModeNatural
	if opts.wide {
		mode = search.ModeWide
	}

	req := captionsearch.Request{
		Query: query,
		Options: captionsearch.Options{
			Mode:          mode,
			FuzzyDistance: opts.fuzziness,
			SortBy:        search.ParseSortBy(opts.sortBy),
			SortOrder:     search.ParseSortOrder(opts.order),
		},
		Page:     opts.page,
		PageSize: opts.pageSize,
	}

	slog.Info("search_started", slog.String("query", query), slog.String("mode", string(mode)))

	resp, err := client.Search(cmd.Context(), req)
	if err != nil {
		slog.Error("search_failed", slog.String("query", query), slog.String("error", err.Error()))
		cmd.SilenceErrors = true
		fmt.Fprint(cmd.ErrOrStderr(), apperrors.FormatForCLI(err))
		return err
	}

	slog.Info("search_complete",
		slog.Int("results", len(resp.Results)),
		slog.Int64("total_videos", resp.TotalVideos))

	out := cmd.OutOrStdout()
	renderer := ui.NewSearchRenderer(out, ui.StylesFor(out), cfg.Search.PreTag, cfg.Search.PostTag)

	if opts.jsonOutput {
		return renderer.RenderJSON(resp)
	}
	return renderer.Render(query, resp)
}
