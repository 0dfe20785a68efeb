package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/store"
)

// Engine runs the caption search pipeline: plan, rank, fetch, assemble.
// Safe for concurrent use; all per-request state is local to Search.
type Engine struct {
	index  store.CaptionIndex
	videos store.VideoStore
	cfg    Config
	log    *slog.Logger
}

// Ensure Engine implements the Searcher interface.
var _ Searcher = (*Engine)(nil)

// ErrNilDependency is returned when a required collaborator is nil.
var ErrNilDependency = errors.New("nil dependency")

// NewEngine creates a search engine over the given collaborators.
func NewEngine(index store.CaptionIndex, videos store.VideoStore, cfg Config, opts ...EngineOption) (*Engine, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: caption index is required", ErrNilDependency)
	}
	if videos == nil {
		return nil, fmt.Errorf("%w: video store is required", ErrNilDependency)
	}

	e := &Engine{
		index:  index,
		videos: videos,
		cfg:    cfg.normalize(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search executes one retrieval pipeline run: plan the clause, rank and
// paginate videos, fetch per-video highlighted captions, assemble
// neighbor context, and stitch/truncate snippets. Callers get either a
// fully-formed Response or a single request-level error, never a partial
// in-between.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperrors.QueryEmptyError()
	}

	opts := req.Options.withDefaults()
	page := req.Page
	if page < 0 {
		page = 0
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = e.cfg.PageSize
	}
	if pageSize > e.cfg.MaxPageSize {
		pageSize = e.cfg.MaxPageSize
	}

	// One clause serves both the aggregation and the per-video fetches,
	// so ranking and highlighting stay consistent.
	clause := buildClause(query, &opts, e.cfg)

	ids, agg, err := e.rankVideos(ctx, clause, &opts, page, pageSize)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Results:       []Result{},
		TotalVideos:   agg.TotalVideos,
		TotalCaptions: agg.TotalCaptions,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages(agg.TotalVideos, pageSize),
	}
	if len(ids) == 0 {
		return resp, nil
	}

	perVideo, err := e.fetchPage(ctx, clause, ids)
	if err != nil {
		return nil, err
	}

	results, err := e.assembleResults(ctx, perVideo)
	if err != nil {
		return nil, err
	}
	resp.Results = results

	e.log.Debug("search_completed",
		"query", query,
		"mode", string(opts.Mode),
		"sort_by", string(opts.SortBy),
		"page", page,
		"videos", len(ids),
		"results", len(results),
		"elapsed", time.Since(start))

	return resp, nil
}

// assembleResults turns per-video hits into final snippets, preserving
// video rank order and then per-video hit order. Neighbor assembly and
// truncation are independent per item and run in parallel.
func (e *Engine) assembleResults(ctx context.Context, perVideo [][]store.CaptionHit) ([]Result, error) {
	var flat []store.CaptionHit
	for _, hits := range perVideo {
		flat = append(flat, hits...)
	}
	if len(flat) == 0 {
		return []Result{}, nil
	}

	results := make([]Result, len(flat))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, hit := range flat {
		g.Go(func() error {
			result, err := e.assembleResult(gctx, hit)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// assembleResult builds one snippet: neighbors around the anchor, stitch,
// truncate. A failed neighbor fetch degrades to the un-stitched anchor
// text; only cancellation propagates.
func (e *Engine) assembleResult(ctx context.Context, hit store.CaptionHit) (Result, error) {
	prev, next, err := e.fetchNeighbors(ctx, hit.VideoID, hit.StartTime, hit.EndTime, e.cfg.NeighborsBefore, e.cfg.NeighborsAfter)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		serr := apperrors.SearchError(hit.VideoID, err)
		e.log.Warn("neighbor_fetch_failed",
			"video_id", hit.VideoID,
			"start_time", hit.StartTime,
			"error", serr.Error())
		prev, next = nil, nil
	}

	snippet := stitch(joinCaptions(prev), hit.Highlight, joinCaptions(next))
	snippet = truncateAroundHighlight(snippet, e.cfg.SnippetBudget, e.cfg.PreTag, e.cfg.PostTag)

	return Result{
		VideoID:   hit.VideoID,
		StartTime: hit.StartTime,
		EndTime:   hit.EndTime,
		Snippet:   snippet,
	}, nil
}

// Close releases the store collaborators.
func (e *Engine) Close() error {
	var errs []error
	if err := e.index.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.videos.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
