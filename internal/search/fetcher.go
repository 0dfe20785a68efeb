package search

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/store"
)

// fetchPage retrieves the matching captions of every ranked video in
// parallel, preserving rank positions. A failed video degrades to an
// empty slot so the rest of the page still returns; cancellation aborts
// the whole page.
func (e *Engine) fetchPage(ctx context.Context, clause store.Clause, videoIDs []string) ([][]store.CaptionHit, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	perVideo := make([][]store.CaptionHit, len(videoIDs))
	for i, videoID := range videoIDs {
		g.Go(func() error {
			hits, err := e.fetchMatchingCaptions(gctx, clause, videoID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				serr := apperrors.SearchError(videoID, err)
				e.log.Warn("video_fetch_failed",
					"video_id", videoID,
					"error", serr.Error())
				return nil
			}
			perVideo[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return perVideo, nil
}

// fetchMatchingCaptions re-applies the planner's clause filtered to one
// video and returns its hits with highlight fragments, ordered by score
// descending then start time ascending. Hits without a fragment fall back
// to the raw caption text.
func (e *Engine) fetchMatchingCaptions(ctx context.Context, clause store.Clause, videoID string) ([]store.CaptionHit, error) {
	spec := store.HighlightSpec{
		PreTag:       e.cfg.PreTag,
		PostTag:      e.cfg.PostTag,
		FragmentSize: e.cfg.FragmentSize,
		NoMatchSize:  e.cfg.NoMatchSize,
		NumFragments: 1,
	}

	hits, err := e.index.MatchingCaptions(ctx, clause, videoID, spec)
	if err != nil {
		return nil, err
	}

	for i := range hits {
		if hits[i].Highlight == "" {
			hits[i].Highlight = hits[i].Text
		}
	}
	sortHits(hits)
	return hits, nil
}

// sortHits orders one video's hits by score descending, then start time
// ascending so equal-score hits read chronologically.
func sortHits(hits []store.CaptionHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].StartTime < hits[j].StartTime
	})
}
