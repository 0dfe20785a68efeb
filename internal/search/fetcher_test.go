package search

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subseek/subseek/internal/store"
)

func TestSortHits_ScoreThenStartTime(t *testing.T) {
	hits := []store.CaptionHit{
		{Caption: store.Caption{StartTime: 50}, Score: 1.0},
		{Caption: store.Caption{StartTime: 40}, Score: 3.0},
		{Caption: store.Caption{StartTime: 10}, Score: 3.0},
		{Caption: store.Caption{StartTime: 20}, Score: 2.0},
	}

	sortHits(hits)

	starts := make([]float64, len(hits))
	for i, h := range hits {
		starts[i] = h.StartTime
	}
	assert.Equal(t, []float64{10, 40, 20, 50}, starts)
}

func TestFetchMatchingCaptions_RawTextFallback(t *testing.T) {
	// Given: a hit the index could not produce a fragment for
	idx := &fakeCaptionIndex{
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return []store.CaptionHit{
				{Caption: store.Caption{VideoID: videoID, Text: "plain words", StartTime: 1}, Score: 1.0},
			}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	// When: fetching
	hits, err := eng.fetchMatchingCaptions(context.Background(), naturalClause("plain"), "vid-a")

	// Then: the raw caption text stands in for the fragment
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "plain words", hits[0].Highlight)
}

func TestFetchMatchingCaptions_HighlightSpec(t *testing.T) {
	// Given: an engine with overridden highlight markers
	var got store.HighlightSpec
	idx := &fakeCaptionIndex{
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			got = spec
			return nil, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{}, WithHighlightTags("<em>", "</em>"))

	// When: fetching
	_, err := eng.fetchMatchingCaptions(context.Background(), naturalClause("q"), "vid-a")

	// Then: the highlight spec carries the configured markers and sizes
	require.NoError(t, err)
	assert.Equal(t, "<em>", got.PreTag)
	assert.Equal(t, "</em>", got.PostTag)
	assert.Equal(t, DefaultConfig().FragmentSize, got.FragmentSize)
	assert.Equal(t, DefaultConfig().NoMatchSize, got.NoMatchSize)
	assert.Equal(t, 1, got.NumFragments)
}

func TestFetchPage_PreservesRankOrder(t *testing.T) {
	// Given: per-video fetches that complete in arbitrary order
	idx := &fakeCaptionIndex{
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			if videoID == "vid-3" {
				time.Sleep(5 * time.Millisecond)
			}
			return []store.CaptionHit{hitFor(videoID, 1, "x")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	// When: fetching a ranked page
	perVideo, err := eng.fetchPage(context.Background(), naturalClause("q"), []string{"vid-3", "vid-1", "vid-2"})

	// Then: slots follow rank order, not completion order
	require.NoError(t, err)
	require.Len(t, perVideo, 3)
	assert.Equal(t, "vid-3", perVideo[0][0].VideoID)
	assert.Equal(t, "vid-1", perVideo[1][0].VideoID)
	assert.Equal(t, "vid-2", perVideo[2][0].VideoID)
}

func TestFetchPage_DegradesFailedVideo(t *testing.T) {
	idx := &fakeCaptionIndex{
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			if videoID == "vid-2" {
				return nil, assert.AnError
			}
			return []store.CaptionHit{hitFor(videoID, 1, "x")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	perVideo, err := eng.fetchPage(context.Background(), naturalClause("q"), []string{"vid-1", "vid-2", "vid-3"})

	require.NoError(t, err)
	require.Len(t, perVideo, 3)
	assert.NotEmpty(t, perVideo[0])
	assert.Empty(t, perVideo[1], "failed video degrades to an empty slot")
	assert.NotEmpty(t, perVideo[2])
}

func TestFetchPage_CancellationAborts(t *testing.T) {
	idx := &fakeCaptionIndex{
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return nil, ctx.Err()
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.fetchPage(ctx, naturalClause("q"), []string{"vid-1", "vid-2"})

	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchPage_HonorsConcurrencyBound(t *testing.T) {
	var inflight, maxSeen atomic.Int64
	idx := &fakeCaptionIndex{
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			cur := inflight.Add(1)
			defer inflight.Add(-1)
			for {
				m := maxSeen.Load()
				if cur <= m || maxSeen.CompareAndSwap(m, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			return nil, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{}, WithConcurrency(2))

	ids := []string{"vid-1", "vid-2", "vid-3", "vid-4", "vid-5", "vid-6", "vid-7", "vid-8"}
	_, err := eng.fetchPage(context.Background(), naturalClause("q"), ids)

	require.NoError(t, err)
	assert.Equal(t, int64(len(ids)), idx.matchingCalls.Load())
	assert.LessOrEqual(t, maxSeen.Load(), int64(2))
}
