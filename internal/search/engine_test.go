package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/store"
)

// fakeCaptionIndex implements store.CaptionIndex with pluggable behavior
// per method. Call counters are atomic; the engine invokes methods from
// worker goroutines.
type fakeCaptionIndex struct {
	aggregateFn func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error)
	matchingFn  func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error)
	betweenFn   func(ctx context.Context, videoID string, from, to float64) ([]store.Caption, error)

	aggregateCalls atomic.Int64
	matchingCalls  atomic.Int64
	betweenCalls   atomic.Int64
	closed         atomic.Bool
}

func (f *fakeCaptionIndex) AggregateVideos(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
	f.aggregateCalls.Add(1)
	if f.aggregateFn != nil {
		return f.aggregateFn(ctx, clause)
	}
	return &store.VideoAggregation{}, nil
}

func (f *fakeCaptionIndex) MatchingCaptions(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
	f.matchingCalls.Add(1)
	if f.matchingFn != nil {
		return f.matchingFn(ctx, clause, videoID, spec)
	}
	return nil, nil
}

func (f *fakeCaptionIndex) CaptionsBetween(ctx context.Context, videoID string, from, to float64) ([]store.Caption, error) {
	f.betweenCalls.Add(1)
	if f.betweenFn != nil {
		return f.betweenFn(ctx, videoID, from, to)
	}
	return nil, nil
}

func (f *fakeCaptionIndex) IndexCaptions(ctx context.Context, captions []store.Caption) error {
	return nil
}

func (f *fakeCaptionIndex) CaptionCount(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeCaptionIndex) Close() error {
	f.closed.Store(true)
	return nil
}

// fakeVideoStore implements store.VideoStore with pluggable behavior.
type fakeVideoStore struct {
	getFn func(ctx context.Context, ids []string) (map[string]store.VideoMeta, error)

	getCalls atomic.Int64
	closed   atomic.Bool
}

func (f *fakeVideoStore) GetVideos(ctx context.Context, ids []string) (map[string]store.VideoMeta, error) {
	f.getCalls.Add(1)
	if f.getFn != nil {
		return f.getFn(ctx, ids)
	}
	return map[string]store.VideoMeta{}, nil
}

func (f *fakeVideoStore) PutVideos(ctx context.Context, videos []store.VideoMeta) error { return nil }

func (f *fakeVideoStore) VideoCount(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeVideoStore) Close() error {
	f.closed.Store(true)
	return nil
}

func newTestEngine(t *testing.T, index store.CaptionIndex, videos store.VideoStore, opts ...EngineOption) *Engine {
	t.Helper()
	eng, err := NewEngine(index, videos, DefaultConfig(), opts...)
	require.NoError(t, err)
	return eng
}

// aggregationOf builds an aggregation where the given id order is the
// relevance order: scores descend with position, one caption per video.
func aggregationOf(ids ...string) *store.VideoAggregation {
	agg := &store.VideoAggregation{
		TotalVideos:   int64(len(ids)),
		TotalCaptions: int64(len(ids)),
	}
	for i, id := range ids {
		agg.Stats = append(agg.Stats, store.VideoStats{
			VideoID:    id,
			AvgScore:   float64(len(ids) - i),
			MaxScore:   float64(len(ids) - i),
			MatchCount: 1,
		})
	}
	return agg
}

func hitFor(videoID string, start float64, highlight string) store.CaptionHit {
	return store.CaptionHit{
		Caption: store.Caption{
			VideoID:   videoID,
			Text:      highlight,
			StartTime: start,
			EndTime:   start + 2,
		},
		Score:     1.0,
		Highlight: highlight,
	}
}

func TestNewEngine_NilDependencies(t *testing.T) {
	_, err := NewEngine(nil, &fakeVideoStore{}, DefaultConfig())
	require.ErrorIs(t, err, ErrNilDependency)

	_, err = NewEngine(&fakeCaptionIndex{}, nil, DefaultConfig())
	require.ErrorIs(t, err, ErrNilDependency)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	idx := &fakeCaptionIndex{}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	for _, query := range []string{"", "   ", "\t\n"} {
		resp, err := eng.Search(context.Background(), Request{Query: query})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeQueryEmpty, apperrors.GetCode(err))
		assert.Nil(t, resp)
	}
	assert.Zero(t, idx.aggregateCalls.Load(), "rejected queries must not reach the index")
}

func TestSearch_EmptyCorpus(t *testing.T) {
	// Given: an index with no matching captions
	idx := &fakeCaptionIndex{}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	// When: searching
	resp, err := eng.Search(context.Background(), Request{Query: "anything"})

	// Then: a well-formed empty page, no per-video fetches
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalVideos)
	assert.Zero(t, resp.TotalCaptions)
	assert.Zero(t, resp.TotalPages)
	assert.Zero(t, idx.matchingCalls.Load())
}

func TestSearch_AggregationFailureFailsRequest(t *testing.T) {
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return nil, errors.New("index unreachable")
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	resp, err := eng.Search(context.Background(), Request{Query: "hello"})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, apperrors.ErrCodeAggregationFailed, apperrors.GetCode(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestSearch_MetadataFailureFailsMetadataSorts(t *testing.T) {
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a", "vid-b"), nil
		},
	}
	videos := &fakeVideoStore{
		getFn: func(ctx context.Context, ids []string) (map[string]store.VideoMeta, error) {
			return nil, errors.New("database locked")
		},
	}
	eng := newTestEngine(t, idx, videos)

	_, err := eng.Search(context.Background(), Request{
		Query:   "hello",
		Options: Options{SortBy: SortByViews},
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMetadataFailed, apperrors.GetCode(err))
}

func TestSearch_RelevanceSortSkipsMetadata(t *testing.T) {
	// Given: a metadata store that would fail if consulted
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a"), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return []store.CaptionHit{hitFor(videoID, 1, "a <strong>hello</strong> b")}, nil
		},
	}
	videos := &fakeVideoStore{
		getFn: func(ctx context.Context, ids []string) (map[string]store.VideoMeta, error) {
			return nil, errors.New("database locked")
		},
	}
	eng := newTestEngine(t, idx, videos)

	// When: sorting by relevance
	resp, err := eng.Search(context.Background(), Request{Query: "hello"})

	// Then: metadata is never fetched and the search succeeds
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Zero(t, videos.getCalls.Load())
}

func TestSearch_PerVideoFailureDegrades(t *testing.T) {
	// Given: one of two ranked videos whose caption fetch fails
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a", "vid-b"), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			if videoID == "vid-b" {
				return nil, errors.New("shard offline")
			}
			return []store.CaptionHit{hitFor(videoID, 1, "say <strong>hello</strong> now")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	// When: searching
	resp, err := eng.Search(context.Background(), Request{Query: "hello"})

	// Then: the healthy video still returns; totals are untouched
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "vid-a", resp.Results[0].VideoID)
	assert.Equal(t, int64(2), resp.TotalVideos)
}

func TestSearch_NeighborFailureKeepsAnchor(t *testing.T) {
	// Given: a healthy caption fetch but a failing neighbor window
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a"), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return []store.CaptionHit{hitFor(videoID, 1, "<strong>hi</strong> there")}, nil
		},
		betweenFn: func(ctx context.Context, videoID string, from, to float64) ([]store.Caption, error) {
			return nil, errors.New("range scan failed")
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	// When: searching
	resp, err := eng.Search(context.Background(), Request{Query: "hi"})

	// Then: the result degrades to the anchor-only snippet
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "<strong>hi</strong> there", resp.Results[0].Snippet)
}

func TestSearch_PageParameterClamping(t *testing.T) {
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a"), nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	resp, err := eng.Search(context.Background(), Request{Query: "q", Page: -5, PageSize: 1000})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Page)
	assert.Equal(t, DefaultConfig().MaxPageSize, resp.PageSize)

	resp, err = eng.Search(context.Background(), Request{Query: "q"})

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().PageSize, resp.PageSize)
}

func TestSearch_PagePastTheEnd(t *testing.T) {
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a", "vid-b", "vid-c"), nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	resp, err := eng.Search(context.Background(), Request{Query: "q", Page: 9, PageSize: 2})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, int64(3), resp.TotalVideos)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Zero(t, idx.matchingCalls.Load(), "an empty page must not fetch captions")
}

func TestSearch_ResultsFollowRankThenHitOrder(t *testing.T) {
	// Given: two ranked videos, the first with two equal-video hits out
	// of score order
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-b", "vid-a"), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			if videoID == "vid-b" {
				weak := hitFor(videoID, 30, "<strong>q</strong> weak")
				weak.Score = 1.0
				strong := hitFor(videoID, 10, "<strong>q</strong> strong")
				strong.Score = 3.0
				return []store.CaptionHit{weak, strong}, nil
			}
			return []store.CaptionHit{hitFor(videoID, 5, "<strong>q</strong> other")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	// When: searching
	resp, err := eng.Search(context.Background(), Request{Query: "q"})

	// Then: video rank first, then per-video score order
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "vid-b", resp.Results[0].VideoID)
	assert.Equal(t, 10.0, resp.Results[0].StartTime)
	assert.Equal(t, "vid-b", resp.Results[1].VideoID)
	assert.Equal(t, 30.0, resp.Results[1].StartTime)
	assert.Equal(t, "vid-a", resp.Results[2].VideoID)
}

func TestSearch_SingleClauseServesAggregationAndFetch(t *testing.T) {
	var aggClause, matchClause store.Clause
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			aggClause = clause
			return aggregationOf("vid-a"), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			matchClause = clause
			return nil, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	_, err := eng.Search(context.Background(), Request{Query: "hello world"})

	require.NoError(t, err)
	assert.Same(t, aggClause, matchClause)
}

func TestSearch_SnippetBudgetApplies(t *testing.T) {
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf("vid-a"), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return []store.CaptionHit{hitFor(videoID, 1, "aaaa bbbb <strong>x</strong> cccc dddd")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{}, WithSnippetBudget(20))

	resp, err := eng.Search(context.Background(), Request{Query: "x"})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "…<strong>x</strong>…", resp.Results[0].Snippet)
}

func TestSearch_Deterministic(t *testing.T) {
	// Given: tied relevance scores the index returns in arbitrary order
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return &store.VideoAggregation{
				Stats: []store.VideoStats{
					{VideoID: "vid-3", AvgScore: 1.0, MatchCount: 1},
					{VideoID: "vid-1", AvgScore: 1.0, MatchCount: 1},
					{VideoID: "vid-2", AvgScore: 1.0, MatchCount: 1},
				},
				TotalVideos:   3,
				TotalCaptions: 3,
			}, nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return []store.CaptionHit{hitFor(videoID, 1, "<strong>q</strong> text")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})
	req := Request{Query: "q"}

	// When: running the identical request twice
	first, err := eng.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := eng.Search(context.Background(), req)
	require.NoError(t, err)

	// Then: byte-identical pages; ties resolve by video id
	require.Equal(t, first, second)
	assert.Equal(t, "vid-1", first.Results[0].VideoID)
}

func TestSearch_PaginationCoversAllVideos(t *testing.T) {
	ids := []string{"vid-1", "vid-2", "vid-3", "vid-4", "vid-5", "vid-6", "vid-7"}
	idx := &fakeCaptionIndex{
		aggregateFn: func(ctx context.Context, clause store.Clause) (*store.VideoAggregation, error) {
			return aggregationOf(ids...), nil
		},
		matchingFn: func(ctx context.Context, clause store.Clause, videoID string, spec store.HighlightSpec) ([]store.CaptionHit, error) {
			return []store.CaptionHit{hitFor(videoID, 1, "<strong>q</strong> t")}, nil
		},
	}
	eng := newTestEngine(t, idx, &fakeVideoStore{})

	seen := make(map[string]int)
	page := 0
	for {
		resp, err := eng.Search(context.Background(), Request{Query: "q", Page: page, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.TotalPages)
		for _, r := range resp.Results {
			seen[r.VideoID]++
		}
		page++
		if page >= resp.TotalPages {
			break
		}
	}

	require.Len(t, seen, len(ids))
	for id, count := range seen {
		assert.Equal(t, 1, count, "video %s must appear on exactly one page", id)
	}
}

func TestEngine_Close(t *testing.T) {
	idx := &fakeCaptionIndex{}
	videos := &fakeVideoStore{}
	eng := newTestEngine(t, idx, videos)

	require.NoError(t, eng.Close())

	assert.True(t, idx.closed.Load())
	assert.True(t, videos.closed.Load())
}

func TestSearch_EndToEnd(t *testing.T) {
	// Given: a real in-memory index and metadata store with two videos
	idx, err := store.NewBleveCaptionIndex("", 0)
	require.NoError(t, err)
	videos, err := store.NewSQLiteVideoStore("")
	require.NoError(t, err)

	eng, err := NewEngine(idx, videos, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	ctx := context.Background()
	require.NoError(t, idx.IndexCaptions(ctx, []store.Caption{
		{VideoID: "v1", Text: "hi", StartTime: 0, EndTime: 2},
		{VideoID: "v1", Text: "hello world", StartTime: 2, EndTime: 4},
		{VideoID: "v1", Text: "bye", StartTime: 4, EndTime: 6},
		{VideoID: "v2", Text: "helo world maybe", StartTime: 0, EndTime: 2},
	}))
	require.NoError(t, videos.PutVideos(ctx, []store.VideoMeta{
		{VideoID: "v1", Title: "First", UploadDate: 20240101, Duration: 60, Views: 10, Likes: 1},
		{VideoID: "v2", Title: "Second", UploadDate: 20240201, Duration: 30, Views: 90, Likes: 9},
	}))

	t.Run("natural mode matches the exact phrase only", func(t *testing.T) {
		resp, err := eng.Search(ctx, Request{Query: "hello world"})

		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.TotalVideos)
		assert.Equal(t, int64(1), resp.TotalCaptions)
		assert.Equal(t, 1, resp.TotalPages)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "v1", resp.Results[0].VideoID)
		assert.Equal(t, 2.0, resp.Results[0].StartTime)
		assert.Equal(t, "hi … <strong>hello world</strong> … bye", resp.Results[0].Snippet)
	})

	t.Run("wide mode recalls the typo video below the exact one", func(t *testing.T) {
		resp, err := eng.Search(ctx, Request{
			Query:   "hello world",
			Options: Options{Mode: ModeWide},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalVideos)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "v1", resp.Results[0].VideoID)
		assert.Equal(t, "v2", resp.Results[1].VideoID)
	})
}
