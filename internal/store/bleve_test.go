package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/subseek/subseek/internal/errors"
)

func newMemIndex(t *testing.T) *BleveCaptionIndex {
	t.Helper()
	idx, err := NewBleveCaptionIndex("", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func seedCaptions(t *testing.T, idx CaptionIndex) {
	t.Helper()
	captions := []Caption{
		{VideoID: "vid-a", Text: "welcome back to the channel", StartTime: 0, EndTime: 4.5},
		{VideoID: "vid-a", Text: "today we talk about neural networks", StartTime: 4.5, EndTime: 9},
		{VideoID: "vid-a", Text: "neural networks learn from data", StartTime: 9, EndTime: 14},
		{VideoID: "vid-b", Text: "training neural networks takes patience", StartTime: 2, EndTime: 6},
		{VideoID: "vid-c", Text: "completely unrelated cooking segment", StartTime: 0, EndTime: 5},
	}
	require.NoError(t, idx.IndexCaptions(context.Background(), captions))
}

// Grouping matched captions by video with exact totals
func TestBleveCaptionIndex_AggregateVideos(t *testing.T) {
	// Given: captions across three videos
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	// When: aggregating matches for "neural networks"
	clause := &MatchClause{
		Fields:   []string{FieldText},
		Query:    "neural networks",
		Operator: OperatorAnd,
	}
	agg, err := idx.AggregateVideos(context.Background(), clause)
	require.NoError(t, err)

	// Then: two videos match, three captions in total
	assert.Equal(t, int64(2), agg.TotalVideos)
	assert.Equal(t, int64(3), agg.TotalCaptions)
	require.Len(t, agg.Stats, 2)

	// And: stats are sorted by video id with per-video counts
	assert.Equal(t, "vid-a", agg.Stats[0].VideoID)
	assert.Equal(t, int64(2), agg.Stats[0].MatchCount)
	assert.Equal(t, "vid-b", agg.Stats[1].VideoID)
	assert.Equal(t, int64(1), agg.Stats[1].MatchCount)

	// And: scores are populated
	for _, s := range agg.Stats {
		assert.Greater(t, s.AvgScore, 0.0)
		assert.GreaterOrEqual(t, s.MaxScore, s.AvgScore)
	}
}

// Totals stay exact when the bucket list is capped
func TestBleveCaptionIndex_AggregateVideos_CapKeepsTotalsExact(t *testing.T) {
	// Given: an index capped at one aggregation bucket
	idx, err := NewBleveCaptionIndex("", 1)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()
	seedCaptions(t, idx)

	// When: aggregating matches spanning two videos
	clause := &MatchClause{
		Fields:   []string{FieldText},
		Query:    "neural networks",
		Operator: OperatorAnd,
	}
	agg, err := idx.AggregateVideos(context.Background(), clause)
	require.NoError(t, err)

	// Then: only one bucket survives but totals cover everything
	assert.Len(t, agg.Stats, 1)
	assert.Equal(t, int64(2), agg.TotalVideos)
	assert.Equal(t, int64(3), agg.TotalCaptions)
}

// No matches yields an empty, well-formed aggregation
func TestBleveCaptionIndex_AggregateVideos_NoMatches(t *testing.T) {
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	clause := &MatchClause{
		Fields:   []string{FieldText},
		Query:    "quantum chromodynamics",
		Operator: OperatorAnd,
	}
	agg, err := idx.AggregateVideos(context.Background(), clause)
	require.NoError(t, err)

	assert.Empty(t, agg.Stats)
	assert.Equal(t, int64(0), agg.TotalVideos)
	assert.Equal(t, int64(0), agg.TotalCaptions)
}

// Per-video caption search with highlight fragments
func TestBleveCaptionIndex_MatchingCaptions_Highlights(t *testing.T) {
	// Given: seeded captions
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	// When: fetching matches for one video with custom markers
	clause := &PhraseClause{Fields: []string{FieldText}, Phrase: "neural networks"}
	spec := HighlightSpec{PreTag: "<em>", PostTag: "</em>"}
	hits, err := idx.MatchingCaptions(context.Background(), clause, "vid-a", spec)
	require.NoError(t, err)

	// Then: only vid-a captions come back, both matches present
	require.Len(t, hits, 2)
	starts := map[float64]bool{}
	for _, h := range hits {
		assert.Equal(t, "vid-a", h.VideoID)
		assert.Greater(t, h.Score, 0.0)
		assert.Contains(t, h.Highlight, "<em>neural networks</em>")
		assert.NotEmpty(t, h.Text)
		starts[h.StartTime] = true
	}
	assert.True(t, starts[4.5])
	assert.True(t, starts[9])
}

// The video filter excludes matches from other videos
func TestBleveCaptionIndex_MatchingCaptions_FiltersByVideo(t *testing.T) {
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	clause := &MatchClause{
		Fields:   []string{FieldText},
		Query:    "neural",
		Operator: OperatorAnd,
	}
	hits, err := idx.MatchingCaptions(context.Background(), clause, "vid-b", HighlightSpec{PreTag: "<b>", PostTag: "</b>"})
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "vid-b", hits[0].VideoID)
	assert.Equal(t, 2.0, hits[0].StartTime)
}

// Stemmed field matches morphological variants the raw field misses
func TestBleveCaptionIndex_StemmedFieldMatchesVariants(t *testing.T) {
	// Given: a caption with "training" in it
	idx := newMemIndex(t)
	seedCaptions(t, idx)
	spec := HighlightSpec{PreTag: "<em>", PostTag: "</em>"}

	// When: phrase "train" runs against the raw text field
	raw := &PhraseClause{Fields: []string{FieldText}, Phrase: "train"}
	hits, err := idx.MatchingCaptions(context.Background(), raw, "vid-b", spec)
	require.NoError(t, err)

	// Then: no match, the raw field keeps "training" intact
	assert.Empty(t, hits)

	// When: the same phrase runs against the stemmed field
	stemmed := &PhraseClause{Fields: []string{FieldTextStemmed}, Phrase: "train"}
	hits, err = idx.MatchingCaptions(context.Background(), stemmed, "vid-b", spec)
	require.NoError(t, err)

	// Then: "training" stems to "train" and matches
	require.Len(t, hits, 1)
	assert.Equal(t, "training neural networks takes patience", hits[0].Text)
}

// Fuzzy matching tolerates typos with AUTO distance
func TestBleveCaptionIndex_FuzzyMatchesTypo(t *testing.T) {
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	clause := &MatchClause{
		Fields:    []string{FieldText},
		Query:     "nueral",
		Operator:  OperatorOr,
		Fuzziness: "AUTO",
	}
	agg, err := idx.AggregateVideos(context.Background(), clause)
	require.NoError(t, err)

	assert.Equal(t, int64(2), agg.TotalVideos)
}

// Boolean should-clauses with a minimum match floor
func TestBleveCaptionIndex_BoolClauseShould(t *testing.T) {
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	clause := &BoolClause{
		Should: []Clause{
			&PhraseClause{Fields: []string{FieldText}, Phrase: "neural networks", Boost: 10},
			&MatchClause{Fields: []string{FieldText}, Query: "cooking", Operator: OperatorAnd, Boost: 1},
		},
		MinimumShouldMatch: "1",
	}
	agg, err := idx.AggregateVideos(context.Background(), clause)
	require.NoError(t, err)

	// vid-a and vid-b match the phrase, vid-c matches "cooking"
	assert.Equal(t, int64(3), agg.TotalVideos)
}

// Temporal window fetch, inclusive bounds, ascending order
func TestBleveCaptionIndex_CaptionsBetween(t *testing.T) {
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	captions, err := idx.CaptionsBetween(context.Background(), "vid-a", 4.5, 9)
	require.NoError(t, err)

	require.Len(t, captions, 2)
	assert.Equal(t, 4.5, captions[0].StartTime)
	assert.Equal(t, 9.0, captions[1].StartTime)
	assert.Equal(t, "today we talk about neural networks", captions[0].Text)
}

func TestBleveCaptionIndex_CaptionsBetween_EmptyWindow(t *testing.T) {
	idx := newMemIndex(t)
	seedCaptions(t, idx)

	captions, err := idx.CaptionsBetween(context.Background(), "vid-a", 100, 200)
	require.NoError(t, err)
	assert.Empty(t, captions)
}

func TestBleveCaptionIndex_CaptionCount(t *testing.T) {
	idx := newMemIndex(t)

	count, err := idx.CaptionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	seedCaptions(t, idx)

	count, err = idx.CaptionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}

func TestBleveCaptionIndex_IndexCaptions_Empty(t *testing.T) {
	idx := newMemIndex(t)
	require.NoError(t, idx.IndexCaptions(context.Background(), nil))
	require.NoError(t, idx.IndexCaptions(context.Background(), []Caption{}))
}

// Re-indexing the same caption id replaces, not duplicates
func TestBleveCaptionIndex_IndexCaptions_Idempotent(t *testing.T) {
	idx := newMemIndex(t)
	caption := []Caption{{VideoID: "vid-a", Text: "hello there", StartTime: 1.5, EndTime: 3}}

	require.NoError(t, idx.IndexCaptions(context.Background(), caption))
	require.NoError(t, idx.IndexCaptions(context.Background(), caption))

	count, err := idx.CaptionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestBleveCaptionIndex_Close_Idempotent(t *testing.T) {
	idx, err := NewBleveCaptionIndex("", 0)
	require.NoError(t, err)

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())
}

func TestBleveCaptionIndex_OperationsAfterClose(t *testing.T) {
	idx, err := NewBleveCaptionIndex("", 0)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = idx.AggregateVideos(context.Background(), &TermClause{Field: FieldVideoID, Value: "x"})
	assert.Error(t, err)

	_, err = idx.CaptionsBetween(context.Background(), "x", 0, 1)
	assert.Error(t, err)

	err = idx.IndexCaptions(context.Background(), []Caption{{VideoID: "x", Text: "y"}})
	assert.Error(t, err)
}

// A second process (or handle) cannot open the same index directory
func TestBleveCaptionIndex_LockedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.bleve")

	first, err := NewBleveCaptionIndex(path, 0)
	require.NoError(t, err)

	_, err = NewBleveCaptionIndex(path, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIndexLocked, apperrors.GetCode(err))

	// Releasing the first handle frees the lock
	require.NoError(t, first.Close())
	third, err := NewBleveCaptionIndex(path, 0)
	require.NoError(t, err)
	require.NoError(t, third.Close())
}

// Persistence across open/close on disk
func TestBleveCaptionIndex_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.bleve")

	idx, err := NewBleveCaptionIndex(path, 0)
	require.NoError(t, err)
	seedCaptions(t, idx)
	require.NoError(t, idx.Close())

	reopened, err := NewBleveCaptionIndex(path, 0)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.CaptionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}

// Corrupted meta file is detected, cleared, and the index recreated
func TestBleveCaptionIndex_CorruptedMetaRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.bleve")

	idx, err := NewBleveCaptionIndex(path, 0)
	require.NoError(t, err)
	seedCaptions(t, idx)
	require.NoError(t, idx.Close())

	// Corrupt the meta file
	metaPath := filepath.Join(path, "index_meta.json")
	require.NoError(t, os.WriteFile(metaPath, []byte("{not json"), 0644))

	// Reopen: corruption is cleared and a fresh index created
	reopened, err := NewBleveCaptionIndex(path, 0)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.CaptionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestValidateIndexIntegrity(t *testing.T) {
	t.Run("missing index is fine", func(t *testing.T) {
		assert.NoError(t, validateIndexIntegrity(filepath.Join(t.TempDir(), "nope")))
	})

	t.Run("missing meta file", func(t *testing.T) {
		dir := t.TempDir()
		assert.Error(t, validateIndexIntegrity(dir))
	})

	t.Run("empty meta file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index_meta.json"), nil, 0644))
		assert.Error(t, validateIndexIntegrity(dir))
	})

	t.Run("unparseable meta file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index_meta.json"), []byte("oops"), 0644))
		assert.Error(t, validateIndexIntegrity(dir))
	})

	t.Run("valid meta file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index_meta.json"), []byte(`{"storage":"scorch"}`), 0644))
		assert.NoError(t, validateIndexIntegrity(dir))
	})
}

func TestRetagFragment(t *testing.T) {
	spec := HighlightSpec{PreTag: "<strong>", PostTag: "</strong>"}

	t.Run("single term", func(t *testing.T) {
		got := retagFragment("say <mark>hello</mark> twice", spec)
		assert.Equal(t, "say <strong>hello</strong> twice", got)
	})

	t.Run("adjacent terms merge into one span", func(t *testing.T) {
		got := retagFragment("a <mark>neural</mark> <mark>networks</mark> primer", spec)
		assert.Equal(t, "a <strong>neural networks</strong> primer", got)
	})

	t.Run("separate terms keep separate spans", func(t *testing.T) {
		got := retagFragment("<mark>cats</mark> and <mark>dogs</mark>", spec)
		assert.Equal(t, "<strong>cats</strong> and <strong>dogs</strong>", got)
	})
}

func TestMinShouldCount(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		clauses int
		want    int
	}{
		{"empty spec", "", 4, 0},
		{"no clauses", "75%", 0, 0},
		{"75 percent of 4", "75%", 4, 3},
		{"75 percent of 3 floors", "75%", 3, 2},
		{"50 percent of 2", "50%", 2, 1},
		{"percentage floors to at least one", "10%", 3, 1},
		{"absolute count", "2", 5, 2},
		{"absolute count capped", "10", 3, 3},
		{"zero percent", "0%", 4, 0},
		{"garbage", "abc", 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, minShouldCount(tt.spec, tt.clauses))
		})
	}
}
