package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeWide, ParseMode("wide"))
	assert.Equal(t, ModeWide, ParseMode(" WIDE "))
	assert.Equal(t, ModeNatural, ParseMode("natural"))
	assert.Equal(t, ModeNatural, ParseMode(""))
	assert.Equal(t, ModeNatural, ParseMode("bogus"))
}

func TestParseSortBy(t *testing.T) {
	assert.Equal(t, SortByUploadDate, ParseSortBy("upload_date"))
	assert.Equal(t, SortByDuration, ParseSortBy("duration"))
	assert.Equal(t, SortByViews, ParseSortBy("views"))
	assert.Equal(t, SortByLikes, ParseSortBy("Likes"))
	assert.Equal(t, SortByCaptionMatches, ParseSortBy("caption_matches"))
	assert.Equal(t, SortByRelevance, ParseSortBy("relevance"))
	assert.Equal(t, SortByRelevance, ParseSortBy(""))
	assert.Equal(t, SortByRelevance, ParseSortBy("bogus"))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, OrderAsc, ParseSortOrder("asc"))
	assert.Equal(t, OrderAsc, ParseSortOrder("ASC"))
	assert.Equal(t, OrderDesc, ParseSortOrder("desc"))
	assert.Equal(t, OrderDesc, ParseSortOrder(""))
	assert.Equal(t, OrderDesc, ParseSortOrder("sideways"))
}

func TestSortByNeedsMetadata(t *testing.T) {
	assert.True(t, SortByUploadDate.needsMetadata())
	assert.True(t, SortByDuration.needsMetadata())
	assert.True(t, SortByViews.needsMetadata())
	assert.True(t, SortByLikes.needsMetadata())
	assert.False(t, SortByRelevance.needsMetadata())
	assert.False(t, SortByCaptionMatches.needsMetadata(), "match counts ride on the aggregation")
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, ModeNatural, opts.Mode)
	assert.Equal(t, SortByRelevance, opts.SortBy)
	assert.Equal(t, OrderDesc, opts.SortOrder)
	assert.Empty(t, opts.FuzzyDistance, "fuzziness resolves at planning time")
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()

	assert.Equal(t, def.PageSize, cfg.PageSize)
	assert.Equal(t, def.MaxPageSize, cfg.MaxPageSize)
	assert.Equal(t, def.SnippetBudget, cfg.SnippetBudget)
	assert.Equal(t, def.PreTag, cfg.PreTag)
	assert.Equal(t, def.Fuzziness, cfg.Fuzziness)
	assert.Equal(t, def.Concurrency, cfg.Concurrency)
	assert.Zero(t, cfg.NeighborsBefore, "zero neighbors is a valid setting")
	assert.Zero(t, cfg.NeighborsAfter)
}

func TestConfigNormalize_Clamps(t *testing.T) {
	cfg := Config{
		PageSize:        50,
		MaxPageSize:     5,
		NeighborsBefore: -3,
		NeighborsAfter:  -1,
	}.normalize()

	assert.Equal(t, 50, cfg.MaxPageSize, "max page size never undercuts the default")
	assert.Zero(t, cfg.NeighborsBefore)
	assert.Zero(t, cfg.NeighborsAfter)
}

func TestEngineOptions(t *testing.T) {
	eng := newTestEngine(t, &fakeCaptionIndex{}, &fakeVideoStore{},
		WithPageSizes(5, 50),
		WithNeighbors(0, 3),
		WithSnippetBudget(120),
		WithConcurrency(4),
	)

	assert.Equal(t, 5, eng.cfg.PageSize)
	assert.Equal(t, 50, eng.cfg.MaxPageSize)
	assert.Equal(t, 0, eng.cfg.NeighborsBefore)
	assert.Equal(t, 3, eng.cfg.NeighborsAfter)
	assert.Equal(t, 120, eng.cfg.SnippetBudget)
	assert.Equal(t, 4, eng.cfg.Concurrency)
}

func TestEngineOptions_IgnoreInvalid(t *testing.T) {
	eng := newTestEngine(t, &fakeCaptionIndex{}, &fakeVideoStore{},
		WithSnippetBudget(0),
		WithConcurrency(-1),
		WithHighlightTags("", "</em>"),
		WithNeighbors(-1, -1),
	)

	def := DefaultConfig()
	assert.Equal(t, def.SnippetBudget, eng.cfg.SnippetBudget)
	assert.Equal(t, def.Concurrency, eng.cfg.Concurrency)
	assert.Equal(t, def.PreTag, eng.cfg.PreTag)
	assert.Equal(t, def.NeighborsBefore, eng.cfg.NeighborsBefore)
	assert.Equal(t, def.NeighborsAfter, eng.cfg.NeighborsAfter)
}
