package search

import "log/slog"

// Config tunes the search pipeline. Zero values fall back to the defaults
// below, except the neighbor counts: zero neighbors is meaningful (no
// context on that side) and is kept as given.
type Config struct {
	// PageSize is the default number of videos per page; MaxPageSize caps
	// client-requested page sizes.
	PageSize    int
	MaxPageSize int

	// SnippetBudget is the maximum snippet length in runes.
	SnippetBudget int

	// PreTag and PostTag wrap the highlighted span in snippets.
	PreTag  string
	PostTag string

	// NeighborsBefore and NeighborsAfter are the number of adjacent
	// captions stitched around each anchor.
	NeighborsBefore int
	NeighborsAfter  int

	// Slop is the word-gap tolerance of the wide mode's sloppy phrase
	// clause.
	Slop int

	// Fuzziness is the default edit distance ("AUTO", "0", "1", "2")
	// when a request does not set one.
	Fuzziness string

	// MinShouldMatch is the term floor of the wide mode's any-terms
	// clause (e.g. "75%").
	MinShouldMatch string

	// Concurrency bounds parallel per-video and per-result work.
	Concurrency int

	// FragmentSize is the highlighter fragment length; NoMatchSize is the
	// fallback excerpt length for hits without a highlightable span.
	FragmentSize int
	NoMatchSize  int
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:        10,
		MaxPageSize:     100,
		SnippetBudget:   800,
		PreTag:          "<strong>",
		PostTag:         "</strong>",
		NeighborsBefore: 2,
		NeighborsAfter:  2,
		Slop:            2,
		Fuzziness:       "AUTO",
		MinShouldMatch:  "75%",
		Concurrency:     8,
		FragmentSize:    350,
		NoMatchSize:     150,
	}
}

// normalize fills unset fields with defaults. Negative neighbor counts
// clamp to zero; explicit zeros survive.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.MaxPageSize < c.PageSize {
		c.MaxPageSize = c.PageSize
	}
	if c.SnippetBudget <= 0 {
		c.SnippetBudget = d.SnippetBudget
	}
	if c.PreTag == "" {
		c.PreTag = d.PreTag
	}
	if c.PostTag == "" {
		c.PostTag = d.PostTag
	}
	if c.NeighborsBefore < 0 {
		c.NeighborsBefore = 0
	}
	if c.NeighborsAfter < 0 {
		c.NeighborsAfter = 0
	}
	if c.Slop < 0 {
		c.Slop = d.Slop
	}
	if c.Fuzziness == "" {
		c.Fuzziness = d.Fuzziness
	}
	if c.MinShouldMatch == "" {
		c.MinShouldMatch = d.MinShouldMatch
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.FragmentSize <= 0 {
		c.FragmentSize = d.FragmentSize
	}
	if c.NoMatchSize < 0 {
		c.NoMatchSize = d.NoMatchSize
	}
	return c
}

// EngineOption configures the search engine beyond its Config.
type EngineOption func(*Engine)

// WithLogger routes pipeline logs through log.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithPageSizes overrides the default and maximum page sizes.
func WithPageSizes(pageSize, maxPageSize int) EngineOption {
	return func(e *Engine) {
		if pageSize > 0 {
			e.cfg.PageSize = pageSize
		}
		if maxPageSize >= e.cfg.PageSize {
			e.cfg.MaxPageSize = maxPageSize
		}
	}
}

// WithHighlightTags overrides the highlight marker pair.
func WithHighlightTags(preTag, postTag string) EngineOption {
	return func(e *Engine) {
		if preTag != "" && postTag != "" {
			e.cfg.PreTag = preTag
			e.cfg.PostTag = postTag
		}
	}
}

// WithSnippetBudget overrides the maximum snippet length in runes.
func WithSnippetBudget(budget int) EngineOption {
	return func(e *Engine) {
		if budget > 0 {
			e.cfg.SnippetBudget = budget
		}
	}
}

// WithNeighbors overrides how many adjacent captions are stitched before
// and after each anchor. Zero disables that side.
func WithNeighbors(before, after int) EngineOption {
	return func(e *Engine) {
		if before >= 0 {
			e.cfg.NeighborsBefore = before
		}
		if after >= 0 {
			e.cfg.NeighborsAfter = after
		}
	}
}

// WithConcurrency bounds parallel per-video and per-result work.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.cfg.Concurrency = n
		}
	}
}
