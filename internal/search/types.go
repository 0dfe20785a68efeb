// Package search implements the caption retrieval pipeline: a query
// planner, a video ranking aggregator with deterministic pagination, a
// per-video caption fetcher, a temporal neighbor assembler, and a snippet
// stitcher/truncator. The pipeline reads from the store collaborators and
// keeps all state request-scoped.
package search

import (
	"context"
	"strings"
)

// Mode selects the query planning strategy.
type Mode string

const (
	// ModeNatural is a literal phrase search with light morphological
	// tolerance (stemmed variant), no term reordering.
	ModeNatural Mode = "natural"

	// ModeWide trades precision for recall: phrase, sloppy phrase,
	// all-terms, and fuzzy clauses with descending boosts.
	ModeWide Mode = "wide"
)

// ParseMode maps a wire string to a search mode. Unknown values fall back
// to natural.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeWide {
		return ModeWide
	}
	return ModeNatural
}

// SortBy selects the primary video ordering key.
type SortBy string

const (
	SortByRelevance      SortBy = "relevance"
	SortByUploadDate     SortBy = "upload_date"
	SortByDuration       SortBy = "duration"
	SortByViews          SortBy = "views"
	SortByLikes          SortBy = "likes"
	SortByCaptionMatches SortBy = "caption_matches"
)

// ParseSortBy maps a wire string to a sort key. Unknown values fall back
// to relevance.
func ParseSortBy(s string) SortBy {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case SortByUploadDate:
		return SortByUploadDate
	case SortByDuration:
		return SortByDuration
	case SortByViews:
		return SortByViews
	case SortByLikes:
		return SortByLikes
	case SortByCaptionMatches:
		return SortByCaptionMatches
	default:
		return SortByRelevance
	}
}

// needsMetadata reports whether sorting requires fields that live on the
// video document rather than on captions.
func (s SortBy) needsMetadata() bool {
	switch s {
	case SortByUploadDate, SortByDuration, SortByViews, SortByLikes:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of the primary sort key.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder maps a wire string to a sort order. Unknown values fall
// back to descending.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(strings.ToLower(strings.TrimSpace(s))) == OrderAsc {
		return OrderAsc
	}
	return OrderDesc
}

// Options configures one search request. Constructed once per request,
// immutable, passed by pointer through the pipeline.
type Options struct {
	Mode Mode

	// FuzzyDistance is "AUTO" or an edit distance ("0", "1", "2").
	// Empty means the engine's configured default.
	FuzzyDistance string

	SortBy    SortBy
	SortOrder SortOrder
}

// withDefaults fills unset option fields. FuzzyDistance stays empty here;
// the planner resolves it against the engine configuration.
func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeNatural
	}
	if o.SortBy == "" {
		o.SortBy = SortByRelevance
	}
	if o.SortOrder == "" {
		o.SortOrder = OrderDesc
	}
	return o
}

// Request is one search invocation. Page is zero-based and counts videos,
// not caption hits. PageSize zero means the engine default.
type Request struct {
	Query    string
	Options  Options
	Page     int
	PageSize int
}

// Result is one matched caption with its assembled snippet. Snippet holds
// exactly one highlighted span delimited by the configured marker pair.
type Result struct {
	VideoID   string  `json:"video_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Snippet   string  `json:"snippet_html"`
}

// Response is a fully-formed page of results. TotalVideos and
// TotalCaptions are full-corpus counts for the query, independent of
// pagination; TotalPages is ceil(TotalVideos / PageSize).
type Response struct {
	Results       []Result `json:"results"`
	TotalVideos   int64    `json:"total_videos"`
	TotalCaptions int64    `json:"total_captions"`
	Page          int      `json:"page"`
	PageSize      int      `json:"page_size"`
	TotalPages    int      `json:"total_pages"`
}

// Searcher executes caption searches. *Engine is the production
// implementation; the HTTP, MCP, and CLI surfaces depend on this
// interface.
type Searcher interface {
	Search(ctx context.Context, req Request) (*Response, error)
}
