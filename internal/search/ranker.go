package search

import (
	"context"
	"sort"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/store"
)

// videoRankEntry carries one video's aggregated match statistics plus the
// metadata fields a sort may need. Built per request, consumed for
// ordering and pagination, then discarded.
type videoRankEntry struct {
	videoID    string
	avgScore   float64
	maxScore   float64
	matchCount int64
	uploadDate int64
	duration   float64
	views      int64
	likes      int64
}

// rankVideos aggregates matching captions by video, enriches with
// metadata when the sort needs it, orders the candidates
// deterministically, and returns the ids of the requested page plus the
// full aggregation totals. An aggregation or enrichment failure fails the
// whole request: pagination integrity cannot be guaranteed otherwise.
func (e *Engine) rankVideos(ctx context.Context, clause store.Clause, opts *Options, page, pageSize int) ([]string, *store.VideoAggregation, error) {
	agg, err := e.index.AggregateVideos(ctx, clause)
	if err != nil {
		return nil, nil, apperrors.AggregationError(err)
	}

	entries := make([]videoRankEntry, len(agg.Stats))
	for i, s := range agg.Stats {
		entries[i] = videoRankEntry{
			videoID:    s.VideoID,
			avgScore:   s.AvgScore,
			maxScore:   s.MaxScore,
			matchCount: s.MatchCount,
		}
	}

	if opts.SortBy.needsMetadata() {
		if err := e.enrichEntries(ctx, entries); err != nil {
			return nil, nil, apperrors.MetadataError(err)
		}
	}

	sortEntries(entries, opts.SortBy, opts.SortOrder)
	return pageOf(entries, page, pageSize), agg, nil
}

// enrichEntries bulk-fetches sortable metadata for every candidate. Ids
// missing from the store keep zero-valued sort fields.
func (e *Engine) enrichEntries(ctx context.Context, entries []videoRankEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].videoID
	}

	metas, err := e.videos.GetVideos(ctx, ids)
	if err != nil {
		return err
	}

	for i := range entries {
		meta, ok := metas[entries[i].videoID]
		if !ok {
			continue
		}
		entries[i].uploadDate = meta.UploadDate
		entries[i].duration = meta.Duration
		entries[i].views = meta.Views
		entries[i].likes = meta.Likes
	}
	return nil
}

// sortEntries imposes the deterministic total order: the requested field
// per sort order, then avg score descending (ties broken toward
// relevance), then video id ascending. When the primary key already is
// relevance the secondary is video id ascending. The chain is a total
// order, so pagination is stable across identical requests even when the
// index returns ties in different orders.
func sortEntries(entries []videoRankEntry, sortBy SortBy, order SortOrder) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if c := comparePrimary(a, b, sortBy); c != 0 {
			if order == OrderAsc {
				return c < 0
			}
			return c > 0
		}
		if sortBy != SortByRelevance && a.avgScore != b.avgScore {
			return a.avgScore > b.avgScore
		}
		return a.videoID < b.videoID
	})
}

func comparePrimary(a, b *videoRankEntry, sortBy SortBy) int {
	switch sortBy {
	case SortByUploadDate:
		return compareInt64(a.uploadDate, b.uploadDate)
	case SortByDuration:
		return compareFloat64(a.duration, b.duration)
	case SortByViews:
		return compareInt64(a.views, b.views)
	case SortByLikes:
		return compareInt64(a.likes, b.likes)
	case SortByCaptionMatches:
		return compareInt64(a.matchCount, b.matchCount)
	default:
		return compareFloat64(a.avgScore, b.avgScore)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// pageOf returns the video ids of one page of the sorted candidate set.
// Pages count videos, never caption hits.
func pageOf(entries []videoRankEntry, page, pageSize int) []string {
	start := page * pageSize
	if start >= len(entries) {
		return nil
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}

	ids := make([]string, 0, end-start)
	for _, entry := range entries[start:end] {
		ids = append(ids, entry.videoID)
	}
	return ids
}

// totalPages is ceil(totalVideos / pageSize).
func totalPages(totalVideos int64, pageSize int) int {
	if totalVideos <= 0 || pageSize <= 0 {
		return 0
	}
	return int((totalVideos + int64(pageSize) - 1) / int64(pageSize))
}
