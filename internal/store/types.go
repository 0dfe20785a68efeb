// Package store provides the caption index and video metadata collaborators
// behind the search pipeline: an embedded backend (bleve captions index +
// SQLite metadata) and an Elasticsearch backend, plus an LRU metadata cache.
package store

import (
	"context"
	"fmt"
)

// Caption field names as indexed by both backends. FieldTextStemmed is the
// stemmed variant of the caption text; phrase and term clauses query it for
// morphological tolerance.
const (
	FieldVideoID     = "video_id"
	FieldText        = "text"
	FieldTextStemmed = "text.stemmed"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
)

// MaxVideoHits caps the caption hits a single per-video query returns.
const MaxVideoHits = 1000

// Caption is one time-stamped caption segment. Immutable once indexed;
// start_time is unique within a video (ingestion invariant).
type Caption struct {
	VideoID   string  `json:"video_id"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// CaptionID returns the document id for a caption. start_time is unique
// within a video, so video id plus millisecond-precision start is stable.
func CaptionID(videoID string, startTime float64) string {
	return fmt.Sprintf("%s:%.3f", videoID, startTime)
}

// VideoMeta holds the sortable and displayable metadata for one video.
type VideoMeta struct {
	VideoID      string   `json:"video_id"`
	Title        string   `json:"title"`
	ChannelID    string   `json:"channel_id"`
	ChannelName  string   `json:"channel_name"`
	UploadDate   int64    `json:"upload_date"`
	Duration     float64  `json:"duration"`
	Views        int64    `json:"views"`
	Likes        int64    `json:"likes"`
	CommentCount int64    `json:"comment_count"`
	Tags         []string `json:"tags,omitempty"`
}

// CaptionHit is a matched caption with its score and highlight fragment.
// Highlight is empty when the index returned no fragment for the hit.
type CaptionHit struct {
	Caption
	Score     float64
	Highlight string
}

// VideoStats is one aggregation group: per-video match statistics.
type VideoStats struct {
	VideoID    string
	AvgScore   float64
	MaxScore   float64
	MatchCount int64
}

// VideoAggregation is the result of grouping all matching captions by video.
// TotalVideos and TotalCaptions are full-corpus counts for the query,
// independent of any bucket cap on Stats.
type VideoAggregation struct {
	Stats         []VideoStats
	TotalVideos   int64
	TotalCaptions int64
}

// CaptionIndex is the full-text index collaborator.
type CaptionIndex interface {
	// AggregateVideos groups all captions matching clause by video id and
	// returns per-video stats plus exact corpus totals for the query.
	AggregateVideos(ctx context.Context, clause Clause) (*VideoAggregation, error)

	// MatchingCaptions returns the captions of one video matching clause,
	// each with a highlight fragment per spec. Hit order is index-native;
	// callers impose their own ordering.
	MatchingCaptions(ctx context.Context, clause Clause, videoID string, spec HighlightSpec) ([]CaptionHit, error)

	// CaptionsBetween returns all captions of a video whose start_time lies
	// in [from, to], sorted ascending by start_time.
	CaptionsBetween(ctx context.Context, videoID string, from, to float64) ([]Caption, error)

	// IndexCaptions bulk-writes captions (bootstrap/load path).
	IndexCaptions(ctx context.Context, captions []Caption) error

	// CaptionCount returns the number of indexed captions.
	CaptionCount(ctx context.Context) (uint64, error)

	Close() error
}

// VideoStore is the video metadata collaborator.
type VideoStore interface {
	// GetVideos multi-gets metadata by video id. Unknown ids are simply
	// absent from the returned map, never an error.
	GetVideos(ctx context.Context, ids []string) (map[string]VideoMeta, error)

	// PutVideos bulk-writes metadata (bootstrap/load path).
	PutVideos(ctx context.Context, videos []VideoMeta) error

	// VideoCount returns the number of stored videos.
	VideoCount(ctx context.Context) (uint64, error)

	Close() error
}
