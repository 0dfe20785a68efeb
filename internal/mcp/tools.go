package mcp

// SearchCaptionsInput defines the input schema for the search_captions tool.
type SearchCaptionsInput struct {
	Query    string `json:"query" jsonschema:"the caption search query to execute"`
	Mode     string `json:"mode,omitempty" jsonschema:"search mode: natural (exact phrase) or wide (typo tolerant), default natural"`
	Sort     string `json:"sort,omitempty" jsonschema:"sort key: relevance, upload_date, duration, views, likes, caption_matches"`
	Order    string `json:"order,omitempty" jsonschema:"sort direction: asc or desc"`
	Page     int    `json:"page,omitempty" jsonschema:"zero-based page of videos, default 0"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"videos per page, default 10"`
}

// SearchCaptionsOutput defines the output schema for the search_captions tool.
type SearchCaptionsOutput struct {
	Results       []CaptionResult `json:"results" jsonschema:"matched captions in rank order"`
	TotalVideos   int64           `json:"total_videos" jsonschema:"videos matching across the whole corpus"`
	TotalCaptions int64           `json:"total_captions" jsonschema:"captions matching across the whole corpus"`
	Page          int             `json:"page" jsonschema:"zero-based page served"`
	PageSize      int             `json:"page_size" jsonschema:"videos per page"`
	TotalPages    int             `json:"total_pages" jsonschema:"total pages at this page size"`
}

// CaptionResult defines a single matched caption with its snippet.
type CaptionResult struct {
	VideoID   string  `json:"video_id" jsonschema:"video the caption belongs to"`
	StartTime float64 `json:"start_time" jsonschema:"caption start in seconds"`
	EndTime   float64 `json:"end_time" jsonschema:"caption end in seconds"`
	Snippet   string  `json:"snippet_html" jsonschema:"stitched snippet with highlight markers around matched terms"`
}

// GetVideoInput defines the input schema for the get_video tool.
type GetVideoInput struct {
	VideoID string `json:"video_id" jsonschema:"the video identifier to look up"`
}

// GetVideoOutput defines the output schema for the get_video tool.
type GetVideoOutput struct {
	VideoID      string   `json:"video_id" jsonschema:"the video identifier"`
	Title        string   `json:"title" jsonschema:"video title"`
	ChannelID    string   `json:"channel_id,omitempty" jsonschema:"channel identifier"`
	ChannelName  string   `json:"channel_name,omitempty" jsonschema:"channel display name"`
	UploadDate   int64    `json:"upload_date" jsonschema:"upload time as unix seconds"`
	Duration     float64  `json:"duration" jsonschema:"video duration in seconds"`
	Views        int64    `json:"views" jsonschema:"view count"`
	Likes        int64    `json:"likes" jsonschema:"like count"`
	CommentCount int64    `json:"comment_count" jsonschema:"comment count"`
	Tags         []string `json:"tags,omitempty" jsonschema:"video tags"`
}
