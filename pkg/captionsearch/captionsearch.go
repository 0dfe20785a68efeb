package captionsearch

import (
	"context"
	"log/slog"

	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/search"
	"github.com/subseek/subseek/internal/store"
)

// Aliases re-export the request/response surface so callers never
// import internal packages.
type (
	Request   = search.Request
	Response  = search.Response
	Result    = search.Result
	Options   = search.Options
	Mode      = search.Mode
	SortBy    = search.SortBy
	SortOrder = search.SortOrder

	Caption   = store.Caption
	VideoMeta = store.VideoMeta
)

// Re-exported enum values.
const (
	ModeNatural = search.ModeNatural
	ModeWide    = search.ModeWide

	SortByRelevance      = search.SortByRelevance
	SortByUploadDate     = search.SortByUploadDate
	SortByDuration       = search.SortByDuration
	SortByViews          = search.SortByViews
	SortByLikes          = search.SortByLikes
	SortByCaptionMatches = search.SortByCaptionMatches

	OrderAsc  = search.OrderAsc
	OrderDesc = search.OrderDesc
)

// Searcher is the public search contract.
//
// Implementations must be safe for concurrent use.
type Searcher interface {
	// Search executes one query and returns ranked, snippeted results.
	Search(ctx context.Context, req Request) (*Response, error)
}

// Client binds the configured backend stores to the retrieval
// pipeline. Create one with Open and Close it when done.
type Client struct {
	engine *search.Engine
	index  store.CaptionIndex
	videos store.VideoStore
}

var _ Searcher = (*Client)(nil)

// Open builds a ready-to-search Client: backend stores from the
// factory, metadata cache when enabled, engine tuned from the search
// section of cfg. The Client owns the stores; Close releases them.
func Open(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	index, videos, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	engine, err := search.NewEngine(index, videos, EngineConfig(cfg.Search), search.WithLogger(logger))
	if err != nil {
		_ = index.Close()
		_ = videos.Close()
		return nil, err
	}

	return &Client{engine: engine, index: index, videos: videos}, nil
}

// EngineConfig maps the yaml search section onto pipeline tuning.
// Zero values fall back to pipeline defaults, except the neighbor
// counts where zero is an explicit "no context" choice.
func EngineConfig(sc config.SearchConfig) search.Config {
	return search.Config{
		PageSize:        sc.PageSize,
		MaxPageSize:     sc.MaxPageSize,
		SnippetBudget:   sc.SnippetBudget,
		PreTag:          sc.PreTag,
		PostTag:         sc.PostTag,
		NeighborsBefore: sc.NeighborsBefore,
		NeighborsAfter:  sc.NeighborsAfter,
		Slop:            sc.Slop,
		Fuzziness:       sc.Fuzziness,
		MinShouldMatch:  sc.MinShouldMatch,
		Concurrency:     sc.Concurrency,
		FragmentSize:    sc.FragmentSize,
		NoMatchSize:     sc.NoMatchSize,
	}
}

// Search runs one query through the pipeline.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	return c.engine.Search(ctx, req)
}

// IndexCaptions bulk-indexes caption segments.
func (c *Client) IndexCaptions(ctx context.Context, captions []Caption) error {
	return c.index.IndexCaptions(ctx, captions)
}

// PutVideos bulk-writes video metadata.
func (c *Client) PutVideos(ctx context.Context, videos []VideoMeta) error {
	return c.videos.PutVideos(ctx, videos)
}

// CaptionCount returns the number of indexed captions.
func (c *Client) CaptionCount(ctx context.Context) (uint64, error) {
	return c.index.CaptionCount(ctx)
}

// VideoCount returns the number of stored videos.
func (c *Client) VideoCount(ctx context.Context) (uint64, error) {
	return c.videos.VideoCount(ctx)
}

// Videos exposes the opened video store for surfaces that serve
// metadata directly, such as the HTTP video endpoints and the MCP
// get_video tool. The Client retains ownership; do not Close it.
func (c *Client) Videos() store.VideoStore {
	return c.videos
}

// Close releases the underlying stores.
func (c *Client) Close() error {
	return c.engine.Close()
}
