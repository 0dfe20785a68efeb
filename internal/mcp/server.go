package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/search"
	"github.com/subseek/subseek/internal/store"
	"github.com/subseek/subseek/pkg/version"
)

// Server is the MCP server for subseek. It bridges AI clients with the
// caption search engine over stdio.
type Server struct {
	mcp    *mcp.Server
	engine search.Searcher
	videos store.VideoStore
	logger *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

const (
	searchCaptionsDescription = "Search video captions by phrase. Natural mode matches the exact phrase; " +
		"wide mode also recalls near-phrases and typos. Returns highlighted snippets with " +
		"surrounding caption context and the timestamp where each match is spoken."
	getVideoDescription = "Look up metadata for a single video by id: title, channel, upload date, " +
		"duration, views, likes, and tags."
)

// NewServer creates a new MCP server over a search engine and a video
// metadata store.
func NewServer(engine search.Searcher, videos store.VideoStore, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if videos == nil {
		return nil, errors.New("video store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		videos: videos,
		logger: logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "subseek",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "subseek", version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "search_captions", Description: searchCaptionsDescription},
		{Name: "get_video", Description: getVideoDescription},
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_captions",
		Description: searchCaptionsDescription,
	}, s.searchCaptionsHandler)
	s.logger.Debug("registered tool", slog.String("name", "search_captions"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_video",
		Description: getVideoDescription,
	}, s.getVideoHandler)
	s.logger.Debug("registered tool", slog.String("name", "get_video"))

	s.logger.Info("mcp tools registered", slog.Int("count", 2))
}

// searchCaptionsHandler is the MCP SDK handler for the search_captions tool.
func (s *Server) searchCaptionsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchCaptionsInput) (
	*mcp.CallToolResult,
	SearchCaptionsOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()

	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchCaptionsOutput{}, NewInvalidParamsError("query parameter is required and must be a non-empty string")
	}

	s.logger.Info("search_captions started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.String("mode", input.Mode))

	req := search.Request{
		Query: input.Query,
		Options: search.Options{
			Mode:      search.ParseMode(input.Mode),
			SortBy:    search.ParseSortBy(input.Sort),
			SortOrder: search.ParseSortOrder(input.Order),
		},
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	resp, err := s.engine.Search(ctx, req)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("search_captions failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, SearchCaptionsOutput{}, MapError(err)
	}

	s.logger.Info("search_captions completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(resp.Results)))

	output := SearchCaptionsOutput{
		Results:       make([]CaptionResult, 0, len(resp.Results)),
		TotalVideos:   resp.TotalVideos,
		TotalCaptions: resp.TotalCaptions,
		Page:          resp.Page,
		PageSize:      resp.PageSize,
		TotalPages:    resp.TotalPages,
	}
	for _, r := range resp.Results {
		output.Results = append(output.Results, CaptionResult{
			VideoID:   r.VideoID,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			Snippet:   r.Snippet,
		})
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatSearchResults(input.Query, resp)},
		},
	}
	return result, output, nil
}

// getVideoHandler is the MCP SDK handler for the get_video tool.
func (s *Server) getVideoHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetVideoInput) (
	*mcp.CallToolResult,
	GetVideoOutput,
	error,
) {
	requestID := generateRequestID()

	id := strings.TrimSpace(input.VideoID)
	if id == "" {
		return nil, GetVideoOutput{}, NewInvalidParamsError("video_id parameter is required and must be a non-empty string")
	}

	s.logger.Info("get_video started",
		slog.String("request_id", requestID),
		slog.String("video_id", id))

	metas, err := s.videos.GetVideos(ctx, []string{id})
	if err != nil {
		s.logger.Error("get_video failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return nil, GetVideoOutput{}, MapError(apperrors.MetadataError(err))
	}

	meta, ok := metas[id]
	if !ok {
		return nil, GetVideoOutput{}, MapError(apperrors.VideoNotFoundError(id))
	}

	output := GetVideoOutput{
		VideoID:      meta.VideoID,
		Title:        meta.Title,
		ChannelID:    meta.ChannelID,
		ChannelName:  meta.ChannelName,
		UploadDate:   meta.UploadDate,
		Duration:     meta.Duration,
		Views:        meta.Views,
		Likes:        meta.Likes,
		CommentCount: meta.CommentCount,
		Tags:         meta.Tags,
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatVideo(meta)},
		},
	}
	return result, output, nil
}

// Serve runs the server on the stdio transport until the context is
// canceled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting mcp server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
