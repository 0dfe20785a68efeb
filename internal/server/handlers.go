package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/subseek/subseek/internal/errors"
	"github.com/subseek/subseek/internal/search"
	"github.com/subseek/subseek/internal/store"
	"github.com/subseek/subseek/pkg/version"
)

// errorResponse is the wire shape for all error replies.
type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// batchRequest is the body of POST /api/videos/batch.
type batchRequest struct {
	VideoIDs []string `json:"video_ids"`
}

// batchResponse lists the metadata found for a batch lookup, in
// request order. Unknown ids are skipped rather than erroring the
// whole batch.
type batchResponse struct {
	Videos []store.VideoMeta `json:"videos"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleSearch serves GET /api/search. Query parameters map directly
// onto a search.Request; unknown enum values fall back to defaults and
// the engine clamps page bounds.
func (s *Server) handleSearch(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	req := search.Request{
		Query: c.QueryParam("q"),
		Options: search.Options{
			Mode:          search.ParseMode(c.QueryParam("type")),
			SortBy:        search.ParseSortBy(c.QueryParam("sort")),
			SortOrder:     search.ParseSortOrder(c.QueryParam("order")),
			FuzzyDistance: strings.TrimSpace(c.QueryParam("fuzziness")),
		},
		Page:     page,
		PageSize: pageSize,
	}

	resp, err := s.engine.Search(c.Request().Context(), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// handleGetVideo serves GET /api/videos/:id.
func (s *Server) handleGetVideo(c echo.Context) error {
	id := c.Param("id")
	metas, err := s.videos.GetVideos(c.Request().Context(), []string{id})
	if err != nil {
		return s.writeError(c, apperrors.MetadataError(err))
	}
	meta, ok := metas[id]
	if !ok {
		return s.writeError(c, apperrors.VideoNotFoundError(id))
	}
	return c.JSON(http.StatusOK, meta)
}

// handleVideosBatch serves POST /api/videos/batch.
func (s *Server) handleVideosBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, apperrors.ValidationError("request body must be JSON with a video_ids array", err))
	}
	if len(req.VideoIDs) == 0 {
		return s.writeError(c, apperrors.ValidationError("video_ids must not be empty", nil))
	}

	metas, err := s.videos.GetVideos(c.Request().Context(), req.VideoIDs)
	if err != nil {
		return s.writeError(c, apperrors.MetadataError(err))
	}

	videos := make([]store.VideoMeta, 0, len(metas))
	for _, id := range req.VideoIDs {
		if meta, ok := metas[id]; ok {
			videos = append(videos, meta)
		}
	}
	return c.JSON(http.StatusOK, batchResponse{Videos: videos})
}

// writeError maps a pipeline error onto an HTTP status. Validation
// problems are the caller's fault, missing videos are 404, retryable
// backend failures surface as 503 so clients can back off.
func (s *Server) writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	var serr *apperrors.SubseekError
	if errors.As(err, &serr) {
		resp.Error = serr.Message
		resp.Code = serr.Code
		resp.Suggestion = serr.Suggestion
		switch {
		case serr.Code == apperrors.ErrCodeVideoNotFound:
			status = http.StatusNotFound
		case serr.Category == apperrors.CategoryValidation:
			status = http.StatusBadRequest
		case serr.Retryable:
			status = http.StatusServiceUnavailable
		}
	}
	return c.JSON(status, resp)
}
