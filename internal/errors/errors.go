package errors

import (
	"errors"
	"fmt"
)

// SubseekError carries everything the surfaces need to present an error:
// a stable code, classification, retryability, and an optional suggestion.
type SubseekError struct {
	Code       string            // stable identifier, e.g. "ERR_404_QUERY_EMPTY"
	Message    string            // human-readable description
	Category   Category          // what went wrong
	Severity   Severity          // how the caller should react
	Details    map[string]string // extra context for logs and JSON
	Cause      error             // underlying error, if any
	Retryable  bool              // whether an identical retry may succeed
	Suggestion string            // actionable advice for the user
}

func (e *SubseekError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to the errors.Is/As chain.
func (e *SubseekError) Unwrap() error {
	return e.Cause
}

// Is matches two SubseekErrors by code so errors.Is works across
// independently constructed instances.
func (e *SubseekError) Is(target error) bool {
	t, ok := target.(*SubseekError)
	return ok && e.Code == t.Code
}

// WithDetail attaches a key-value pair and returns the error for chaining.
func (e *SubseekError) WithDetail(key, value string) *SubseekError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion attaches user-facing advice and returns the error for
// chaining.
func (e *SubseekError) WithSuggestion(suggestion string) *SubseekError {
	e.Suggestion = suggestion
	return e
}

// New builds a SubseekError; category, severity, and retryability all
// derive from the code so call sites cannot disagree with the taxonomy.
func New(code string, message string, cause error) *SubseekError {
	return &SubseekError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap lifts an existing error into a SubseekError, reusing its message.
func Wrap(code string, err error) *SubseekError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Convenience constructors for the common generic cases.

func ConfigError(message string, cause error) *SubseekError {
	return New(ErrCodeConfigInvalid, message, cause)
}

func IOError(message string, cause error) *SubseekError {
	return New(ErrCodeFileNotFound, message, cause)
}

func ValidationError(message string, cause error) *SubseekError {
	return New(ErrCodeInvalidInput, message, cause)
}

func InternalError(message string, cause error) *SubseekError {
	return New(ErrCodeInternal, message, cause)
}

// QueryEmptyError creates the rejection error for blank query strings.
func QueryEmptyError() *SubseekError {
	return New(ErrCodeQueryEmpty, "query must not be empty", nil).
		WithSuggestion("Provide at least one non-whitespace character in the query")
}

// VideoNotFoundError creates a not-found error for the given video ID.
func VideoNotFoundError(videoID string) *SubseekError {
	return New(ErrCodeVideoNotFound, fmt.Sprintf("video %q not found", videoID), nil).
		WithDetail("video_id", videoID)
}

// AggregationError wraps a failed video aggregation round trip.
// Aggregation failures abort the whole request but may succeed on retry.
func AggregationError(cause error) *SubseekError {
	return New(ErrCodeAggregationFailed, "video aggregation failed", cause)
}

// SearchError wraps a failed per-video caption search.
func SearchError(videoID string, cause error) *SubseekError {
	return New(ErrCodeSearchFailed, fmt.Sprintf("caption search failed for video %q", videoID), cause).
		WithDetail("video_id", videoID)
}

// MetadataError wraps a failed video metadata fetch.
func MetadataError(cause error) *SubseekError {
	return New(ErrCodeMetadataFailed, "video metadata fetch failed", cause)
}

// find walks the error chain for a SubseekError.
func find(err error) (*SubseekError, bool) {
	var se *SubseekError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsRetryable reports whether err is a SubseekError marked retryable.
func IsRetryable(err error) bool {
	se, ok := find(err)
	return ok && se.Retryable
}

// IsFatal reports whether err carries fatal severity and should abort
// the current operation.
func IsFatal(err error) bool {
	se, ok := find(err)
	return ok && se.Severity == SeverityFatal
}

// GetCode returns the error code, or "" for non-SubseekErrors.
func GetCode(err error) string {
	if se, ok := find(err); ok {
		return se.Code
	}
	return ""
}

// GetCategory returns the category, or "" for non-SubseekErrors.
func GetCategory(err error) Category {
	if se, ok := find(err); ok {
		return se.Category
	}
	return ""
}
