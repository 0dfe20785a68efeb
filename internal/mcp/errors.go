// Package mcp implements the Model Context Protocol (MCP) server for subseek.
package mcp

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/subseek/subseek/internal/errors"
)

// JSON-RPC error codes, standard ones plus the subseek range.
const (
	// ErrCodeIndexUnavailable: the caption index cannot serve the
	// request right now; the client may retry.
	ErrCodeIndexUnavailable = -32001

	// ErrCodeTimeout: the request timed out or was canceled.
	ErrCodeTimeout = -32002

	// ErrCodeVideoNotFound: the requested video id is unknown.
	ErrCodeVideoNotFound = -32003

	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError is a JSON-RPC error as sent over the wire.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string) *MCPError {
	return &MCPError{Code: code, Message: message}
}

// MapError translates an internal error into its JSON-RPC form. Anything
// unrecognized becomes a generic internal error so internal detail never
// leaks to the client.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var serr *apperrors.SubseekError
	if errors.As(err, &serr) {
		return mapSubseekError(serr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newMCPError(ErrCodeTimeout, "Request timed out.")
	case errors.Is(err, context.Canceled):
		return newMCPError(ErrCodeTimeout, "Request was canceled.")
	default:
		return newMCPError(ErrCodeInternalError, "Internal server error.")
	}
}

// NewInvalidParamsError reports a bad tool argument with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return newMCPError(ErrCodeInvalidParams, msg)
}

// NewMethodNotFoundError reports an unknown tool name.
func NewMethodNotFoundError(name string) *MCPError {
	return newMCPError(ErrCodeMethodNotFound, fmt.Sprintf("Tool '%s' not found.", name))
}

// mapSubseekError picks the JSON-RPC code from the domain error's
// taxonomy. The suggestion, when present, is folded into the message so
// AI clients can surface it without knowing our error shape.
func mapSubseekError(serr *apperrors.SubseekError) *MCPError {
	message := serr.Message
	if serr.Suggestion != "" {
		message = fmt.Sprintf("%s %s", serr.Message, serr.Suggestion)
	}

	switch {
	case serr.Code == apperrors.ErrCodeVideoNotFound:
		return newMCPError(ErrCodeVideoNotFound, message)
	case serr.Category == apperrors.CategoryValidation:
		return newMCPError(ErrCodeInvalidParams, message)
	case serr.Retryable:
		return newMCPError(ErrCodeIndexUnavailable, message)
	default:
		return newMCPError(ErrCodeInternalError, message)
	}
}
