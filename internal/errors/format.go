package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// coerce returns err as a SubseekError, wrapping foreign errors as
// internal so every formatter below has the full structure to work with.
func coerce(err error) *SubseekError {
	if se, ok := err.(*SubseekError); ok {
		return se
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForUser renders a multi-line human-readable message. With debug
// set, the underlying cause is included.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}
	se, ok := err.(*SubseekError)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", se.Suggestion)
	}
	if debug && se.Cause != nil {
		fmt.Fprintf(&sb, "\nCause: %s\n", se.Cause.Error())
	}
	fmt.Fprintf(&sb, "\n[%s]", se.Code)
	return sb.String()
}

// FormatForCLI renders the compact three-line form used by the cobra
// commands: message, optional hint, code.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	se := coerce(err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", se.Message)
	if se.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", se.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", se.Code)
	return sb.String()
}

// jsonError is the wire shape FormatJSON emits.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON marshals the error for machine consumption. nil marshals
// to JSON null.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}
	se := coerce(err)

	je := jsonError{
		Code:       se.Code,
		Message:    se.Message,
		Category:   string(se.Category),
		Severity:   string(se.Severity),
		Details:    se.Details,
		Suggestion: se.Suggestion,
		Retryable:  se.Retryable,
	}
	if se.Cause != nil {
		je.Cause = se.Cause.Error()
	}
	return json.Marshal(je)
}

// FormatForLog flattens the error into slog attribute pairs. Details are
// prefixed detail_ so they cannot collide with the fixed keys.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}
	se, ok := err.(*SubseekError)
	if !ok {
		return map[string]any{"error": err.Error()}
	}

	fields := map[string]any{
		"error_code": se.Code,
		"message":    se.Message,
		"category":   string(se.Category),
		"severity":   string(se.Severity),
		"retryable":  se.Retryable,
	}
	if se.Cause != nil {
		fields["cause"] = se.Cause.Error()
	}
	if se.Suggestion != "" {
		fields["suggestion"] = se.Suggestion
	}
	for k, v := range se.Details {
		fields["detail_"+k] = v
	}
	return fields
}
