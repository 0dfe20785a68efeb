package ui

import (
	"encoding/json"
	"fmt"
	"io"
)

// StatusInfo contains backend health information for the status command.
type StatusInfo struct {
	Backend       string `json:"backend"`
	BackendStatus string `json:"backend_status"` // "ready", "offline", "error"
	CaptionCount  uint64 `json:"caption_count"`
	VideoCount    uint64 `json:"video_count"`

	// Embedded backend storage (zero/empty for elasticsearch)
	IndexPath string `json:"index_path,omitempty"`
	IndexSize int64  `json:"index_size,omitempty"`

	ConfigPath string `json:"config_path,omitempty"`
	LogFile    string `json:"log_file,omitempty"`
}

// StatusRenderer displays backend status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, styles Styles) *StatusRenderer {
	return &StatusRenderer{out: out, styles: styles}
}

// Render displays status info to the terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Backend Status"))

	_, _ = fmt.Fprintf(r.out, "  Backend:  %s\n", info.Backend)
	_, _ = fmt.Fprintf(r.out, "  Status:   %s\n", r.renderStatus(info.BackendStatus))
	_, _ = fmt.Fprintf(r.out, "  Captions: %d\n", info.CaptionCount)
	_, _ = fmt.Fprintf(r.out, "  Videos:   %d\n", info.VideoCount)

	if info.IndexPath != "" {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "  Storage:")
		_, _ = fmt.Fprintf(r.out, "    Path: %s\n", info.IndexPath)
		if info.IndexSize > 0 {
			_, _ = fmt.Fprintf(r.out, "    Size: %s\n", FormatBytes(info.IndexSize))
		}
	}

	if info.ConfigPath != "" || info.LogFile != "" {
		_, _ = fmt.Fprintln(r.out)
		if info.ConfigPath != "" {
			_, _ = fmt.Fprintf(r.out, "  Config: %s\n", info.ConfigPath)
		}
		if info.LogFile != "" {
			_, _ = fmt.Fprintf(r.out, "  Logs:   %s\n", info.LogFile)
		}
	}
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready":
		return r.styles.Success.Render(status)
	case "offline":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// FormatBytes formats bytes to a human-readable size.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
