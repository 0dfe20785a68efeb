package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/subseek/subseek/internal/search"
	"github.com/subseek/subseek/internal/store"
	"github.com/subseek/subseek/internal/ui"
)

// FormatSearchResults formats a search response as markdown. The
// structured output carries the machine-readable fields; this text is
// what AI clients quote back to users.
func FormatSearchResults(query string, resp *search.Response) string {
	if resp == nil || len(resp.Results) == 0 {
		return fmt.Sprintf("No captions found for \"%s\"", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Caption Results for \"%s\"\n\n", query))
	sb.WriteString(fmt.Sprintf("Found %d caption", resp.TotalCaptions))
	if resp.TotalCaptions != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(fmt.Sprintf(" in %d video", resp.TotalVideos))
	if resp.TotalVideos != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "### %d. %s at %s\n\n", i+1, r.VideoID, ui.FormatTimestamp(r.StartTime))
		fmt.Fprintf(&sb, "> %s\n\n", r.Snippet)
	}

	if resp.TotalPages > 1 {
		fmt.Fprintf(&sb, "Page %d of %d\n", resp.Page+1, resp.TotalPages)
	}

	return sb.String()
}

// FormatVideo formats video metadata as markdown.
func FormatVideo(meta store.VideoMeta) string {
	title := meta.Title
	if title == "" {
		title = meta.VideoID
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	fmt.Fprintf(&sb, "- **Video:** %s\n", meta.VideoID)
	if meta.ChannelName != "" {
		fmt.Fprintf(&sb, "- **Channel:** %s\n", meta.ChannelName)
	}
	if meta.UploadDate > 0 {
		fmt.Fprintf(&sb, "- **Uploaded:** %s\n", time.Unix(meta.UploadDate, 0).UTC().Format("2006-01-02"))
	}
	if meta.Duration > 0 {
		fmt.Fprintf(&sb, "- **Duration:** %s\n", ui.FormatTimestamp(meta.Duration))
	}
	fmt.Fprintf(&sb, "- **Views:** %d\n", meta.Views)
	fmt.Fprintf(&sb, "- **Likes:** %d\n", meta.Likes)
	if len(meta.Tags) > 0 {
		fmt.Fprintf(&sb, "- **Tags:** %s\n", strings.Join(meta.Tags, ", "))
	}

	return sb.String()
}
