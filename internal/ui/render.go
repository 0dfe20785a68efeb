package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/subseek/subseek/internal/search"
)

// SearchRenderer writes a search response page as human-readable text.
// Snippet highlight markers are rewritten with the Highlight style; in
// plain mode that strips them, leaving clean text.
type SearchRenderer struct {
	out     io.Writer
	styles  Styles
	preTag  string
	postTag string
}

// NewSearchRenderer creates a renderer for the given output. preTag and
// postTag are the highlight markers the engine was configured with.
func NewSearchRenderer(out io.Writer, styles Styles, preTag, postTag string) *SearchRenderer {
	return &SearchRenderer{
		out:     out,
		styles:  styles,
		preTag:  preTag,
		postTag: postTag,
	}
}

// Render writes one result page. Write errors to the console are
// intentionally ignored.
func (r *SearchRenderer) Render(query string, resp *search.Response) error {
	if len(resp.Results) == 0 {
		_, _ = fmt.Fprintf(r.out, "No captions found for %q\n", query)
		return nil
	}

	header := fmt.Sprintf("Found %d captions in %d videos for %q",
		resp.TotalCaptions, resp.TotalVideos, query)
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render(header))

	for i, res := range resp.Results {
		location := fmt.Sprintf("%s [%s]", res.VideoID, FormatTimestamp(res.StartTime))
		_, _ = fmt.Fprintf(r.out, "%2d. %s\n", i+1, r.styles.VideoID.Render(location))

		snippet := restyleHighlights(res.Snippet, r.preTag, r.postTag, r.styles.Highlight)
		_, _ = fmt.Fprintf(r.out, "    %s\n\n", r.styles.Snippet.Render(snippet))
	}

	if resp.TotalPages > 1 {
		footer := fmt.Sprintf("page %d of %d", resp.Page+1, resp.TotalPages)
		_, _ = fmt.Fprintf(r.out, "%s\n", r.styles.Dim.Render(footer))
	}
	return nil
}

// RenderJSON writes the raw response as indented JSON.
func (r *SearchRenderer) RenderJSON(resp *search.Response) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// restyleHighlights rewrites every preTag...postTag span with the given
// style. Unpaired markers pass through untouched.
func restyleHighlights(s, preTag, postTag string, style lipgloss.Style) string {
	if preTag == "" || postTag == "" {
		return s
	}

	var b strings.Builder
	for {
		i := strings.Index(s, preTag)
		if i < 0 {
			break
		}
		j := strings.Index(s[i+len(preTag):], postTag)
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		b.WriteString(style.Render(s[i+len(preTag) : i+len(preTag)+j]))
		s = s[i+len(preTag)+j+len(postTag):]
	}
	b.WriteString(s)
	return b.String()
}

// FormatTimestamp formats a caption offset in seconds as m:ss, or
// h:mm:ss past the hour mark.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
