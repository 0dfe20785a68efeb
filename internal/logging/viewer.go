package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// LogEntry is one parsed line of the JSON log file.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig filters and styles viewer output.
type ViewerConfig struct {
	Level   string         // Minimum level to show (debug, info, warn, error)
	Pattern *regexp.Regexp // Raw-line filter
	NoColor bool           // Disable ANSI colors
}

// Viewer reads, filters, and pretty-prints the JSON log file written
// by Setup and SetupMCPMode.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

// NewViewer creates a log viewer writing formatted entries to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out}
}

// Tail returns the filtered entries among the last n lines of the log
// file. Memory stays bounded by n regardless of file size.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	// Long attribute payloads can exceed the default token size.
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	ring := make([]string, n)
	total := 0
	for scanner.Scan() {
		ring[total%n] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	first := 0
	if total > n {
		first = total - n
	}

	var entries []LogEntry
	for i := first; i < total; i++ {
		entry := parseLogLine(ring[i%n])
		if v.matches(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow streams matching entries appended to the log file into the
// channel until the context is cancelled. Existing content is skipped.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !v.drain(ctx, reader, entries) {
				return nil
			}
		}
	}
}

// drain forwards every complete buffered line. It reports false once the
// context is cancelled mid-send.
func (v *Viewer) drain(ctx context.Context, reader *bufio.Reader, entries chan<- LogEntry) bool {
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Partial trailing line; wait for the writer to finish it.
			return true
		}

		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}

		entry := parseLogLine(line)
		if !v.matches(entry) {
			continue
		}
		select {
		case entries <- entry:
		case <-ctx.Done():
			return false
		}
	}
}

// Print writes entries to the viewer's output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// FormatEntry renders one entry as a single line: time, level, message,
// then attributes in key order.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(v.formatLevel(entry.Level))
	b.WriteByte(' ')
	b.WriteString(entry.Msg)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Attrs[k])
	}

	return b.String()
}

// parseLogLine parses one slog JSON line. Unparseable lines come back
// with IsValid false and the raw text preserved.
func parseLogLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}
	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	entry.Level, _ = data["level"].(string)
	entry.Msg, _ = data["msg"].(string)

	entry.Attrs = make(map[string]any)
	for k, val := range data {
		switch k {
		case "time", "level", "msg":
		default:
			entry.Attrs[k] = val
		}
	}

	return entry
}

// matches checks an entry against the level and pattern filters.
func (v *Viewer) matches(entry LogEntry) bool {
	if v.config.Level != "" && parseLevel(entry.Level) < parseLevel(v.config.Level) {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

var levelColors = map[string]string{
	"debug":   "\033[90m",
	"info":    "\033[32m",
	"warn":    "\033[33m",
	"warning": "\033[33m",
	"error":   "\033[31m",
}

// formatLevel pads the level to a fixed width and colors it unless
// NoColor is set.
func (v *Viewer) formatLevel(level string) string {
	levelStr := strings.ToUpper(level)
	if len(levelStr) > 5 {
		levelStr = levelStr[:5]
	}
	levelStr = fmt.Sprintf("%-5s", levelStr)

	if v.config.NoColor {
		return levelStr
	}
	if color, ok := levelColors[strings.ToLower(level)]; ok {
		return color + levelStr + "\033[0m"
	}
	return levelStr
}
