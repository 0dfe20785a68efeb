package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config describes where log output goes and what gets through.
type Config struct {
	// Level is the minimum level written (debug, info, warn, error).
	Level string
	// FilePath is the log file destination.
	FilePath string
	// MaxSizeMB is the rotation threshold.
	MaxSizeMB int
	// MaxFiles bounds the rotated-file chain.
	MaxFiles int
	// WriteToStderr mirrors entries to stderr. One-shot CLI commands
	// turn this off so log lines never mix with command output.
	WriteToStderr bool
}

// DefaultConfig logs at info to the default server log, mirrored to stderr.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DebugConfig is DefaultConfig at debug level.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup opens the rotating log file and returns a JSON slog.Logger over
// it, plus a cleanup that flushes and closes the file. The caller decides
// whether to install the logger as the process default.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = writer
	if cfg.WriteToStderr {
		out = io.MultiWriter(writer, os.Stderr)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}
	return slog.New(handler), cleanup, nil
}

// parseLevel maps a level name onto slog.Level, defaulting to info for
// anything unrecognized. "warning" is accepted as an alias for warn.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
