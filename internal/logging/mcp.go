package logging

import (
	"log/slog"
)

// SetupMCPMode configures file-only logging and installs it as the
// process default. The MCP protocol reserves stdout exclusively for
// JSON-RPC frames, and clients treat stderr noise as a connection
// failure, so nothing may reach either stream. An empty level defaults
// to debug for complete diagnostics.
func SetupMCPMode(level string) (func(), error) {
	if level == "" {
		level = "debug"
	}

	cfg := DefaultConfig()
	cfg.Level = level
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	slog.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level),
		slog.Bool("stderr_disabled", true))

	return cleanup, nil
}
