// Package logging provides file-based logging with rotation for subseek.
// Server and CLI logs are written as structured JSON to ~/.subseek/logs/
// with optional mirroring to stderr.
//
// MCP mode uses a file-only setup because the protocol reserves stdout
// for JSON-RPC frames.
package logging
