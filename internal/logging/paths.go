package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir is ~/.subseek/logs, or the same layout under the temp
// directory when no home is available.
func DefaultLogDir() string {
	base, err := os.UserHomeDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, ".subseek", "logs")
}

// DefaultLogPath returns the server log location under DefaultLogDir.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "server.log")
}

// EnsureLogDir creates the default log directory if missing.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}

// FindLogFile resolves which log file to inspect. An explicit path must
// exist to be used; with none given, the default server log is tried.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	fallback := DefaultLogPath()
	if _, err := os.Stat(fallback); err != nil {
		return "", fmt.Errorf("no log file found. The server may not have run yet.\nExpected at: %s", fallback)
	}
	return fallback, nil
}
