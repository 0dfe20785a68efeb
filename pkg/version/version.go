// Package version exposes the build metadata stamped into the subseek
// binaries via -ldflags "-X github.com/subseek/subseek/pkg/version.Version=...".
package version

import (
	"fmt"
	"runtime"
)

// Stamped at build time; dev builds carry the defaults.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"

	// GoVersion comes from the running binary, not from ldflags.
	GoVersion = runtime.Version()
)

// BuildInfo is the JSON shape of `subseek version --json`.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo collects the stamped values plus the target platform.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the one-line human form.
func String() string {
	return fmt.Sprintf("subseek %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, GoVersion)
}

// Short returns only the version number.
func Short() string {
	return Version
}
