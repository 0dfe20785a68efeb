// Package ui renders search results and status output for the CLI,
// styled on interactive terminals and plain everywhere else.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ciEnvVars mark non-interactive environments where ANSI styling only
// pollutes captured output.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}

// StylesFor picks styles for the given output: styled only when the
// writer is an interactive terminal, color is not disabled via NO_COLOR,
// and we are not running under CI.
func StylesFor(w io.Writer) Styles {
	if !IsTTY(w) || DetectNoColor() || DetectCI() {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// IsTTY reports whether w is backed by an interactive terminal. Writers
// without a file descriptor (buffers, pipes wrapped in io.Writer) are
// never terminals.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor honors the NO_COLOR convention: presence alone disables
// color, regardless of value.
func DetectNoColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// DetectCI reports whether any well-known CI marker variable is set.
func DetectCI() bool {
	for _, v := range ciEnvVars {
		if _, set := os.LookupEnv(v); set {
			return true
		}
	}
	return false
}
