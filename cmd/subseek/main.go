// subseek is a full-text search engine for video captions.
package main

import (
	"os"

	"github.com/subseek/subseek/cmd/subseek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
