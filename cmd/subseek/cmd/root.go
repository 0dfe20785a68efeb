// Package cmd provides the CLI commands for subseek.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/logging"
	"github.com/subseek/subseek/internal/profiling"
	"github.com/subseek/subseek/pkg/version"
)

// Persistent flags shared by all subcommands.
var (
	configDir string
	debugMode bool

	profileCPU   string
	profileMem   string
	profileTrace string

	loggingCleanup func()
	profSession    *profiling.Session
)

// NewRootCmd creates the root command for the subseek CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subseek",
		Short: "Full-text search over video captions",
		Long: `Subseek indexes video caption tracks and serves ranked, highlighted
caption snippets grouped by video.

Captions live in an embedded backend (bleve index + SQLite metadata)
or in Elasticsearch; the same queries work against either. Results
paginate by video, and each hit carries its neighboring captions so
snippets read as sentences instead of fragments.`,
		Version: version.Version,
	}
	cmd.SetVersionTemplate("subseek version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&configDir, "config", "", "Directory containing .subseek.yaml (defaults to the working directory)")
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging to "+logging.DefaultLogDir())
	flags.StringVar(&profileCPU, "profile-cpu", "", "Write a CPU profile to this path")
	flags.StringVar(&profileMem, "profile-mem", "", "Write a heap profile to this path on exit")
	flags.StringVar(&profileTrace, "profile-trace", "", "Write an execution trace to this path")

	// Diagnostics wrap every subcommand run.
	cmd.PersistentPreRunE = startDiagnostics
	cmd.PersistentPostRunE = stopDiagnostics

	cmd.AddCommand(
		newServeCmd(),
		newMCPCmd(),
		newSearchCmd(),
		newLoadCmd(),
		newStatusCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return cmd
}

// startDiagnostics turns on debug logging and profiling when the
// corresponding persistent flags are set.
func startDiagnostics(_ *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("Debug logs routed to file",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	opts := profiling.Options{CPUPath: profileCPU, HeapPath: profileMem, TracePath: profileTrace}
	if !opts.Enabled() {
		return nil
	}
	session, err := profiling.Start(opts)
	if err != nil {
		return err
	}
	profSession = session
	return nil
}

// stopDiagnostics finishes the profiling session, writing the heap
// snapshot if one was requested, then closes the debug log.
func stopDiagnostics(_ *cobra.Command, _ []string) error {
	if profSession != nil {
		err := profSession.Stop()
		profSession = nil
		if err != nil {
			return err
		}
	}

	if loggingCleanup != nil {
		slog.Info("Debug log closed")
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// resolveConfigDir returns the directory holding .subseek.yaml.
func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	return "."
}

// loadConfig loads the layered configuration for the resolved directory.
func loadConfig() (*config.Config, error) {
	return config.Load(resolveConfigDir())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
