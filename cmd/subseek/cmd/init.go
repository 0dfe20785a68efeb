package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/configs"
	"github.com/subseek/subseek/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool
	var user bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Create a configuration file from the embedded template.

By default this writes .subseek.yaml to the current directory (or the
directory given by --config). With --user it writes the machine-level
config to ~/.config/subseek/config.yaml instead; an existing user
config is backed up before being overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user {
				return initUserConfig(cmd.OutOrStdout(), force)
			}
			return initProjectConfig(cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user-level config instead of the project config")

	return cmd
}

func initProjectConfig(out io.Writer, force bool) error {
	path := filepath.Join(resolveConfigDir(), ".subseek.yaml")

	if fileExists(path) && !force {
		fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	fmt.Fprintln(out, "Next: subseek load --captions captions.jsonl --videos videos.jsonl")

	return nil
}

func initUserConfig(out io.Writer, force bool) error {
	path := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			fmt.Fprintf(out, "Config already exists at %s (use --force to overwrite)\n", path)
			return nil
		}

		backup, err := config.BackupUserConfig()
		if err != nil {
			return fmt.Errorf("failed to back up existing config: %w", err)
		}
		if backup != "" {
			fmt.Fprintf(out, "Backed up existing config to %s\n", backup)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Created %s\n", path)

	return nil
}
