package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput bool
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, build information, and runtime details.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, jsonOutput, short)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&short, "short", false, "Print version number only")

	return cmd
}

func runVersion(cmd *cobra.Command, jsonOutput, short bool) error {
	out := cmd.OutOrStdout()

	if short {
		fmt.Fprintln(out, version.Short())
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetInfo())
	}

	fmt.Fprintln(out, version.String())
	return nil
}
