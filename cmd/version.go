/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/yarnpin/pkg/buildinfo"
	"github.com/fulmenhq/yarnpin/pkg/logger"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show yarnpin build information",
		Args:  cobra.NoArgs,
		// Version must work without a readable configuration.
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd, logger.FileConfig{})
		},
		RunE: runVersion,
	}
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	info := buildinfo.Current()

	if jsonOutput {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fmt.Fprintf(out, "yarnpin %s\n", info.Version)
	if info.ModuleVersion != "" && info.ModuleVersion != info.Version {
		fmt.Fprintf(out, "Module: %s\n", info.ModuleVersion)
	}
	if info.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", info.Commit)
	}
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return nil
}
