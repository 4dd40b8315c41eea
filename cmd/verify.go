/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/yarnpin/pkg/logger"
	"github.com/fulmenhq/yarnpin/pkg/manifest"
	"github.com/fulmenhq/yarnpin/pkg/resolutions"
)

func newVerifyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <target-folder>",
		Short: "Check that a manifest is already pinned, without modifying it",
		Long: `Verify loads <target-folder>/package.json and reports every deviation from the
expected pinning: missing or mis-versioned resolutions, unexpected resolution
keys, and pinned modules still declared as direct dependencies.

With --path, each dependency path (for example app/node_modules/@photic/web3-utils)
must also be matched by one of the resolution patterns.`,
		Args: targetArg,
		RunE: a.runVerify,
	}
	cmd.Flags().StringSlice("path", nil, "Dependency path that must be covered by a resolution (repeatable)")
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, args []string) error {
	paths, _ := cmd.Flags().GetStringSlice("path")

	res, findings, err := a.patcher(args[0]).Verify()
	if err != nil {
		return err
	}

	for _, p := range paths {
		depPath := path.Clean(p)
		o, ok := res.Overrides.Covers(depPath)
		if !ok {
			findings = append(findings, resolutions.Finding{
				Section: manifest.SectionResolutions,
				Key:     depPath,
				Message: "not covered by any resolution",
			})
			continue
		}
		logger.Debug("Dependency path covered",
			logger.String("path", depPath),
			logger.String("pattern", o.Pattern),
			logger.String("version", o.Version))
	}

	report := resolutions.NewReport(res)
	report.Findings = findings
	if err := resolutions.Render(cmd.OutOrStdout(), report, a.cfg.Format); err != nil {
		return err
	}

	if len(findings) > 0 {
		return fmt.Errorf("%w: %s has %d finding(s)", errVerifyFailed, res.ManifestPath, len(findings))
	}
	logger.Info("Manifest is pinned", logger.String("manifest", res.ManifestPath), logger.String("version", res.Version))
	return nil
}
