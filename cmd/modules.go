/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fulmenhq/yarnpin/pkg/resolutions"
)

func newModulesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the pinned modules and their resolution patterns",
		Args:  cobra.NoArgs,
		RunE:  a.runModules,
	}
}

type moduleEntry struct {
	Module  string `json:"module"`
	Pattern string `json:"pattern"`
}

func (a *app) runModules(cmd *cobra.Command, _ []string) error {
	prefix := a.cfg.PatternPrefix
	if prefix == "" {
		prefix = resolutions.DefaultPatternPrefix
	}

	entries := make([]moduleEntry, 0, len(a.cfg.Modules))
	for _, m := range a.cfg.Modules {
		entries = append(entries, moduleEntry{Module: m, Pattern: resolutions.PatternFor(prefix, m)})
	}

	out := cmd.OutOrStdout()
	switch a.cfg.Format {
	case resolutions.FormatJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case resolutions.FormatTable:
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"#", "Module", "Pattern"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for i, e := range entries {
			table.Append([]string{fmt.Sprint(i + 1), e.Module, e.Pattern})
		}
		table.Render()
		return nil
	default:
		return writeModuleList(out, entries)
	}
}

// writeModuleList prints one aligned "module  pattern" line per entry.
func writeModuleList(w io.Writer, entries []moduleEntry) error {
	width := 0
	for _, e := range entries {
		if n := runewidth.StringWidth(e.Module); n > width {
			width = n
		}
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(runewidth.FillRight(e.Module, width))
		b.WriteString("  ")
		b.WriteString(e.Pattern)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
