package resolutions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Report formats understood by Render.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

const banner = ">>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>"

// Report is the machine-readable summary of a pinning.
type Report struct {
	Target        string      `json:"target"`
	Manifest      string      `json:"manifest"`
	SourceVersion string      `json:"sourceVersion"`
	Version       string      `json:"version"`
	Resolutions   OverrideMap `json:"resolutions"`
	Removed       []Removal   `json:"removed"`
	Findings      []Finding   `json:"findings,omitempty"`
	Patch         []Operation `json:"patch,omitempty"`
}

// NewReport summarizes res.
func NewReport(res *Result) Report {
	removed := res.Plan.Removed
	if removed == nil {
		removed = []Removal{}
	}
	return Report{
		Target:        res.Target,
		Manifest:      res.ManifestPath,
		SourceVersion: res.SourceVersion,
		Version:       res.Version,
		Resolutions:   res.Overrides,
		Removed:       removed,
	}
}

// ValidFormat reports whether format is supported by Render.
func ValidFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatTable:
		return true
	}
	return false
}

// Render writes the report in the given format.
func Render(w io.Writer, r Report, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, r)
	case FormatTable:
		return renderTable(w, r)
	case FormatText, "":
		return renderText(w, r)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// renderText prints the banner and override map for build logs.
func renderText(w io.Writer, r Report) error {
	body, err := r.Resolutions.Indented(" ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Yarn will resolve pinned packages in %q to...\n", r.Target)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, string(body))

	for _, rm := range r.Removed {
		fmt.Fprintf(w, "removed %s from %s (was %s)\n", rm.Module, rm.Section, rm.Specifier)
	}
	for _, f := range r.Findings {
		fmt.Fprintf(w, "finding: %s\n", f)
	}
	if len(r.Patch) > 0 {
		doc, err := json.MarshalIndent(r.Patch, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "patch:")
		fmt.Fprintln(w, string(doc))
	}
	return nil
}

func renderJSON(w io.Writer, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderTable(w io.Writer, r Report) error {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Pattern", "Version"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})
	for _, o := range r.Resolutions.Entries() {
		table.Append([]string{o.Pattern, o.Version})
	}
	table.SetFooter([]string{fmt.Sprintf("Target %s", r.Target), fmt.Sprintf("%d pinned", r.Resolutions.Len())})
	table.Render()

	if len(r.Removed) > 0 {
		buf.WriteString("\n")
		removed := tablewriter.NewWriter(&buf)
		removed.SetHeader([]string{"Section", "Module", "Specifier"})
		removed.SetBorder(false)
		removed.SetCenterSeparator("")
		removed.SetAutoWrapText(false)
		for _, rm := range r.Removed {
			removed.Append([]string{rm.Section, rm.Module, rm.Specifier})
		}
		removed.Render()
	}

	if len(r.Findings) > 0 {
		buf.WriteString("\n")
		findings := tablewriter.NewWriter(&buf)
		findings.SetHeader([]string{"Section", "Key", "Problem"})
		findings.SetBorder(false)
		findings.SetCenterSeparator("")
		findings.SetAutoWrapText(false)
		for _, f := range r.Findings {
			findings.Append([]string{f.Section, f.Key, f.Message})
		}
		findings.Render()
	}

	_, err := io.WriteString(w, strings.TrimRight(buf.String(), "\n")+"\n")
	return err
}
