package resolutions

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	return Report{
		Target:        "mosaic-1",
		Manifest:      "mosaic-1/package.json",
		SourceVersion: "1.4.7",
		Version:       "1.5.0",
		Resolutions:   BuildOverrideMap([]string{"@scope/a", "@scope/b"}, "1.5.0"),
		Removed:       []Removal{{Section: "dependencies", Module: "@scope/a", Specifier: "^1.0.0"}},
	}
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatText))

	out := buf.String()
	assert.Contains(t, out, banner)
	assert.Contains(t, out, `Yarn will resolve pinned packages in "mosaic-1" to...`)
	assert.Contains(t, out, "{\n \"*/**/@scope/a\": \"1.5.0\",\n \"*/**/@scope/b\": \"1.5.0\"\n}")
	assert.Contains(t, out, "removed @scope/a from dependencies (was ^1.0.0)")
	assert.NotContains(t, out, "patch:")
}

func TestRender_TextWithPatch(t *testing.T) {
	r := sampleReport()
	r.Patch = []Operation{{Op: "remove", Path: "/dependencies/@scope~1a"}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, ""))
	assert.Contains(t, buf.String(), "patch:")
	assert.Contains(t, buf.String(), `"path": "/dependencies/@scope~1a"`)
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON))

	var parsed struct {
		Target      string            `json:"target"`
		Version     string            `json:"version"`
		Resolutions map[string]string `json:"resolutions"`
		Removed     []Removal         `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "mosaic-1", parsed.Target)
	assert.Equal(t, "1.5.0", parsed.Version)
	assert.Len(t, parsed.Resolutions, 2)
	assert.Len(t, parsed.Removed, 1)

	// Resolutions keep module order in the JSON document
	out := buf.String()
	assert.Less(t, strings.Index(out, "@scope/a\""), strings.Index(out, "@scope/b\""))
}

func TestRender_Table(t *testing.T) {
	r := sampleReport()
	r.Findings = []Finding{{Section: "resolutions", Key: "foo", Message: "unexpected resolution"}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "PATTERN")
	assert.Contains(t, out, "*/**/@scope/a")
	assert.Contains(t, out, "SPECIFIER")
	assert.Contains(t, out, "unexpected resolution")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, sampleReport(), "xml"))
	assert.False(t, ValidFormat("xml"))
	assert.True(t, ValidFormat(FormatTable))
}

func TestNewReport(t *testing.T) {
	res := &Result{
		Target:        "mosaic-1",
		ManifestPath:  "/w/mosaic-1/package.json",
		SourceVersion: "1.4.7",
		Version:       "1.5.0",
		Overrides:     BuildOverrideMap([]string{"@scope/a"}, "1.5.0"),
	}

	r := NewReport(res)
	assert.Equal(t, "mosaic-1", r.Target)
	assert.Equal(t, "/w/mosaic-1/package.json", r.Manifest)
	assert.NotNil(t, r.Removed)
	assert.Equal(t, 1, r.Resolutions.Len())
}
