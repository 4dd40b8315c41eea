package resolutions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/fulmenhq/yarnpin/pkg/manifest"
)

// Sections stripped of pinned modules, in the order they are processed.
var directSections = []string{manifest.SectionDevDependencies, manifest.SectionDependencies}

// Operation is a single RFC 6902 JSON Patch operation.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Removal records a direct declaration dropped from the manifest.
type Removal struct {
	Section   string `json:"section"`
	Module    string `json:"module"`
	Specifier string `json:"specifier"`
}

// Plan is the set of edits that pins a manifest.
type Plan struct {
	Operations []Operation `json:"operations"`
	Removed    []Removal   `json:"removed"`
}

// Document returns the plan as an RFC 6902 patch document.
func (p Plan) Document() ([]byte, error) {
	ops := p.Operations
	if ops == nil {
		ops = []Operation{}
	}
	return marshalNoEscape(ops)
}

// PlanPatch computes the edits that replace the resolutions section with
// overrides and drop every module from dependencies and devDependencies.
func PlanPatch(m *manifest.Manifest, overrides OverrideMap, modules []string) (Plan, error) {
	var plan Plan

	for _, section := range directSections {
		entries := m.Section(section)
		if len(entries) == 0 {
			continue
		}

		var removed []Removal
		pinned := make(map[string]bool, len(modules))
		for _, module := range modules {
			specifier, ok := entries[module]
			if !ok || pinned[module] {
				continue
			}
			pinned[module] = true
			removed = append(removed, Removal{Section: section, Module: module, Specifier: specifier})
		}
		if len(removed) == 0 {
			continue
		}
		plan.Removed = append(plan.Removed, removed...)

		keys := m.SectionKeys(section)
		if len(keys) != len(entries) {
			// A repeated key cannot be removed member by member, so the section
			// is rewritten with the last value of each key at its first position.
			value, err := encodeSection(keys, entries, pinned)
			if err != nil {
				return Plan{}, fmt.Errorf("failed to encode %s: %w", section, err)
			}
			plan.Operations = append(plan.Operations, Operation{Op: "add", Path: pointer(section), Value: value})
			continue
		}
		for _, rm := range removed {
			plan.Operations = append(plan.Operations, Operation{Op: "remove", Path: pointer(section, rm.Module)})
		}
	}

	value, err := overrides.MarshalJSON()
	if err != nil {
		return Plan{}, fmt.Errorf("failed to encode resolutions: %w", err)
	}
	// add replaces an existing member in place, so prior content is discarded
	plan.Operations = append(plan.Operations, Operation{
		Op:    "add",
		Path:  pointer(manifest.SectionResolutions),
		Value: value,
	})

	return plan, nil
}

// Patch returns a new manifest with overrides applied. The input is not modified.
// Keys outside the touched sections keep their order; output uses indent
// ("" for compact) and ends with a newline.
func Patch(m *manifest.Manifest, overrides OverrideMap, modules []string, indent string) (*manifest.Manifest, Plan, error) {
	plan, err := PlanPatch(m, overrides, modules)
	if err != nil {
		return nil, Plan{}, err
	}

	doc, err := plan.Document()
	if err != nil {
		return nil, Plan{}, fmt.Errorf("failed to encode patch: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(doc)
	if err != nil {
		return nil, Plan{}, fmt.Errorf("failed to decode patch: %w", err)
	}

	// Scripts such as "tsc && jest" must be written back verbatim.
	opts := jsonpatch.NewApplyOptions()
	opts.EscapeHTML = false

	var out []byte
	if indent == "" {
		out, err = patch.ApplyWithOptions(m.Bytes(), opts)
	} else {
		out, err = patch.ApplyIndentWithOptions(m.Bytes(), indent, opts)
	}
	if err != nil {
		return nil, Plan{}, fmt.Errorf("failed to apply patch to %s: %w", m.Path(), err)
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	patched, err := m.WithContent(out)
	if err != nil {
		return nil, Plan{}, err
	}
	return patched, plan, nil
}

// pointer builds a JSON pointer from unescaped reference tokens.
func pointer(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(escapeToken(t))
	}
	return b.String()
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeToken(t string) string {
	return tokenEscaper.Replace(t)
}

// encodeSection renders a string mapping in keys order, skipping repeated keys
// and the dropped ones.
func encodeSection(keys []string, entries map[string]string, drop map[string]bool) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(entries))
	for _, key := range keys {
		if written[key] || drop[key] {
			continue
		}
		if len(written) > 0 {
			buf.WriteByte(',')
		}
		written[key] = true
		if err := writeMember(&buf, key, entries[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeMember appends "key":"value" without HTML escaping.
func writeMember(buf *bytes.Buffer, key, value string) error {
	k, err := marshalNoEscape(key)
	if err != nil {
		return err
	}
	v, err := marshalNoEscape(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshalNoEscape is json.Marshal without HTML escaping.
func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
