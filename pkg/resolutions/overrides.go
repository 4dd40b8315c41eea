// Package resolutions computes yarn resolution overrides for a fixed set of
// modules and applies them to a package manifest.
package resolutions

import (
	"bytes"
	"encoding/json"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatternPrefix makes a resolution apply to a module at any depth below
// the top level of the dependency graph.
const DefaultPatternPrefix = "*/**/"

// Override is one resolution entry.
type Override struct {
	Pattern string `json:"pattern"`
	Module  string `json:"module"`
	Version string `json:"version"`
}

// OverrideMap is an insertion-ordered pattern -> version mapping.
type OverrideMap struct {
	entries []Override
	index   map[string]int
}

// PatternFor returns the resolution key for module.
func PatternFor(prefix, module string) string {
	return prefix + module
}

// ValidPattern reports whether pattern is a well-formed glob.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

// BuildOverrideMap pins every module to version using DefaultPatternPrefix.
func BuildOverrideMap(modules []string, version string) OverrideMap {
	return BuildOverrideMapWithPrefix(DefaultPatternPrefix, modules, version)
}

// BuildOverrideMapWithPrefix pins every module to version. Entries follow the
// order of modules; a repeated module overwrites the earlier entry in place.
func BuildOverrideMapWithPrefix(prefix string, modules []string, version string) OverrideMap {
	m := OverrideMap{
		entries: make([]Override, 0, len(modules)),
		index:   make(map[string]int, len(modules)),
	}
	for _, module := range modules {
		m.set(Override{Pattern: PatternFor(prefix, module), Module: module, Version: version})
	}
	return m
}

func (m *OverrideMap) set(o Override) {
	if i, ok := m.index[o.Pattern]; ok {
		m.entries[i] = o
		return
	}
	m.index[o.Pattern] = len(m.entries)
	m.entries = append(m.entries, o)
}

// Len returns the number of entries.
func (m OverrideMap) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in insertion order.
func (m OverrideMap) Entries() []Override {
	return append([]Override(nil), m.entries...)
}

// Get returns the version pinned for pattern.
func (m OverrideMap) Get(pattern string) (string, bool) {
	i, ok := m.index[pattern]
	if !ok {
		return "", false
	}
	return m.entries[i].Version, true
}

// Covers returns the first entry whose pattern matches a slash-separated
// dependency path such as "app/node_modules/@scope/name".
func (m OverrideMap) Covers(depPath string) (Override, bool) {
	for _, o := range m.entries {
		if ok, err := doublestar.Match(o.Pattern, depPath); err == nil && ok {
			return o, true
		}
	}
	return Override{}, false
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m OverrideMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, o := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, o.Pattern, o.Version); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indented renders the map as indented JSON, as printed in build logs.
func (m OverrideMap) Indented(indent string) ([]byte, error) {
	raw, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
