package resolutions

import (
	"fmt"
	"sort"

	"github.com/fulmenhq/yarnpin/pkg/manifest"
)

// Finding is one way a manifest deviates from the expected pinning.
type Finding struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s[%q]: %s", f.Section, f.Key, f.Message)
}

// Verify checks that m is already pinned to overrides: every pattern present with
// the expected version, no other resolution keys, and no module declared
// directly. An empty result means the manifest is pinned.
func Verify(m *manifest.Manifest, overrides OverrideMap, modules []string) []Finding {
	var findings []Finding

	current := m.Section(manifest.SectionResolutions)
	if !m.Has(manifest.SectionResolutions) {
		findings = append(findings, Finding{
			Section: manifest.SectionResolutions,
			Message: "section missing",
		})
	}

	for _, o := range overrides.Entries() {
		got, ok := current[o.Pattern]
		switch {
		case !ok:
			findings = append(findings, Finding{
				Section: manifest.SectionResolutions,
				Key:     o.Pattern,
				Message: fmt.Sprintf("missing, want %s", o.Version),
			})
		case got != o.Version:
			findings = append(findings, Finding{
				Section: manifest.SectionResolutions,
				Key:     o.Pattern,
				Message: fmt.Sprintf("pinned to %s, want %s", got, o.Version),
			})
		}
	}

	extras := make([]string, 0)
	for key := range current {
		if _, ok := overrides.Get(key); !ok {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		findings = append(findings, Finding{
			Section: manifest.SectionResolutions,
			Key:     key,
			Message: "unexpected resolution",
		})
	}

	for _, section := range directSections {
		entries := m.Section(section)
		seen := make(map[string]bool, len(modules))
		for _, module := range modules {
			if seen[module] {
				continue
			}
			seen[module] = true
			if specifier, ok := entries[module]; ok {
				findings = append(findings, Finding{
					Section: section,
					Key:     module,
					Message: fmt.Sprintf("declared directly as %s", specifier),
				})
			}
		}
	}

	return findings
}
