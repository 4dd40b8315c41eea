// Package versioning parses semantic versions and computes release increments.
//
// It is a thin wrapper around github.com/Masterminds/semver/v3 that accepts the
// same inputs npm's semver does: full MAJOR.MINOR.PATCH versions with optional
// prerelease and build metadata, an optional leading "v" or "=", and
// surrounding whitespace. Partial versions such as "1.2" are rejected.
package versioning

import (
	"errors"
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned for any input that is not a full semantic version.
var ErrInvalidVersion = errors.New("invalid semantic version")

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// Parse parses raw into a Version.
func Parse(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "=")
	trimmed = strings.TrimPrefix(trimmed, "v")
	if trimmed == "" {
		return Version{}, fmt.Errorf("%w: empty version", ErrInvalidVersion)
	}

	v, err := mm.StrictNewVersion(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("%w %q: %v", ErrInvalidVersion, raw, err)
	}
	return Version{v: v}, nil
}

// String returns the canonical form, without any "v" prefix.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Major, Minor and Patch return 0 for the zero Version.
func (v Version) Major() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Major()
}

func (v Version) Minor() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Minor()
}

func (v Version) Patch() uint64 {
	if v.v == nil {
		return 0
	}
	return v.v.Patch()
}

// Prerelease returns the prerelease tag, or "" for a release version.
func (v Version) Prerelease() string {
	if v.v == nil {
		return ""
	}
	return v.v.Prerelease()
}

// BumpMinor increments the minor version and resets patch.
// Prerelease and build metadata are always dropped, so 2.0.0-beta.1 bumps to 2.1.0.
// The zero Version bumps to 0.1.0.
func (v Version) BumpMinor() Version {
	base := v.v
	if base == nil {
		base = mm.New(0, 0, 0, "", "")
	}
	next := base.IncMinor()
	return Version{v: &next}
}

// NextMinor parses raw and returns the next minor release as a string.
func NextMinor(raw string) (string, error) {
	v, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return v.BumpMinor().String(), nil
}
