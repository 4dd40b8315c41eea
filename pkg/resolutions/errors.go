package resolutions

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/yarnpin/pkg/versioning"
)

var (
	// ErrMissingArgument indicates no target folder was supplied.
	ErrMissingArgument = errors.New("missing target folder argument")

	// ErrMalformedVersion indicates the source version is not a semantic version.
	ErrMalformedVersion = errors.New("malformed version")
)

// ComputeOverrideVersion returns the next minor release after sourceVersion:
// minor+1, patch 0, no prerelease or build metadata.
//
// The virtual publish step publishes under this version, and conventional
// patch releases never use it, so it cannot collide with a real release.
func ComputeOverrideVersion(sourceVersion string) (string, error) {
	next, err := versioning.NextMinor(sourceVersion)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedVersion, err)
	}
	return next, nil
}
