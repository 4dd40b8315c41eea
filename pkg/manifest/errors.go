package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestNotFound indicates a source or target manifest does not exist.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrMalformedManifest indicates a manifest is not valid JSON or lacks required fields.
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrIOFailure indicates the patched manifest could not be written.
	ErrIOFailure = errors.New("io failure")
)

// ManifestError ties one of the sentinel kinds above to the file it concerns
// and the underlying cause. errors.Is matches both the kind and the cause.
type ManifestError struct {
	Path string
	Kind error
	Err  error
}

func (e *ManifestError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ManifestError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(path string, kind, err error) *ManifestError {
	return &ManifestError{Path: path, Kind: kind, Err: err}
}

// IsNotFound reports whether err is, or wraps, ErrManifestNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrManifestNotFound) }

// IsMalformed reports whether err is, or wraps, ErrMalformedManifest.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformedManifest) }
