package cmd

import (
	"errors"

	"github.com/fulmenhq/yarnpin/pkg/config"
	"github.com/fulmenhq/yarnpin/pkg/exitcode"
	"github.com/fulmenhq/yarnpin/pkg/manifest"
	"github.com/fulmenhq/yarnpin/pkg/resolutions"
)

// errVerifyFailed reports a manifest that does not match the expected pinning.
var errVerifyFailed = errors.New("manifest is not pinned as expected")

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, resolutions.ErrMissingArgument), errors.Is(err, config.ErrInvalidConfig):
		return exitcode.ConfigError
	case manifest.IsNotFound(err), errors.Is(err, manifest.ErrIOFailure):
		return exitcode.FileSystemError
	case manifest.IsMalformed(err),
		errors.Is(err, resolutions.ErrMalformedVersion),
		errors.Is(err, errVerifyFailed):
		return exitcode.ValidationError
	default:
		return exitcode.GeneralError
	}
}
