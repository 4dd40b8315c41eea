// Package exitcode provides standardized exit codes for yarnpin
package exitcode

// Exit codes for the yarnpin CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2 // missing target argument or unusable configuration
	ValidationError = 3 // malformed manifest, malformed version, failed verify
	FileSystemError = 4 // manifest not found or unreadable/unwritable
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	default:
		return "Unknown error"
	}
}
