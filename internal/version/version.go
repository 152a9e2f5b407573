// Package version carries build metadata injected via -ldflags.
package version

import "fmt"

var (
	// Version is the current application version.
	// Set at build time with -X github.com/ManuGH/custd/internal/version.Version=...
	Version = "v0.1.0-dev"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the one-line form printed by `custd version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
