// Package buildinfo holds version metadata stamped in at link time.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/cleared-dev/ledgr/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build metadata for --version and startup logs.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
