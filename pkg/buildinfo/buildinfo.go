// Package buildinfo holds version metadata injected at build time.
package buildinfo

import "fmt"

// Build metadata, overridden via ldflags:
//
//	go build -ldflags "-X github.com/numflow/numflow/pkg/buildinfo.Version=v1.2.3"
var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Template returns the version template used by the root command.
func Template() string {
	return fmt.Sprintf("numflow %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
