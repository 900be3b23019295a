// Package version holds build metadata of the infodesa binary, injected at
// link time:
//
//	go build -ldflags "-X github.com/ngipak/infodesa/internal/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime"
)

// Name is the service name reported by the API.
const Name = "infodesa"

// Set via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the one-line description printed by "infodesa version".
func Info() string {
	return fmt.Sprintf("InfoDesa %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, runtime.Version())
}

// Short returns just the version, e.g. "1.2.0" or "dev".
func Short() string {
	return Version
}

// Map returns build metadata for the health endpoint.
func Map() map[string]string {
	return map[string]string{
		"service":    Name,
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}
}
