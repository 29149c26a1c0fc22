// Package version holds build metadata set via ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/webtree/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String formats the build metadata for --version output.
func String() string {
	return fmt.Sprintf("webtree %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
