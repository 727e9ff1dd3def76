// Package version holds build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for the version command and startup logs.
func String() string {
	return fmt.Sprintf("monty %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
