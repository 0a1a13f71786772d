// Package version holds the build information of vecart-deploy itself.
package version

import "runtime"

// Default build-time variable.
// These values are overridden via ldflags
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown-commit"
	BuildTime = "unknown-buildtime"
)

// String describes the running binary.
func String() string {
	return Version + " (" + GitCommit + ", " + runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
