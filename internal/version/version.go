// Package version reports the fleetctl build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = "unknown"
)

// String is the human-readable version line.
func String() string {
	return fmt.Sprintf("fleetctl %s (commit: %s, built: %s)", Version, revision(), BuildTime)
}

// UserAgent is sent with every backend request.
func UserAgent() string {
	return fmt.Sprintf("fleetctl/%s (%s)", Version, revision())
}

// revision prefers the ldflags commit, then the VCS stamp from go build.
func revision() string {
	rev := Commit
	if rev == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					rev = s.Value
				}
			}
		}
	}
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
