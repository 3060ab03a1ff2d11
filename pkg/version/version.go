// Package version reports build information injected with -ldflags -X.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const unknown = "unknown"

// Build-time variables that can be set via ldflags
var (
	Version   = "0.1.0"
	GitCommit = unknown
	BuildDate = unknown
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns build information. When the commit was not injected it falls
// back to the VCS revision recorded by the Go toolchain.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info.GitCommit == unknown {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					info.GitCommit = s.Value
				}
			}
		}
	}
	return info
}

// ShortCommit returns the first seven characters of the commit hash.
func (b BuildInfo) ShortCommit() string {
	if len(b.GitCommit) > 7 {
		return b.GitCommit[:7]
	}
	return b.GitCommit
}

// String formats the build information for the version command.
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "linduino version %s", b.Version)
	if b.GitCommit != unknown {
		fmt.Fprintf(&sb, " (commit %s)", b.ShortCommit())
	}
	if b.BuildDate != unknown {
		fmt.Fprintf(&sb, "\nBuilt: %s", b.BuildDate)
	}
	fmt.Fprintf(&sb, "\nGo: %s\nPlatform: %s", b.GoVersion, b.Platform)
	return sb.String()
}
