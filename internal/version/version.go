package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time. Empty falls back to VCS build info.
	Commit = ""
	// BuildTime is the UTC build timestamp embedded at build time. Empty falls back to VCS build info.
	BuildTime = ""
)

// shortCommitLength is how many characters of a VCS revision are shown.
const shortCommitLength = 12

// Info is the build metadata of the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// Current returns the build metadata. Values missing from ldflags are read
// from the VCS stamp of the Go build info when available.
func Current() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value[:min(len(s.Value), shortCommitLength)]
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Commit == "" {
		info.Commit = "none"
	}

	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}

	return info
}

// String renders the metadata on one line.
func (i Info) String() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s, %s", i.Version, i.Commit, i.BuildTime, i.GoVersion)
}

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return Current().String()
}
