// Package version reports the build of stylus-replay: the release it was tagged as and, when the binary was built
// from a checkout, the VCS state Go embedded in it.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Version is the release of the build. It, and Commit, can be overridden with -ldflags "-X".
var Version = "0.3.0"

// Commit is the git revision the binary was built from. Empty means it is read from the embedded build info.
var Commit = ""

// Info describes a build.
type Info struct {
	Version    string
	Commit     string
	CommitTime time.Time
	Dirty      bool
	GoVersion  string
}

// GetInfo returns the version of the running binary.
func GetInfo() Info {
	info := Info{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
	if build, ok := debug.ReadBuildInfo(); ok {
		info.applySettings(build.Settings)
	}
	return info
}

// applySettings fills the VCS fields from the build settings. An explicit commit takes precedence.
func (i *Info) applySettings(settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if i.Commit == "" {
				i.Commit = setting.Value
			}
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				i.CommitTime = t
			}
		case "vcs.modified":
			i.Dirty = setting.Value == "true"
		}
	}
}

// revision returns the abbreviated commit, suffixed when the tree was dirty.
func (i Info) revision() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit != "" && i.Dirty {
		commit += "-dirty"
	}
	return commit
}

// Short returns the version on one line, e.g. 0.3.0+1a2b3c4.
func (i Info) Short() string {
	if rev := i.revision(); rev != "" {
		return i.Version + "+" + rev
	}
	return i.Version
}

// String returns the version on several lines, as printed by the version command.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stylus-replay version %s\n", i.Version)
	if rev := i.revision(); rev != "" {
		fmt.Fprintf(&sb, "  Commit:     %s\n", rev)
	}
	if !i.CommitTime.IsZero() {
		fmt.Fprintf(&sb, "  Built:      %s\n", i.CommitTime.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	return sb.String()
}
