// Package buildinfo provides build-time version information.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Name is the program name reported by version output.
const Name = "sysvalidator"

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

var (
	vcsOnce     sync.Once
	vcsRevision string
	vcsTime     string
)

// readVCS picks up the revision stamped by "go build" in a checkout.
func readVCS() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			vcsRevision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}
}

// Get returns the build information.
func Get() Info {
	vcsOnce.Do(readVCS)

	info := Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "unknown" && vcsRevision != "" {
		info.Commit = vcsRevision
	}
	if info.BuildTime == "unknown" && vcsTime != "" {
		info.BuildTime = vcsTime
	}
	return info
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Name + " " + info.Version + " (" + info.Commit + ") built at " + info.BuildTime
}
