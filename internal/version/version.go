// Package version reports palettesniffer build information. Release builds
// inject values with ldflags; `go install` builds fall back to the module
// build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version, set with
	// -ldflags "-X github.com/jmylchreest/palettesniffer/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"
)

// Info holds all version information for the application.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns build information, filling unset values from the module
// build info when available.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fromBuildInfo(&info, bi)
	}
	return info
}

func fromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "unknown":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
}

// String returns a human-readable version string.
func String() string {
	info := GetInfo()
	if len(info.Commit) >= 8 && info.Date != "unknown" {
		return fmt.Sprintf("palettesniffer version %s (commit: %s, built: %s, %s, %s)",
			info.Version, info.Commit[:8], info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("palettesniffer version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
}

// Short returns the bare version for --version output.
func Short() string {
	return GetInfo().Version
}

// UserAgent returns the User-Agent sent with outbound requests.
func UserAgent() string {
	return "palettesniffer/" + GetInfo().Version
}
