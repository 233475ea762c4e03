// Package misc provides program identification helpers.
package misc

import (
	"runtime/debug"
)

const appName = "texsvg"

// set at build time via -ldflags when building outside of module context
var (
	version = ""
	gitHash = ""
)

// GetAppName returns short program name used in logs and temporary file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version - either set during build or derived
// from the module build info.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 {
		return bi.Main.Version
	}
	return "devel"
}

// GetGitHash returns vcs revision recorded in the build info.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
