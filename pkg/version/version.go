// Package version exposes the coherence engine's build version, logged once
// at engine startup (pkg/coherence.NewEngine) so that which build produced a
// given run of alerts is recoverable from the logs alone.
//
// Go 1.18+ automatically embeds VCS info (git commit, dirty flag, etc.)
// into the binary via runtime/debug.BuildInfo. No -ldflags required.
//
// Usage:
//
//	version.GitCommit  // "a3f8c2d1" or "dev"
//	version.Full()     // "coherence-engine/a3f8c2d1" or "coherence-engine/dev"
package version

import "runtime/debug"

// AppName is the application name used in version strings and log output.
const AppName = "coherence-engine"

// GitCommit is the short git commit hash (8 chars) from build info.
// Set to "dev" when build info is unavailable (e.g., `go test`, non-git builds).
var GitCommit = initGitCommit()

func initGitCommit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 8 {
				return s.Value[:8]
			}
			return s.Value
		}
	}
	return "dev"
}

// Full returns "coherence-engine/<commit>" for use in logging, etc.
func Full() string {
	return AppName + "/" + GitCommit
}
