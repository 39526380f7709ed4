// Copyright 2026, the sircel contributors.

package collab

import "github.com/pkg/profile"

// StartCPUProfile starts a CPU profile writing to dir when enabled is
// true, returning a stop function that is always safe to call
// (including when profiling was never started).
func StartCPUProfile(enabled bool, dir string) func() {
	if !enabled {
		return func() {}
	}
	p := profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet)
	return p.Stop
}
