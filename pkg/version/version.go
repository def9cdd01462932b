// Package version reports the build string of the cellar binaries.
package version

import "runtime/debug"

var version = "dev"

// Version returns the module version from build info when the binary was
// installed from a tagged module, the ldflags/Set value otherwise, with the
// short VCS revision appended when known.
func Version() string {
	v := version
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if info.Main.Sum != "" && info.Main.Version != "" {
		v = info.Main.Version
	}
	if rev := revision(info); rev != "" {
		v += "+" + rev
	}
	return v
}

// Set assigns the exported version when ldflags are not provided (e.g. local dev).
func Set(v string) {
	if v != "" {
		version = v
	}
}

func revision(info *debug.BuildInfo) string {
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}
