package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestSetOverridesDefault(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	Set("")
	if version != old {
		t.Fatalf("empty Set changed version to %q", version)
	}
	Set("v1.2.3")
	if !strings.HasPrefix(Version(), "v1.2.3") {
		t.Fatalf("unexpected version %q", Version())
	}
}

func TestRevision(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}}}
	if got := revision(info); got != "0123456" {
		t.Fatalf("revision = %q", got)
	}
	if got := revision(&debug.BuildInfo{}); got != "" {
		t.Fatalf("revision without vcs = %q", got)
	}
}
