package version

import (
	"strings"
	"testing"
)

func TestInfoShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev", Info{Version: "dev"}, "dev"},
		{"with commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.want {
				t.Errorf("Short() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInfoIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0-dirty"}, false},
		{Info{Version: "1.0.0", Dirty: true}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v IsRelease() = %v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "1.2.0", GitCommit: "abc1234", BuildTime: "2026-01-15T10:30:00Z", GoVersion: "go1.26.0"}.String()
	for _, want := range []string{"tabprofile 1.2.0-abc1234", "built 2026-01-15T10:30:00Z", "go1.26.0"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}

func TestGetUsesLinkedValues(t *testing.T) {
	origVersion, origCommit, origBuild := Version, GitCommit, BuildTime
	defer func() { Version, GitCommit, BuildTime = origVersion, origCommit, origBuild }()

	Version = "2.0.0"
	GitCommit = "deadbeefcafe"
	BuildTime = "2026-02-01T00:00:00Z"

	info := Get()
	if info.Version != "2.0.0" {
		t.Errorf("expected version 2.0.0, got %q", info.Version)
	}
	if info.GitCommit != "deadbee" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-02-01T00:00:00Z" {
		t.Errorf("expected linked build time, got %q", info.BuildTime)
	}
	if !strings.HasPrefix(Short(), "2.0.0-deadbee") {
		t.Errorf("unexpected short version %q", Short())
	}
}
