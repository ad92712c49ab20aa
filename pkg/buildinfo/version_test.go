package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFrom(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	tests := []struct {
		name        string
		version     string
		info        debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "module build",
			version:     "dev",
			info:        debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}, Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}}},
			wantVersion: "v0.3.1",
			wantCommit:  "abc123",
		},
		{
			name:        "devel build keeps default",
			version:     "dev",
			info:        debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVersion: "dev",
			wantCommit:  "none",
		},
		{
			name:        "ldflags win",
			version:     "v1.0.0",
			info:        debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}},
			wantVersion: "v1.0.0",
			wantCommit:  "none",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, "none", "unknown"
			fillFrom(&tt.info)
			if Version != tt.wantVersion || Commit != tt.wantCommit {
				t.Errorf("got %s/%s, want %s/%s", Version, Commit, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} "+Version) {
		t.Errorf("Template() = %q", got)
	}
	if UserAgent() != "corkboard/"+Version {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
