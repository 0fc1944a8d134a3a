package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name       string
		info       Info
		bi         debug.BuildInfo
		wantVer    string
		wantCommit string
	}{
		{
			name:       "module version fills dev",
			info:       Info{Version: "dev", Commit: "unknown", Date: "unknown"},
			bi:         debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}},
			wantVer:    "v1.2.3",
			wantCommit: "unknown",
		},
		{
			name:       "devel build keeps dev",
			info:       Info{Version: "dev", Commit: "unknown", Date: "unknown"},
			bi:         debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVer:    "dev",
			wantCommit: "unknown",
		},
		{
			name: "ldflags win",
			info: Info{Version: "0.4.0", Commit: "abcdef1234", Date: "2025-01-01T00:00:00Z"},
			bi: debug.BuildInfo{
				Main:     debug.Module{Version: "v9.9.9"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffff"}},
			},
			wantVer:    "0.4.0",
			wantCommit: "abcdef1234",
		},
		{
			name: "vcs settings fill unknowns",
			info: Info{Version: "dev", Commit: "unknown", Date: "unknown"},
			bi: debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.time", Value: "2025-06-01T12:00:00Z"},
			}},
			wantVer:    "dev",
			wantCommit: "0123456789abcdef",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			fromBuildInfo(&info, &tt.bi)
			if info.Version != tt.wantVer {
				t.Errorf("Version = %q, want %q", info.Version, tt.wantVer)
			}
			if info.Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", info.Commit, tt.wantCommit)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	if !strings.HasPrefix(String(), "palettesniffer version ") {
		t.Errorf("String() = %q", String())
	}
	if got := UserAgent(); got != "palettesniffer/"+Short() {
		t.Errorf("UserAgent() = %q, want palettesniffer/%s", got, Short())
	}
}
