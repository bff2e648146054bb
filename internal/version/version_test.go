package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestBuildNumber(t *testing.T) {
	tests := []struct {
		date    string
		want    int
		wantErr bool
	}{
		{date: "2026-01-12", want: 0},
		{date: "2026-01-13", want: 1},
		{date: "2027-01-12", want: 365},
		{date: "2028-03-01", want: 779}, // 2028 високосный
		{date: "2026-01-11", wantErr: true},
		{date: "12.01.2026", wantErr: true},
		{date: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := BuildNumber(tt.date)
		if tt.wantErr {
			if err == nil {
				t.Errorf("BuildNumber(%q) = %d, want error", tt.date, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("BuildNumber(%q): %v", tt.date, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BuildNumber(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

// withBuild подменяет глобальные переменные сборки на время теста
func withBuild(t *testing.T, date, commit string, settings ...debug.BuildSetting) {
	t.Helper()
	oldDate, oldCommit, oldRead := BuildDate, BuildCommit, readBuildInfo
	t.Cleanup(func() { BuildDate, BuildCommit, readBuildInfo = oldDate, oldCommit, oldRead })

	BuildDate, BuildCommit = date, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{GoVersion: "go1.22.4", Settings: settings}, true
	}
}

func TestInfo_UsesVCSWhenCommitNotLinked(t *testing.T) {
	withBuild(t, "2026-02-01", "",
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	)

	info := Info()
	if info.Commit != "0123456789abcdef0123" || !info.Dirty {
		t.Errorf("commit=%q dirty=%v", info.Commit, info.Dirty)
	}
	if info.BuildID != 20 || info.Error != "" {
		t.Errorf("build id=%d err=%q", info.BuildID, info.Error)
	}
	if info.GoVersion != "go1.22.4" || info.Protocol != Protocol {
		t.Errorf("go=%q protocol=%d", info.GoVersion, info.Protocol)
	}

	s := String()
	if !strings.Contains(s, "commit 0123456789ab+dirty") || !strings.Contains(s, "#20") {
		t.Errorf("String() = %q", s)
	}
}

func TestInfo_LinkedCommitWins(t *testing.T) {
	withBuild(t, "", "release-sha", debug.BuildSetting{Key: "vcs.revision", Value: "other"})

	info := Info()
	if info.Commit != "release-sha" {
		t.Errorf("commit = %q, want linked value", info.Commit)
	}
	if info.Error == "" {
		t.Error("missing build date should be reported")
	}
	if !strings.Contains(String(), "dev") {
		t.Errorf("String() = %q, want dev build", String())
	}
}
