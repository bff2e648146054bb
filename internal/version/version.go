// Package version - сведения о сборке для /version и стартового лога.
// Значения задаются через -ldflags "-X fightschool-server/internal/version.BuildDate=...";
// без них коммит и ветка берутся из vcs-меток, которые go build кладет в бинарник.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

// Service - имя сервиса в /version и стартовом логе
const Service = "fightschool-server"

// Protocol - версия протокола сообщений WebSocket. Меняется при несовместимых правках pkg/api.
const Protocol = 1

// Номер сборки считается в днях от этой даты
var buildEpoch = time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

// readBuildInfo подменяется в тестах
var readBuildInfo = debug.ReadBuildInfo

type VersionInfo struct {
	Service   string `json:"service"`
	Protocol  int    `json:"protocol"`
	BuildID   int    `json:"buildId"`
	BuildDate string `json:"buildDate,omitempty"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch,omitempty"`
	CI        string `json:"ci"`
	GoVersion string `json:"goVersion,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BuildNumber - число дней между buildEpoch и датой сборки
func BuildNumber(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("build date is not set")
	}
	t, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("build date %s is before %s", date, buildEpoch.Format(time.DateOnly))
	}
	return int(t.Sub(buildEpoch) / (24 * time.Hour)), nil
}

// Info собирает сведения о сборке. Ошибка номера сборки не фатальна и попадает в поле Error.
func Info() VersionInfo {
	info := VersionInfo{
		Service:   Service,
		Protocol:  Protocol,
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		CI:        coalesce(BuildCI, "local"),
	}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}
	info.Commit = coalesce(info.Commit, "unknown")

	id, err := BuildNumber(BuildDate)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	return info
}

// String - строка для стартового лога
func String() string {
	info := Info()
	commit := info.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if info.Dirty {
		commit += "+dirty"
	}

	build := "dev"
	if info.Error == "" {
		build = fmt.Sprintf("#%d (%s)", info.BuildID, info.BuildDate)
	}
	return fmt.Sprintf("%s %s protocol v%d commit %s ci %s",
		info.Service, build, info.Protocol, commit, info.CI)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
