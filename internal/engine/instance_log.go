package engine

import (
	"time"

	"github.com/sirupsen/logrus"
)

const maxRecentLogs = 50

// LogLine - строка лога сессии для /debug
type LogLine struct {
	Round     int    `json:"round"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// AddLog добавляет строку в историю сессии (хранятся последние maxRecentLogs)
func (i *Instance) AddLog(text, logType string) {
	i.recent = append(i.recent, LogLine{
		Round:     i.Session.Round,
		Type:      logType,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
	if len(i.recent) > maxRecentLogs {
		i.recent = i.recent[len(i.recent)-maxRecentLogs:]
	}
	i.log.WithFields(logrus.Fields{
		"component": "session_log",
		"log_type":  logType,
		"round":     i.Session.Round,
	}).Debug(text)
}

// RecentLogs - копия последних строк лога
func (i *Instance) RecentLogs() ([]LogLine, error) {
	var out []LogLine
	err := i.call(func() { out = append([]LogLine(nil), i.recent...) })
	return out, err
}
