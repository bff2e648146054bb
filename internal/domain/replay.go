package domain

import "encoding/json"

// JournalEntry - одно принятое сессией входящее сообщение
type JournalEntry struct {
	Round         int             `json:"round"`
	ParticipantID string          `json:"participantId"` // Кто сделал
	Message       MessageType     `json:"message"`       // Что сделал
	Payload       json.RawMessage `json:"payload"`       // С какими параметрами
}

// Journal - полная запись боя
type Journal struct {
	SessionID string         `json:"sessionId"`
	FightID   string         `json:"fightId"`
	Seed      int64          `json:"seed"` // Зерно перемешивания вопросов и добычи
	Timestamp int64          `json:"timestamp"`
	Outcome   Outcome        `json:"outcome"`
	Entries   []JournalEntry `json:"entries"`
}
