package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы исходящих сообщений
const (
	MsgSessionCreated     = "session_created"
	MsgJoined             = "joined"
	MsgCombatState        = "combat_state"
	MsgQuestion           = "question"
	MsgPhaseChange        = "phase_change"
	MsgPhaseTimer         = "phase_timer"
	MsgResolutionFeedback = "resolution_feedback"
	MsgPartyDamageSummary = "party_damage_summary"
	MsgEnemyAIAttack      = "enemy_ai_attack"
	MsgNextQuestion       = "next_question"
	MsgNextEnemy          = "next_enemy"
	MsgGameOver           = "game_over"
	MsgForceDisconnect    = "force_disconnect"
	MsgError              = "error"
)

// ServerMessage это корневой объект всех сообщений сервера.
// Какие поля заполнены, зависит от Type.
type ServerMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`

	// State полный снимок сессии (session_created, joined, combat_state, game_over)
	State *SessionView `json:"state,omitempty"`

	// Question текущий вопрос (question)
	Question *QuestionView `json:"question,omitempty"`

	// Phase метка фазы (phase_change, phase_timer)
	Phase            string `json:"phase,omitempty"`
	SecondsRemaining *int   `json:"secondsRemaining,omitempty"`

	// Feedback события раунда конкретного участника (resolution_feedback, только ему)
	Feedback []FeedbackView `json:"feedback,omitempty"`

	PartyDamage *PartyDamageView `json:"partyDamage,omitempty"`
	Attacks     []AttackView     `json:"attacks,omitempty"`

	// QuestionNumber порядковый номер следующего вопроса (next_question)
	QuestionNumber int `json:"questionNumber,omitempty"`

	// Enemy вышедший на поле враг (next_enemy)
	Enemy *EnemyView `json:"enemy,omitempty"`

	Victory *bool        `json:"victory,omitempty"`
	Rewards []RewardView `json:"rewards,omitempty"`

	// ParticipantID адресат сообщения (joined)
	ParticipantID string `json:"participantId,omitempty"`

	Reason string `json:"reason,omitempty"` // force_disconnect
	Error  string `json:"error,omitempty"`  // error
}

// SessionView это DTO снимка сессии. Правильные ответы сюда не попадают.
type SessionView struct {
	ID             string `json:"id"`
	FightID        string `json:"fightId"`
	Phase          string `json:"phase"`
	Round          int    `json:"round"`
	QuestionNumber int    `json:"questionNumber"`
	QuestionsAsked int    `json:"questionsAsked"`
	DisplayMode    string `json:"displayMode"`
	ThreatLeaderID string `json:"threatLeaderId,omitempty"`

	Participants []CombatantView `json:"participants"`
	Enemies      []EnemyView     `json:"enemies"`
	Defeated     []EnemyView     `json:"defeated,omitempty"`

	Solo *SoloView `json:"solo,omitempty"`
}

// SoloView флаги соло-режима
type SoloView struct {
	HostID      string `json:"hostId"`
	AIEnabled   bool   `json:"aiEnabled"`
	JoinBlocked bool   `json:"joinBlocked"`
}

// CombatantView это DTO участника
type CombatantView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Class   string `json:"class"`
	Role    string `json:"role"`
	Variant string `json:"variant,omitempty"`
	IsBot   bool   `json:"isBot,omitempty"`

	Health      int  `json:"health"`
	MaxHealth   int  `json:"maxHealth"`
	Mana        int  `json:"mana,omitempty"`
	MaxMana     int  `json:"maxMana,omitempty"`
	ComboPoints int  `json:"comboPoints,omitempty"`
	ComboCap    int  `json:"comboCap,omitempty"`
	Consumables int  `json:"consumables,omitempty"`
	IsDead      bool `json:"isDead"`

	HasAnswered     bool    `json:"hasAnswered"`
	IsCorrect       bool    `json:"isCorrect"`
	IsHealing       bool    `json:"isHealing,omitempty"`
	HealTargetID    string  `json:"healTargetId,omitempty"`
	BlockTargetID   string  `json:"blockTargetId,omitempty"`
	AbilityID       string  `json:"abilityId,omitempty"`
	TargetID        string  `json:"targetId,omitempty"`
	Charging        bool    `json:"charging,omitempty"`
	ChargeRounds    int     `json:"chargeRounds,omitempty"`
	HexEnemyID      string  `json:"hexEnemyId,omitempty"`
	Threat          float64 `json:"threat"`
	LastDamageDealt int     `json:"lastDamageDealt"`
	Level           int     `json:"level"`
	UltimateReady   bool    `json:"ultimateReady"`

	DamageDealt   int `json:"damageDealt"`
	DamageBlocked int `json:"damageBlocked"`
	DamageTaken   int `json:"damageTaken"`
	HealingDone   int `json:"healingDone"`
}

// EnemyView это DTO врага
type EnemyView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"maxHealth"`
}

// QuestionView вопрос без правильного ответа
type QuestionView struct {
	Number    int      `json:"number"`
	Body      string   `json:"body"`
	Choices   []string `json:"choices,omitempty"`
	TimeLimit int      `json:"timeLimit"`
	Shuffle   bool     `json:"shuffle"`
}

// FeedbackView одно событие обратной связи
type FeedbackView struct {
	Kind     string `json:"kind"`
	Amount   int    `json:"amount"`
	SourceID string `json:"sourceId,omitempty"`
	TargetID string `json:"targetId,omitempty"`
	Ability  string `json:"ability,omitempty"`
}

// PartyDamageView итог раунда для всей группы
type PartyDamageView struct {
	Total      int            `json:"total"`
	ByMember   map[string]int `json:"byMember"`
	Defeated   []string       `json:"defeated,omitempty"`
	EnemyTotal int            `json:"enemyHealthRemaining"`
}

// AttackView атака врага в фазе enemy_ai
type AttackView struct {
	EnemyID   string `json:"enemyId"`
	EnemyName string `json:"enemyName"`
	TargetID  string `json:"targetId"`
	BlockerID string `json:"blockerId,omitempty"`
	Damage    int    `json:"damage"`
	Blocked   bool   `json:"blocked"`
	Killed    bool   `json:"killed"`
}

// RewardView награда участника за победу
type RewardView struct {
	ParticipantID string `json:"participantId"`
	Experience    int    `json:"experience"`
	ItemID        string `json:"itemId,omitempty"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Type тип сообщения (host, join, answer, ...)
	Type string `json:"type"`

	// Payload JSON-объект с данными. Его структура зависит от Type.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// HostPayload - преподаватель запускает бой
type HostPayload struct {
	FightID   string `json:"fightId"`
	SessionID string `json:"sessionId,omitempty"` // переподключение к своей сессии
	HostID    string `json:"hostId,omitempty"`
}

// HostSoloPayload - участник запускает соло-бой
type HostSoloPayload struct {
	FightID       string `json:"fightId"`
	ParticipantID string `json:"participantId"`
	GuildID       string `json:"guildId,omitempty"`
	AIEnabled     *bool  `json:"aiEnabled,omitempty"` // по умолчанию true
}

// JoinPayload - участник входит в сессию (или переподключается)
type JoinPayload struct {
	ParticipantID string `json:"participantId"`
	SessionID     string `json:"sessionId"`
}

// AnswerPayload - ответ на вопрос. Хилер может сразу выбрать цель лечения.
type AnswerPayload struct {
	Text       string `json:"text"`
	IsHealing  bool   `json:"isHealing,omitempty"`
	HealTarget string `json:"healTarget,omitempty"`
}

// TargetPayload используется для block и heal
type TargetPayload struct {
	TargetID string `json:"targetId"`
}

// AbilityPayload - выбор способности (цель может прийти позже через select_target)
type AbilityPayload struct {
	AbilityID string `json:"abilityId"`
	TargetID  string `json:"targetId,omitempty"`
}

// SelectTargetPayload - цель для уже выбранной способности
type SelectTargetPayload struct {
	TargetID   string `json:"targetId"`
	TargetType string `json:"targetType,omitempty"`
}

// ChargePayload - включить/выключить накопление заряда
type ChargePayload struct {
	Enabled bool `json:"enabled"`
}

// UltimatePayload - применение ультимейта
type UltimatePayload struct {
	UltimateID string `json:"ultimateId"`
}
