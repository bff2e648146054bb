package domain

import "strings"

// MessageType - внутренний числовой идентификатор входящего сообщения клиента
type MessageType uint8

const (
	MessageUnknown MessageType = iota
	MessageHost
	MessageHostSolo
	MessageJoin
	MessageStartFight
	MessageEndFight
	MessageAnswer
	MessageBlock
	MessageHeal
	MessageDeclineHealing
	MessageUseAbility
	MessageSelectTarget
	MessageCreateConsumable
	MessageToggleCharge
	MessageUseUltimate
)

// Маппинг для конвертации JSON -> Domain
var messageStringToType = map[string]MessageType{
	"host":              MessageHost,
	"host_solo":         MessageHostSolo,
	"join":              MessageJoin,
	"start_fight":       MessageStartFight,
	"end_fight":         MessageEndFight,
	"answer":            MessageAnswer,
	"block":             MessageBlock,
	"heal":              MessageHeal,
	"decline_healing":   MessageDeclineHealing,
	"use_ability":       MessageUseAbility,
	"select_target":     MessageSelectTarget,
	"create_consumable": MessageCreateConsumable,
	"toggle_charge":     MessageToggleCharge,
	"use_ultimate":      MessageUseUltimate,
}

// Маппинг для логов Domain -> String
var messageTypeToString = func() map[MessageType]string {
	m := make(map[MessageType]string, len(messageStringToType))
	for k, v := range messageStringToType {
		m[v] = k
	}
	return m
}()

// ParseMessage конвертирует строку из JSON в MessageType
func ParseMessage(s string) MessageType {
	// Делаем нечувствительным к регистру для надежности
	lower := strings.ToLower(strings.TrimSpace(s))
	if val, ok := messageStringToType[lower]; ok {
		return val
	}
	return MessageUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (m MessageType) String() string {
	if val, ok := messageTypeToString[m]; ok {
		return val
	}
	return "unknown"
}

// IsRegistry true для сообщений, которые обрабатывает реестр сессий, а не сама сессия
func (m MessageType) IsRegistry() bool {
	return m == MessageHost || m == MessageHostSolo || m == MessageJoin
}

// AllowedIn возвращает фазу, в которой сообщение имеет смысл.
// Сообщения вне своей фазы молча отбрасываются.
func (m MessageType) AllowedIn() Phase {
	switch m {
	case MessageAnswer:
		return PhaseQuestion
	case MessageStartFight:
		return PhaseWaiting
	case MessageBlock, MessageHeal, MessageDeclineHealing, MessageUseAbility,
		MessageSelectTarget, MessageCreateConsumable, MessageToggleCharge, MessageUseUltimate:
		return PhaseAbilities
	}
	return ""
}
