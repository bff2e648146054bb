package handlers

import (
	"encoding/json"
	"fightschool-server/internal/domain"
)

// Context передает хендлеру состояние сессии.
// Хендлер вызывается только из горутины актора сессии, поэтому мутирует данные напрямую.
type Context struct {
	Session *domain.Session
	Actor   *domain.Combatant // Участник, приславший сообщение
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ рассылает состояние сам, он сообщает, что изменилось.
type Result struct {
	Msg     string // Текст для лога сессии
	Changed bool   // Состояние изменилось, нужна (отложенная) рассылка
}

// HandlerFunc - это контракт для любого намерения участника (answer, block, use_ability, ...).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// Changed - вспомогательная функция для успешного ответа с изменением состояния
func Changed(msg string) Result {
	return Result{Msg: msg, Changed: true}
}
