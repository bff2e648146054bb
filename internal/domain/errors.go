package domain

import "errors"

// Not-found: клиенту уходит сообщение error, частичное состояние не создается
var (
	ErrFightNotFound   = errors.New("fight not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrNoQuestions     = errors.New("fight has no questions")
	ErrNoEnemies       = errors.New("fight has no enemies")
)

// Нарушения предусловий: сообщение молча отбрасывается
var (
	ErrJoinBlocked   = errors.New("session does not accept joiners")
	ErrWrongPhase    = errors.New("action not allowed in current phase")
	ErrPhaseLatched  = errors.New("phase already ended")
	ErrActorDead     = errors.New("actor is dead")
	ErrNotEligible   = errors.New("actor is not eligible for this action")
	ErrNoResource    = errors.New("insufficient resource")
	ErrInvalidTarget = errors.New("invalid target")
	ErrNotHost       = errors.New("only the host can do this")
)

// IsPrecondition - ошибка из-за гонки клиента и таймера, ответ клиенту не нужен
func IsPrecondition(err error) bool {
	for _, e := range []error{ErrJoinBlocked, ErrWrongPhase, ErrPhaseLatched, ErrActorDead,
		ErrNotEligible, ErrNoResource, ErrInvalidTarget, ErrNotHost} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
