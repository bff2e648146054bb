package systems

import "fightschool-server/internal/domain"

// Outcome - итог state_check. Поражение проверяется раньше победы.
func Outcome(s *domain.Session) domain.Outcome {
	if s.AllParticipantsDead() {
		return domain.OutcomeDefeat
	}
	if s.AllEnemiesDefeated() {
		return domain.OutcomeVictory
	}
	return domain.OutcomeContinue
}
