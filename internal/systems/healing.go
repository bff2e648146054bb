package systems

import (
	"fightschool-server/internal/domain"
	"fightschool-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ApplyHeal лечит цель сразу в момент выбора (в фазе abilities, а не при резолве).
// Возвращает фактически вылеченное здоровье.
func ApplyHeal(healer, target *domain.Combatant) int {
	if healer.HealApplied {
		return 0
	}
	amount := HealAmount(healer.Attributes)
	healed := target.Heal(amount)

	healer.IsHealing = true
	healer.HealTargetID = target.ID
	healer.HealApplied = true
	healer.HealedAmount = healed
	healer.HealingDone += healed
	healer.Threat += HealThreat(healed)

	logger.Log.WithFields(logrus.Fields{
		"component":  "healing_system",
		"healer_id":  healer.ID,
		"target_id":  target.ID,
		"heal_power": amount,
		"healed":     healed,
		"target_hp":  target.Health,
	}).Debug("Heal applied.")

	return healed
}

// EvaluateAnswers отмечает правильность ответов в конце фазы question.
// Счетчики вопросов обновляет резолвер.
func EvaluateAnswers(s *domain.Session, q domain.Question) {
	for _, c := range s.Ordered() {
		c.IsCorrect = c.IsAlive() && c.HasAnswered && q.IsCorrect(c.Answer)
	}
}

// ApplyLockedHeals применяет лечение, выбранное вместе с ответом.
// Ошибившиеся хилеры не лечат.
func ApplyLockedHeals(s *domain.Session) []string {
	var applied []string
	for _, c := range s.Living() {
		if !c.IsHealing || c.HealApplied {
			continue
		}
		if !c.IsCorrect || RoleOf(c) != domain.RoleHealer {
			c.IsHealing = false
			c.HealTargetID = ""
			continue
		}
		target := s.LivingParticipant(c.HealTargetID)
		if target == nil {
			// Цель умерла или не выбрана - дозаполнит авто-таргет
			c.HealTargetID = ""
			continue
		}
		ApplyHeal(c, target)
		applied = append(applied, c.ID)
	}
	return applied
}
