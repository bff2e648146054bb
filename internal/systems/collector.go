package systems

import "fightschool-server/internal/domain"

// abilityComplete - способность выбрана и, если ей нужна цель, цель тоже выбрана
func abilityComplete(p *domain.PendingAction) bool {
	if p.IsEmpty() {
		return false
	}
	def := Ability(p.AbilityID)
	if def == nil {
		return false
	}
	return !def.NeedsTarget() || p.TargetID != ""
}

// HasCompletedAction - участнику больше нечего выбирать в фазе abilities
func HasCompletedAction(c *domain.Combatant) bool {
	if !c.IsAlive() {
		return true
	}

	switch RoleOf(c) {
	case domain.RoleTank:
		return c.BlockTargetID != ""
	case domain.RoleHealer:
		if !c.IsCorrect {
			return true
		}
		if c.IsHealing {
			return c.HealTargetID != ""
		}
		return c.Crafting || c.Charging || abilityComplete(c.Pending)
	default:
		// Ошибившиеся в этом раунде ничего не выбирают
		if !c.IsCorrect {
			return true
		}
		return c.Crafting || c.Charging || abilityComplete(c.Pending)
	}
}

// AllRequiredSubmitted - все живые участники закончили выбор (досрочный выход из abilities).
// Танки обязаны выбрать цель блока, хилеры - цель лечения или способность, остальные - способность.
func AllRequiredSubmitted(s *domain.Session) bool {
	living := s.Living()
	if len(living) == 0 {
		return false
	}
	for _, c := range living {
		if !HasCompletedAction(c) {
			return false
		}
	}
	return true
}

// AllAnswered - все живые участники ответили (досрочный выход из question)
func AllAnswered(s *domain.Session) bool {
	living := s.Living()
	if len(living) == 0 {
		return false
	}
	for _, c := range living {
		if !c.HasAnswered {
			return false
		}
	}
	return true
}
