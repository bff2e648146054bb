package systems

import (
	"fightschool-server/internal/domain"
)

// HighestHealthEnemy - активный живой враг с наибольшим текущим здоровьем.
// При равенстве выигрывает идущий раньше в списке.
func HighestHealthEnemy(s *domain.Session) *domain.Enemy {
	var best *domain.Enemy
	for _, e := range s.ActiveEnemies() {
		if best == nil || e.Health > best.Health {
			best = e
		}
	}
	return best
}

// LowestHealthAlly - живой участник с наименьшей долей здоровья
func LowestHealthAlly(s *domain.Session) *domain.Combatant {
	var best *domain.Combatant
	for _, c := range s.Living() {
		if best == nil || c.Health*best.MaxHealth < best.Health*c.MaxHealth {
			best = c
		}
	}
	return best
}

// ResolveEnemyTarget - цель для атаки: выбранная, если жива и активна, иначе враг с максимумом здоровья
func ResolveEnemyTarget(s *domain.Session, targetID string) *domain.Enemy {
	if e := s.Enemy(targetID); e != nil {
		return e
	}
	return HighestHealthEnemy(s)
}

// AutoTarget дозаполняет выбор участника в конце фазы abilities.
//   - способность без цели: цель приклеивается к уже выбранной способности;
//   - ничего не выбрано: обычная атака по цели прошлого раунда, если та жива,
//     иначе по врагу с наибольшим здоровьем;
//   - танк без цели блока: прошлая цель блока, если жива, иначе блока нет;
//   - хилер лечит без цели: прошлая цель лечения, если жива, иначе самый раненый союзник.
//
// Возвращает true, если что-то было изменено.
func AutoTarget(s *domain.Session, c *domain.Combatant) bool {
	if !c.IsAlive() {
		return false
	}
	changed := false
	role := RoleOf(c)

	if role == domain.RoleTank && c.BlockTargetID == "" {
		if prev := s.LivingParticipant(c.LastBlockTargetID); prev != nil && prev.ID != c.ID {
			c.BlockTargetID = prev.ID
			changed = true
		}
	}

	if !c.IsCorrect || c.Crafting || c.Charging {
		return changed
	}

	if c.IsHealing {
		if c.HealTargetID == "" && role == domain.RoleHealer {
			target := s.LivingParticipant(c.LastHealTargetID)
			if target == nil {
				target = LowestHealthAlly(s)
			}
			if target != nil {
				ApplyHeal(c, target)
				changed = true
			}
		}
		return changed
	}

	if c.Pending.IsEmpty() {
		c.Pending = &domain.PendingAction{AbilityID: domain.AbilityAttack}
		changed = true
	}

	def := Ability(c.Pending.AbilityID)
	if def != nil && (def.Target == domain.TargetAlly || def.Consumable) {
		return changed
	}
	if s.Enemy(c.Pending.TargetID) != nil {
		return changed
	}

	target := s.Enemy(c.LastTargetID)
	if target == nil {
		target = HighestHealthEnemy(s)
	}
	if target != nil {
		c.Pending.TargetID = target.ID
		c.Pending.TargetType = domain.TargetEnemy
		changed = true
	}
	return changed
}

// AutoTargetAll применяет AutoTarget ко всем живым участникам в порядке входа
func AutoTargetAll(s *domain.Session) []string {
	var touched []string
	for _, c := range s.Living() {
		if AutoTarget(s, c) {
			touched = append(touched, c.ID)
		}
	}
	return touched
}
