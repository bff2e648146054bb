package systems

import (
	"fightschool-server/internal/domain"
	"math"
)

// DefaultDamage - базовая формула урона по классу урона. Результат округляется вниз.
//
//	physical = (attack + strength) / 2
//	magical  = (magic + intellect) / 2
//	ranged   = (ranged + agility) / 2
//	hybrid   = (magic + agility + mind) / 2
func DefaultDamage(dt domain.DamageType, a domain.Stats) int {
	var dmg int
	switch dt {
	case domain.DamageMagical:
		dmg = (a.Magic + a.Intellect) / 2
	case domain.DamageRanged:
		dmg = (a.Ranged + a.Agility) / 2
	case domain.DamageHybrid:
		dmg = (a.Magic + a.Agility + a.Mind) / 2
	default:
		dmg = (a.Attack + a.Strength) / 2
	}
	if dmg < 0 {
		return 0
	}
	return dmg
}

// ReduceByDefense снижает входящий урон рейтингом защиты. Минимум 1 урон проходит всегда.
func ReduceByDefense(damage, defense int) int {
	reduced := damage - defense/domain.DefenseReductionDivisor
	if reduced < 1 {
		return 1
	}
	return reduced
}

// HealAmount - сила лечения хилера
func HealAmount(a domain.Stats) int {
	amount := (a.Magic + a.Mind) / 2
	if amount < 1 {
		return 1
	}
	return amount
}

// DamageThreat - угроза за нанесенный урон. Танки набирают ее быстрее.
func DamageThreat(role domain.Role, damage int) float64 {
	if role == domain.RoleTank {
		return float64(damage) * domain.ThreatPerDamageTank
	}
	return float64(damage) * domain.ThreatPerDamage
}

// HealThreat - угроза за лечение
func HealThreat(healed int) float64 {
	return float64(healed) * domain.ThreatPerHeal
}

// BlockThreat - угроза за заблокированный урон
func BlockThreat(blocked int) float64 {
	return float64(blocked) * domain.ThreatPerBlockDamage
}

// EnemyMaxHealth - здоровье врага. Считается один раз на первом вопросе сессии.
func EnemyMaxHealth(participants int, avgLevel, multiplier float64) int {
	if participants < 1 {
		participants = 1
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	perPlayer := float64(domain.EnemyBaseHealthPerPlayer) + float64(domain.EnemyHealthPerLevel)*avgLevel
	hp := int(math.Floor(perPlayer * float64(participants) * multiplier))
	if hp < 1 {
		return 1
	}
	return hp
}

// InitEnemyHealth выставляет здоровье всех врагов сессии по составу участников
func InitEnemyHealth(s *domain.Session) {
	participants := len(s.Participants)
	levelSum := 0
	for _, c := range s.Participants {
		lvl := c.Level
		if lvl < 1 {
			lvl = 1
		}
		levelSum += lvl
	}
	avgLevel := 1.0
	if participants > 0 {
		avgLevel = float64(levelSum) / float64(participants)
	}

	for _, e := range s.Enemies {
		e.MaxHealth = EnemyMaxHealth(participants, avgLevel, e.Difficulty)
		e.Health = e.MaxHealth
	}
	s.EnemyHealthComputed = true
}

// RawExperience - опыт до применения лимита:
// (урон + 2*лечение + 2*блок) * верные ответы
func RawExperience(c *domain.Combatant) int {
	return (c.DamageDealt + 2*c.HealingDone + 2*c.DamageBlocked) * c.QuestionsCorrect
}

// ExperienceCap - лимит опыта, линейно растущий со средней сложностью врагов боя
func ExperienceCap(avgDifficulty float64) int {
	t := (avgDifficulty - domain.XPMinDifficulty) / (domain.XPMaxDifficulty - domain.XPMinDifficulty)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return int(math.Floor(domain.XPMinCap + (domain.XPMaxCap-domain.XPMinCap)*t))
}

// Experience - итоговый опыт участника за победу
func Experience(c *domain.Combatant, avgDifficulty float64) int {
	raw := RawExperience(c)
	if limit := ExperienceCap(avgDifficulty); raw > limit {
		return limit
	}
	return raw
}
