package systems

import (
	"fightschool-server/internal/domain"
	"fightschool-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Resolution - результат фазы question_resolution
type Resolution struct {
	Session     *domain.Session
	Feedback    domain.Feedback
	Defeated    []*domain.Enemy // Убраны из активного списка (последовательный режим)
	NextEnemy   *domain.Enemy   // Следующий враг после победы над активным
	PartyDamage int             // Суммарный урон группы за раунд
}

// Resolve - детерминированный однопроходный резолв раунда.
// Входной снимок не меняется, работа идет над копией.
//
// Порядок:
//  1. тик проклятий (DoT);
//  2. ответы участников в порядке входа;
//  3. уборка побежденного врага в последовательном режиме.
func Resolve(in *domain.Session, q domain.Question) *Resolution {
	s := in.Clone()
	res := &Resolution{Session: s, Feedback: make(domain.Feedback)}

	log := logger.Log.WithFields(logrus.Fields{
		"component":  "combat_resolver",
		"session_id": s.ID,
		"round":      s.Round,
	})

	// --- 1. DoT ---
	tickHexes(s, res.Feedback)

	// --- 2. Ответы ---
	for _, c := range s.Ordered() {
		c.LastDamageDealt = 0
		if !c.IsAlive() {
			c.Pending = nil
			continue
		}

		c.QuestionsSeen++
		c.IsCorrect = c.HasAnswered && q.IsCorrect(c.Answer)
		if c.IsCorrect {
			c.QuestionsCorrect++
			res.PartyDamage += resolveCorrect(s, c, res.Feedback, log)
		} else {
			c.QuestionsIncorrect++
			resolveIncorrect(s, c, res.Feedback)
		}
	}

	for _, c := range s.Living() {
		if c.MaxMana > 0 {
			c.RestoreMana(domain.ManaRegenPerRound)
		}
		if c.Pending != nil && c.Pending.TargetType != domain.TargetAlly && c.Pending.TargetID != "" {
			c.LastTargetID = c.Pending.TargetID
		}
		c.Pending = nil
	}

	// --- 3. Последовательный режим ---
	if s.DisplayMode == domain.DisplaySequential {
		active := make([]*domain.Enemy, 0, len(s.Enemies))
		for _, e := range s.Enemies {
			if e.IsAlive() {
				active = append(active, e)
				continue
			}
			s.Defeated = append(s.Defeated, e)
			res.Defeated = append(res.Defeated, e)
		}
		s.Enemies = active
		if len(res.Defeated) > 0 && len(active) > 0 {
			res.NextEnemy = active[0]
		}
	}

	if leader := ThreatLeader(s); leader != nil {
		s.ThreatLeaderID = leader.ID
	} else {
		s.ThreatLeaderID = ""
	}

	log.WithFields(logrus.Fields{
		"party_damage": res.PartyDamage,
		"defeated":     len(res.Defeated),
		"threat_lead":  s.ThreatLeaderID,
	}).Info("Round resolved.")

	return res
}

func tickHexes(s *domain.Session, fb domain.Feedback) {
	for _, c := range s.Ordered() {
		if c.Hex == nil {
			continue
		}
		e := s.AnyEnemy(c.Hex.EnemyID)
		if e == nil || !e.IsAlive() {
			c.Hex = nil
			continue
		}

		before := e.Health
		e.TakeDamage(c.Hex.Damage)
		dealt := before - e.Health
		c.DamageDealt += dealt
		c.Threat += DamageThreat(RoleOf(c), dealt)
		fb.Add(c.ID, domain.FeedbackEvent{Kind: domain.FeedbackDotDamage, Amount: dealt, TargetID: e.ID, Ability: "hex"})

		c.Hex.RoundsLeft--
		if c.Hex.RoundsLeft <= 0 {
			c.Hex = nil
		}
	}
}

// resolveCorrect применяет исход верного ответа и возвращает нанесенный урон
func resolveCorrect(s *domain.Session, c *domain.Combatant, fb domain.Feedback, log *logrus.Entry) int {
	switch {
	case c.IsHealing:
		// Лечение уже применено в abilities, здесь только обратная связь
		if c.HealApplied {
			fb.Add(c.ID, domain.FeedbackEvent{Kind: domain.FeedbackHealed, Amount: c.HealedAmount, TargetID: c.HealTargetID})
			if c.HealTargetID != c.ID {
				fb.Add(c.HealTargetID, domain.FeedbackEvent{Kind: domain.FeedbackHealReceived, Amount: c.HealedAmount, SourceID: c.ID})
			}
		}
		return 0

	case c.Crafting:
		c.Consumables++
		fb.Add(c.ID, domain.FeedbackEvent{Kind: domain.FeedbackCrafted, Amount: 1, Ability: domain.AbilityPotion})
		return 0

	case c.Charging:
		c.ChargeRounds++
		if c.ChargeRounds < domain.ChargeRoundsToFire {
			fb.Add(c.ID, domain.FeedbackEvent{Kind: domain.FeedbackCharging, Amount: c.ChargeRounds})
			return 0
		}
		dmg := ChargedBlast(c)
		c.Charging = false
		c.ChargeRounds = 0
		target := HighestHealthEnemy(s)
		if target == nil {
			return 0
		}
		return dealDamage(s, c, target, dmg, "charged_blast", fb)
	}

	class := Class(c.Class)
	abilityID := domain.AbilityAttack
	targetID := ""
	if !c.Pending.IsEmpty() {
		abilityID = c.Pending.AbilityID
		targetID = c.Pending.TargetID
	}

	def, err := CanUse(c, abilityID, s.Round)
	if err != nil {
		log.WithFields(logrus.Fields{
			"participant_id": c.ID,
			"ability":        abilityID,
			"error":          err,
		}).Debug("Ability preconditions failed, falling back to attack.")
		def = Ability(domain.AbilityAttack)
	}
	payCost(c, def, s.Round)

	target := ResolveEnemyTarget(s, targetID)
	eff := def.Formula(FormulaContext{Actor: c, Class: class, Target: target, Round: s.Round})

	dealt := 0
	if eff.AllEnemies {
		for _, e := range s.ActiveEnemies() {
			dealt += dealDamage(s, c, e, eff.Damage, def.ID, fb)
		}
	} else if target != nil && eff.Damage > 0 {
		dealt = dealDamage(s, c, target, eff.Damage, def.ID, fb)
	}

	if eff.Hex != nil && target != nil {
		c.Hex = eff.Hex
	}
	if eff.SelfHeal > 0 {
		healed := c.Heal(eff.SelfHeal)
		kind := domain.FeedbackHealed
		if eff.Damage > 0 {
			kind = domain.FeedbackLifesteal
		}
		fb.Add(c.ID, domain.FeedbackEvent{Kind: kind, Amount: healed, TargetID: c.ID, Ability: def.ID})
	}
	if eff.ConsumesCombo {
		c.ComboPoints = 0
	}
	if eff.AddsCombo {
		c.AddCombo()
	}
	return dealt
}

// dealDamage бьет врага и начисляет участнику урон и угрозу. Возвращает снятое здоровье.
func dealDamage(s *domain.Session, c *domain.Combatant, e *domain.Enemy, amount int, ability string, fb domain.Feedback) int {
	before := e.Health
	killed := e.TakeDamage(amount)
	dealt := before - e.Health

	c.DamageDealt += dealt
	c.LastDamageDealt += dealt
	c.Threat += DamageThreat(RoleOf(c), dealt)
	fb.Add(c.ID, domain.FeedbackEvent{Kind: domain.FeedbackCorrectDamage, Amount: dealt, TargetID: e.ID, Ability: ability})

	if killed {
		logger.Log.WithFields(logrus.Fields{
			"component":      "combat_resolver",
			"session_id":     s.ID,
			"participant_id": c.ID,
			"enemy_id":       e.ID,
		}).Info("Enemy defeated.")
	}
	return dealt
}

// resolveIncorrect: сброс ресурсов и входящий урон, если никто не прикрыл
func resolveIncorrect(s *domain.Session, c *domain.Combatant, fb domain.Feedback) {
	c.ComboPoints = 0
	c.Charging = false
	c.ChargeRounds = 0

	dmg := s.BaseEnemyDamage
	if dmg <= 0 {
		dmg = domain.DefaultBaseEnemyDamage
	}

	if blocker := FindBlocker(s, c.ID); blocker != nil {
		absorbBlock(blocker, c, dmg, fb)
		return
	}

	taken := ReduceByDefense(dmg, c.Attributes.Defense)
	c.TakeDamage(taken)
	fb.Add(c.ID, domain.FeedbackEvent{Kind: domain.FeedbackDamageTaken, Amount: taken})
}

// FindBlocker - живой танк, который прикрывает targetID (первый в порядке входа)
func FindBlocker(s *domain.Session, targetID string) *domain.Combatant {
	for _, c := range s.Living() {
		if c.ID == targetID || c.BlockTargetID != targetID {
			continue
		}
		if RoleOf(c) == domain.RoleTank {
			return c
		}
	}
	return nil
}

func absorbBlock(blocker, target *domain.Combatant, dmg int, fb domain.Feedback) {
	blocker.DamageBlocked += dmg
	blocker.Threat += BlockThreat(dmg)
	fb.Add(blocker.ID, domain.FeedbackEvent{Kind: domain.FeedbackBlocked, Amount: dmg, TargetID: target.ID})
	fb.Add(target.ID, domain.FeedbackEvent{Kind: domain.FeedbackGotBlocked, Amount: dmg, SourceID: blocker.ID})
}
