package engine

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
)

// BuildSessionView создает слепок сессии для клиентов. Ответы на вопросы сюда не попадают.
func BuildSessionView(s *domain.Session) *api.SessionView {
	view := &api.SessionView{
		ID:             s.ID,
		FightID:        s.FightID,
		Phase:          string(s.Phase),
		Round:          s.Round,
		QuestionNumber: s.CurrentQuestionNumber() + 1,
		QuestionsAsked: s.QuestionsAsked,
		DisplayMode:    string(s.DisplayMode),
		ThreatLeaderID: s.ThreatLeaderID,
		Participants:   make([]api.CombatantView, 0, len(s.Order)),
		Enemies:        make([]api.EnemyView, 0, len(s.Enemies)),
	}

	for _, c := range s.Ordered() {
		view.Participants = append(view.Participants, toCombatantView(c))
	}
	for _, e := range s.Enemies {
		view.Enemies = append(view.Enemies, toEnemyView(e))
	}
	for _, e := range s.Defeated {
		view.Defeated = append(view.Defeated, toEnemyView(e))
	}

	if s.Solo != nil {
		view.Solo = &api.SoloView{
			HostID:      s.Solo.HostID,
			AIEnabled:   s.Solo.AIEnabled,
			JoinBlocked: s.Solo.JoinBlocked,
		}
	}
	return view
}

// toCombatantView конвертирует участника в DTO
func toCombatantView(c *domain.Combatant) api.CombatantView {
	view := api.CombatantView{
		ID:      c.ID,
		Name:    c.Name,
		Class:   c.Class,
		Role:    systems.RoleOf(c).String(),
		Variant: c.Variant,
		IsBot:   c.IsBot,

		Health:      c.Health,
		MaxHealth:   c.MaxHealth,
		Mana:        c.Mana,
		MaxMana:     c.MaxMana,
		ComboPoints: c.ComboPoints,
		ComboCap:    c.ComboCap,
		Consumables: c.Consumables,
		IsDead:      c.IsDead,

		HasAnswered:     c.HasAnswered,
		IsCorrect:       c.IsCorrect,
		IsHealing:       c.IsHealing,
		HealTargetID:    c.HealTargetID,
		BlockTargetID:   c.BlockTargetID,
		Charging:        c.Charging,
		ChargeRounds:    c.ChargeRounds,
		Threat:          c.Threat,
		LastDamageDealt: c.LastDamageDealt,
		Level:           c.Level,
		UltimateReady:   c.Level >= domain.UltimateMinLevel && !c.UltimateUsed,

		DamageDealt:   c.DamageDealt,
		DamageBlocked: c.DamageBlocked,
		DamageTaken:   c.DamageTaken,
		HealingDone:   c.HealingDone,
	}
	if !c.Pending.IsEmpty() {
		view.AbilityID = c.Pending.AbilityID
		view.TargetID = c.Pending.TargetID
	}
	if c.Hex != nil {
		view.HexEnemyID = c.Hex.EnemyID
	}
	return view
}

func toEnemyView(e *domain.Enemy) api.EnemyView {
	return api.EnemyView{
		ID:        e.ID,
		Name:      e.Name,
		Image:     e.Image,
		Health:    e.Health,
		MaxHealth: e.MaxHealth,
	}
}

// toQuestionView - вопрос без правильного ответа
func toQuestionView(q domain.Question, number int) *api.QuestionView {
	return &api.QuestionView{
		Number:    number,
		Body:      q.Body,
		Choices:   append([]string(nil), q.Choices...),
		TimeLimit: q.TimeLimit,
		Shuffle:   q.Shuffle,
	}
}

func toFeedbackViews(events []domain.FeedbackEvent) []api.FeedbackView {
	out := make([]api.FeedbackView, len(events))
	for i, ev := range events {
		out[i] = api.FeedbackView{
			Kind:     string(ev.Kind),
			Amount:   ev.Amount,
			SourceID: ev.SourceID,
			TargetID: ev.TargetID,
			Ability:  ev.Ability,
		}
	}
	return out
}

func toAttackViews(attacks []domain.EnemyAttack) []api.AttackView {
	out := make([]api.AttackView, len(attacks))
	for i, a := range attacks {
		out[i] = api.AttackView{
			EnemyID:   a.EnemyID,
			EnemyName: a.EnemyName,
			TargetID:  a.TargetID,
			BlockerID: a.BlockerID,
			Damage:    a.Damage,
			Blocked:   a.Blocked,
			Killed:    a.Killed,
		}
	}
	return out
}

func toRewardViews(rewards []domain.Reward) []api.RewardView {
	out := make([]api.RewardView, len(rewards))
	for i, r := range rewards {
		out[i] = api.RewardView{ParticipantID: r.ParticipantID, Experience: r.Experience, ItemID: r.ItemID}
	}
	return out
}

// toPartyDamageView - итог раунда: урон каждого, побежденные и остаток здоровья врагов
func toPartyDamageView(res *systems.Resolution) *api.PartyDamageView {
	s := res.Session
	view := &api.PartyDamageView{
		Total:    res.PartyDamage,
		ByMember: make(map[string]int, len(s.Order)),
	}
	for _, c := range s.Ordered() {
		view.ByMember[c.ID] = c.LastDamageDealt
	}
	for _, e := range res.Defeated {
		view.Defeated = append(view.Defeated, e.ID)
	}
	for _, e := range s.Enemies {
		if e.Health > 0 {
			view.EnemyTotal += e.Health
		}
	}
	return view
}
