package systems

import "fightschool-server/internal/domain"

const testAnswer = "Paris"

func testQuestion() domain.Question {
	return domain.Question{ID: "q1", Body: "Capital of France?", Answer: testAnswer, TimeLimit: 20}
}

func newFighter(id, class string, attrs domain.Stats) *domain.Combatant {
	return &domain.Combatant{
		ID:         id,
		Name:       id,
		Class:      class,
		Health:     20,
		MaxHealth:  20,
		ComboCap:   Class(class).ComboCap,
		Attributes: attrs,
		Level:      1,
	}
}

func newTestSession(mode domain.DisplayMode, participants ...*domain.Combatant) *domain.Session {
	s := domain.NewSession("TEST01", "fight-1", 7)
	s.DisplayMode = mode
	s.BaseEnemyDamage = 2
	s.Round = 1
	for _, c := range participants {
		s.AddParticipant(c)
	}
	s.Enemies = []*domain.Enemy{
		{ID: "A", Name: "Goblin", Health: 30, MaxHealth: 30, Difficulty: 1},
		{ID: "B", Name: "Troll", Health: 40, MaxHealth: 40, Difficulty: 1},
	}
	return s
}

func answer(c *domain.Combatant, text string) {
	c.Answer = text
	c.HasAnswered = true
}
