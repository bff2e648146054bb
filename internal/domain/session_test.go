package domain

import "testing"

func newTestSession() *Session {
	s := NewSession("ABC123", "fight-1", 42)
	s.AddParticipant(&Combatant{ID: "a", Health: 10, MaxHealth: 10})
	s.AddParticipant(&Combatant{ID: "b", Health: 10, MaxHealth: 10})
	s.Enemies = []*Enemy{
		{ID: "e1", Health: 20, MaxHealth: 20},
		{ID: "e2", Health: 30, MaxHealth: 30},
	}
	return s
}

func TestSession_AddParticipantNoDuplicate(t *testing.T) {
	s := newTestSession()
	if s.AddParticipant(&Combatant{ID: "a"}) {
		t.Fatal("re-adding an existing participant must be rejected")
	}
	if len(s.Order) != 2 {
		t.Errorf("expected 2 participants in order, got %d", len(s.Order))
	}
}

func TestSession_ActiveEnemies(t *testing.T) {
	s := newTestSession()

	s.DisplayMode = DisplaySequential
	if got := s.ActiveEnemies(); len(got) != 1 || got[0].ID != "e1" {
		t.Errorf("sequential mode should expose only the first enemy, got %v", got)
	}

	s.DisplayMode = DisplaySimultaneous
	if got := s.ActiveEnemies(); len(got) != 2 {
		t.Errorf("simultaneous mode should expose all enemies, got %d", len(got))
	}

	s.Enemies[0].Health = 0
	if s.Enemy("e1") != nil {
		t.Error("dead enemy must not be returned as a target")
	}
}

func TestSession_Outcomes(t *testing.T) {
	s := newTestSession()
	if s.AllParticipantsDead() || s.AllEnemiesDefeated() {
		t.Fatal("fresh session must continue")
	}

	for _, e := range s.Enemies {
		e.Health = 0
	}
	if !s.AllEnemiesDefeated() {
		t.Error("expected victory when every enemy is at zero")
	}

	for _, c := range s.Participants {
		c.TakeDamage(100)
	}
	if !s.AllParticipantsDead() {
		t.Error("expected defeat when every participant is dead")
	}
}

func TestSession_AdvanceQuestionWraps(t *testing.T) {
	s := newTestSession()
	s.QuestionOrder = []int{2, 0, 1}
	s.QuestionIndex = 2
	s.AdvanceQuestion()
	if s.QuestionIndex != 0 || s.CurrentQuestionNumber() != 2 {
		t.Errorf("expected wrap to start, got index %d", s.QuestionIndex)
	}
}

func TestSession_CloneIsDeep(t *testing.T) {
	s := newTestSession()
	s.Participants["a"].Pending = &PendingAction{AbilityID: "attack"}
	cp := s.Clone()

	cp.Participants["a"].Health = 1
	cp.Participants["a"].Pending.TargetID = "e1"
	cp.Enemies[0].Health = 5

	if s.Participants["a"].Health != 10 {
		t.Error("clone shares combatant with original")
	}
	if s.Participants["a"].Pending.TargetID != "" {
		t.Error("clone shares pending action with original")
	}
	if s.Enemies[0].Health != 20 {
		t.Error("clone shares enemies with original")
	}
}

func TestCombatant_TakeDamageAndHeal(t *testing.T) {
	c := &Combatant{ID: "a", Health: 5, MaxHealth: 10}
	if healed := c.Heal(20); healed != 5 {
		t.Errorf("heal should cap at max health, healed %d", healed)
	}
	if died := c.TakeDamage(10); !died {
		t.Error("expected death")
	}
	if c.Deaths != 1 || c.Health != 0 {
		t.Errorf("unexpected state after death: %+v", c)
	}
	if c.TakeDamage(3) {
		t.Error("dead combatant cannot die twice")
	}
	if c.Heal(5) != 0 {
		t.Error("dead combatant cannot be healed")
	}
}
