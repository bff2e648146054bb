package systems

import (
	"fightschool-server/internal/domain"
	"testing"
)

func TestAutoTarget_DeadPreviousTarget(t *testing.T) {
	c := newFighter("z", domain.ClassWizard, domain.Stats{})
	c.IsCorrect = true
	c.LastTargetID = "A"
	c.Pending = &domain.PendingAction{AbilityID: "fireball"}
	s := newTestSession(domain.DisplaySimultaneous, c)
	s.Enemies = append(s.Enemies, &domain.Enemy{ID: "C", Health: 10, MaxHealth: 10})
	s.Enemies[0].Health = 0

	AutoTarget(s, c)

	if c.Pending.AbilityID != "fireball" {
		t.Errorf("selected ability must be kept, got %q", c.Pending.AbilityID)
	}
	if c.Pending.TargetID != "B" {
		t.Errorf("target = %q, want highest-health living enemy B", c.Pending.TargetID)
	}
}

func TestAutoTarget_PreviousTargetAlive(t *testing.T) {
	c := newFighter("d", domain.ClassScout, domain.Stats{})
	c.IsCorrect = true
	c.LastTargetID = "A"
	s := newTestSession(domain.DisplaySimultaneous, c)

	AutoTarget(s, c)

	if c.Pending == nil || c.Pending.AbilityID != domain.AbilityAttack || c.Pending.TargetID != "A" {
		t.Errorf("expected attack on previous target A, got %+v", c.Pending)
	}
}

func TestAutoTarget_Incorrect(t *testing.T) {
	c := newFighter("d", domain.ClassScout, domain.Stats{})
	s := newTestSession(domain.DisplaySimultaneous, c)

	if AutoTarget(s, c) || c.Pending != nil {
		t.Error("participants who answered wrong get no ability")
	}
}

func TestAutoTarget_Tank(t *testing.T) {
	tank := newFighter("t", domain.ClassWarrior, domain.Stats{})
	ally := newFighter("a", domain.ClassScout, domain.Stats{})
	tank.LastBlockTargetID = "a"
	s := newTestSession(domain.DisplaySequential, tank, ally)

	AutoTarget(s, tank)
	if tank.BlockTargetID != "a" {
		t.Errorf("block target = %q, want previous target a", tank.BlockTargetID)
	}

	tank.BlockTargetID = ""
	ally.TakeDamage(100)
	AutoTarget(s, tank)
	if tank.BlockTargetID != "" {
		t.Error("dead previous block target must not be reused")
	}
}

func TestAutoTarget_HealerPicksLowestAlly(t *testing.T) {
	h := newFighter("h", domain.ClassPriest, domain.Stats{Magic: 6, Mind: 4})
	a := newFighter("a", domain.ClassScout, domain.Stats{})
	b := newFighter("b", domain.ClassScout, domain.Stats{})
	a.Health = 15
	b.Health = 8
	h.IsCorrect, h.IsHealing = true, true
	s := newTestSession(domain.DisplaySequential, h, a, b)

	AutoTarget(s, h)

	if h.HealTargetID != "b" || !h.HealApplied {
		t.Fatalf("expected heal on b, got %q (applied=%v)", h.HealTargetID, h.HealApplied)
	}
	if b.Health != 13 {
		t.Errorf("b health = %d, want 13", b.Health)
	}
	if h.HealingDone != 5 || h.Threat != 2.5 {
		t.Errorf("unexpected healer counters: healing %d, threat %v", h.HealingDone, h.Threat)
	}
}

func TestApplyLockedHeals(t *testing.T) {
	h := newFighter("h", domain.ClassPriest, domain.Stats{Magic: 2, Mind: 2})
	wrong := newFighter("w", domain.ClassPriest, domain.Stats{Magic: 2, Mind: 2})
	a := newFighter("a", domain.ClassScout, domain.Stats{})
	a.Health = 10
	h.IsCorrect, h.IsHealing, h.HealTargetID = true, true, "a"
	wrong.IsHealing, wrong.HealTargetID = true, "a"
	s := newTestSession(domain.DisplaySequential, h, wrong, a)

	applied := ApplyLockedHeals(s)

	if len(applied) != 1 || applied[0] != "h" {
		t.Fatalf("applied = %v, want [h]", applied)
	}
	if a.Health != 12 {
		t.Errorf("a health = %d, want 12", a.Health)
	}
	if wrong.IsHealing {
		t.Error("healer who answered wrong must not heal")
	}
}

func TestEvaluateAnswers(t *testing.T) {
	a := newFighter("a", domain.ClassScout, domain.Stats{})
	b := newFighter("b", domain.ClassScout, domain.Stats{})
	c := newFighter("c", domain.ClassScout, domain.Stats{})
	answer(a, " PARIS")
	answer(b, "Lyon")
	s := newTestSession(domain.DisplaySequential, a, b, c)

	EvaluateAnswers(s, testQuestion())

	if !a.IsCorrect || b.IsCorrect || c.IsCorrect {
		t.Errorf("unexpected correctness: a=%v b=%v c=%v", a.IsCorrect, b.IsCorrect, c.IsCorrect)
	}
	if a.QuestionsCorrect != 0 {
		t.Error("counters are updated by the resolver, not at question end")
	}
}
