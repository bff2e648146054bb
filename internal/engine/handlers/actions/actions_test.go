package actions

import (
	"encoding/json"
	"errors"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fightschool-server/pkg/logger"
	"io"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func student(id, class string, level int) *domain.Combatant {
	return systems.NewCombatant(&domain.Student{
		ID:             id,
		Name:           id,
		Class:          class,
		UnlockedLevels: map[string]int{class: level},
	}, nil, nil)
}

// party: воин, жрец, маг и один живой враг
func party() *domain.Session {
	s := domain.NewSession("ACT001", "f1", 1)
	s.Round = 1
	s.AddParticipant(student("tank", domain.ClassWarrior, 1))
	s.AddParticipant(student("priest", domain.ClassPriest, 1))
	s.AddParticipant(student("mage", domain.ClassWizard, 3))
	s.Enemies = []*domain.Enemy{{ID: "slime_1", Name: "Slime", Health: 30, MaxHealth: 30, Difficulty: 1}}
	return s
}

func ctxFor(s *domain.Session, id string) handlers.Context {
	return handlers.Context{Session: s, Actor: s.Participant(id)}
}

func markCorrect(s *domain.Session, ids ...string) {
	for _, id := range ids {
		c := s.Participant(id)
		c.HasAnswered = true
		c.IsCorrect = true
	}
}

func TestAnswer_OncePerRound(t *testing.T) {
	s := party()

	res, err := HandleAnswer(ctxFor(s, "mage"), api.AnswerPayload{Text: "  4 "})
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if !res.Changed {
		t.Error("answer should mark state changed")
	}
	if got := s.Participant("mage").Answer; got != "4" {
		t.Errorf("answer = %q, want trimmed 4", got)
	}

	_, err = HandleAnswer(ctxFor(s, "mage"), api.AnswerPayload{Text: "5"})
	if !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("second answer: got %v, want ErrNotEligible", err)
	}
	if got := s.Participant("mage").Answer; got != "4" {
		t.Errorf("second answer overwrote the first: %q", got)
	}
}

func TestAnswer_HealerLocksHealTarget(t *testing.T) {
	s := party()

	if _, err := HandleAnswer(ctxFor(s, "priest"), api.AnswerPayload{Text: "4", IsHealing: true, HealTarget: "tank"}); err != nil {
		t.Fatal(err)
	}
	p := s.Participant("priest")
	if !p.IsHealing || p.HealTargetID != "tank" {
		t.Errorf("healer choice = (%v, %q), want (true, tank)", p.IsHealing, p.HealTargetID)
	}

	// Не-хилер не может заявить лечение
	if _, err := HandleAnswer(ctxFor(s, "mage"), api.AnswerPayload{Text: "4", IsHealing: true, HealTarget: "tank"}); err != nil {
		t.Fatal(err)
	}
	if s.Participant("mage").IsHealing {
		t.Error("wizard should not be marked as healing")
	}
}

func TestAnswer_DeadActor(t *testing.T) {
	s := party()
	s.Participant("mage").Health = 0

	_, err := HandleAnswer(ctxFor(s, "mage"), api.AnswerPayload{Text: "4"})
	if !errors.Is(err, domain.ErrActorDead) {
		t.Errorf("got %v, want ErrActorDead", err)
	}
}

func TestBlock_Rules(t *testing.T) {
	tests := []struct {
		name   string
		actor  string
		target string
		want   error
	}{
		{"tank blocks ally", "tank", "mage", nil},
		{"non-tank cannot block", "mage", "priest", domain.ErrNotEligible},
		{"tank cannot block itself", "tank", "tank", domain.ErrInvalidTarget},
		{"unknown target", "tank", "ghost", domain.ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := party()
			_, err := HandleBlock(ctxFor(s, tt.actor), api.TargetPayload{TargetID: tt.target})
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := s.Participant(tt.actor).BlockTargetID; got != tt.target {
					t.Errorf("block target = %q, want %q", got, tt.target)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBlock_IncorrectTankStillBlocks(t *testing.T) {
	s := party()
	s.Participant("tank").HasAnswered = true // ответил неверно

	if _, err := HandleBlock(ctxFor(s, "tank"), api.TargetPayload{TargetID: "priest"}); err != nil {
		t.Fatalf("block should not depend on answer correctness: %v", err)
	}
}

func TestHeal_AppliesImmediately(t *testing.T) {
	s := party()
	markCorrect(s, "priest")
	tank := s.Participant("tank")
	tank.Health = tank.MaxHealth - 5

	if _, err := HandleHeal(ctxFor(s, "priest"), api.TargetPayload{TargetID: "tank"}); err != nil {
		t.Fatal(err)
	}
	if tank.Health != tank.MaxHealth {
		t.Errorf("tank health = %d, want healed to %d", tank.Health, tank.MaxHealth)
	}
	p := s.Participant("priest")
	if !p.HealApplied || p.HealedAmount != 5 {
		t.Errorf("heal state = (%v, %d), want (true, 5)", p.HealApplied, p.HealedAmount)
	}

	// Второе лечение и любые способности после лечения запрещены
	if _, err := HandleHeal(ctxFor(s, "priest"), api.TargetPayload{TargetID: "mage"}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("second heal: got %v, want ErrNotEligible", err)
	}
	if _, err := HandleUseAbility(ctxFor(s, "priest"), api.AbilityPayload{AbilityID: "attack", TargetID: "slime_1"}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("ability after heal: got %v, want ErrNotEligible", err)
	}
	if _, err := HandleDeclineHealing(ctxFor(s, "priest")); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("decline after heal: got %v, want ErrNotEligible", err)
	}
}

func TestHeal_RequiresCorrectHealer(t *testing.T) {
	s := party()

	if _, err := HandleHeal(ctxFor(s, "priest"), api.TargetPayload{TargetID: "tank"}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("incorrect healer: got %v, want ErrNotEligible", err)
	}

	markCorrect(s, "mage")
	if _, err := HandleHeal(ctxFor(s, "mage"), api.TargetPayload{TargetID: "tank"}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("wizard heal: got %v, want ErrNotEligible", err)
	}
}

func TestDeclineHealing(t *testing.T) {
	s := party()
	p := s.Participant("priest")
	p.IsHealing = true
	p.HealTargetID = "tank"

	if _, err := HandleDeclineHealing(ctxFor(s, "priest")); err != nil {
		t.Fatal(err)
	}
	if p.IsHealing || p.HealTargetID != "" {
		t.Errorf("heal choice not cleared: (%v, %q)", p.IsHealing, p.HealTargetID)
	}
}

func TestUseAbility_RequiresCorrectAnswer(t *testing.T) {
	s := party()
	_, err := HandleUseAbility(ctxFor(s, "mage"), api.AbilityPayload{AbilityID: "attack"})
	if !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("got %v, want ErrNotEligible", err)
	}
}

func TestUseAbility_KeepsValidTargetOnly(t *testing.T) {
	s := party()
	markCorrect(s, "mage")
	mage := s.Participant("mage")

	if _, err := HandleUseAbility(ctxFor(s, "mage"), api.AbilityPayload{AbilityID: "fireball", TargetID: "nobody"}); err != nil {
		t.Fatal(err)
	}
	if mage.Pending == nil || mage.Pending.AbilityID != "fireball" || mage.Pending.TargetID != "" {
		t.Errorf("pending = %+v, want fireball without target", mage.Pending)
	}

	if _, err := HandleUseAbility(ctxFor(s, "mage"), api.AbilityPayload{AbilityID: "fireball", TargetID: "slime_1"}); err != nil {
		t.Fatal(err)
	}
	if mage.Pending.TargetID != "slime_1" {
		t.Errorf("target = %q, want slime_1", mage.Pending.TargetID)
	}
}

func TestUseAbility_OtherClassAbility(t *testing.T) {
	s := party()
	markCorrect(s, "tank")

	_, err := HandleUseAbility(ctxFor(s, "tank"), api.AbilityPayload{AbilityID: "fireball"})
	if !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("got %v, want ErrNotEligible", err)
	}
}

func TestUseAbility_WhileCharging(t *testing.T) {
	s := party()
	markCorrect(s, "mage")

	if _, err := HandleToggleCharge(ctxFor(s, "mage"), api.ChargePayload{Enabled: true}); err != nil {
		t.Fatal(err)
	}
	_, err := HandleUseAbility(ctxFor(s, "mage"), api.AbilityPayload{AbilityID: "attack"})
	if !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("got %v, want ErrNotEligible", err)
	}
}

func TestSelectTarget_WithoutAbilityMeansAttack(t *testing.T) {
	s := party()
	markCorrect(s, "tank")

	if _, err := HandleSelectTarget(ctxFor(s, "tank"), api.SelectTargetPayload{TargetID: "slime_1"}); err != nil {
		t.Fatal(err)
	}
	p := s.Participant("tank").Pending
	if p == nil || p.AbilityID != domain.AbilityAttack || p.TargetID != "slime_1" {
		t.Errorf("pending = %+v, want attack on slime_1", p)
	}

	_, err := HandleSelectTarget(ctxFor(s, "tank"), api.SelectTargetPayload{TargetID: "priest", TargetType: "ally"})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("ally target for attack: got %v, want ErrInvalidTarget", err)
	}
}

func TestToggleCharge(t *testing.T) {
	s := party()
	markCorrect(s, "mage", "tank")
	mage := s.Participant("mage")

	if _, err := HandleToggleCharge(ctxFor(s, "tank"), api.ChargePayload{Enabled: true}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("warrior charge: got %v, want ErrNotEligible", err)
	}

	if _, err := HandleToggleCharge(ctxFor(s, "mage"), api.ChargePayload{Enabled: true}); err != nil {
		t.Fatal(err)
	}
	mage.ChargeRounds = 2

	res, err := HandleToggleCharge(ctxFor(s, "mage"), api.ChargePayload{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed || mage.Charging || mage.ChargeRounds != 0 {
		t.Errorf("stop charging: changed=%v charging=%v rounds=%d", res.Changed, mage.Charging, mage.ChargeRounds)
	}

	// Выключение, когда заряд не копится, ничего не меняет
	res, err = HandleToggleCharge(ctxFor(s, "mage"), api.ChargePayload{Enabled: false})
	if err != nil || res.Changed {
		t.Errorf("noop toggle: changed=%v err=%v", res.Changed, err)
	}
}

func TestUseUltimate(t *testing.T) {
	s := party()
	markCorrect(s, "mage", "tank")

	if _, err := HandleUseUltimate(ctxFor(s, "mage"), api.UltimatePayload{UltimateID: "doom"}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("foreign ultimate: got %v, want ErrNotEligible", err)
	}
	// Воин первого уровня еще не открыл ультимейт
	if _, err := HandleUseUltimate(ctxFor(s, "tank"), api.UltimatePayload{UltimateID: "earthshatter"}); !errors.Is(err, domain.ErrNotEligible) {
		t.Errorf("low level ultimate: got %v, want ErrNotEligible", err)
	}

	if _, err := HandleUseUltimate(ctxFor(s, "mage"), api.UltimatePayload{UltimateID: "meteor"}); err != nil {
		t.Fatal(err)
	}
	if p := s.Participant("mage").Pending; p == nil || p.AbilityID != "meteor" {
		t.Errorf("pending = %+v, want meteor", p)
	}
}

func TestCreateConsumable(t *testing.T) {
	s := party()
	markCorrect(s, "tank")
	tank := s.Participant("tank")
	tank.Pending = &domain.PendingAction{AbilityID: domain.AbilityAttack, TargetID: "slime_1"}

	if _, err := HandleCreateConsumable(ctxFor(s, "tank")); err != nil {
		t.Fatal(err)
	}
	if !tank.Crafting || tank.Pending != nil {
		t.Errorf("crafting=%v pending=%+v, want crafting and no pending", tank.Crafting, tank.Pending)
	}
}

func TestWithPayload_RejectsMalformedJSON(t *testing.T) {
	s := party()
	h := handlers.WithPayload(HandleBlock)

	if _, err := h(ctxFor(s, "tank"), json.RawMessage(`{"targetId":`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := h(ctxFor(s, "tank"), json.RawMessage(`{"targetId":"mage"}`)); err != nil {
		t.Fatalf("valid payload: %v", err)
	}
}
