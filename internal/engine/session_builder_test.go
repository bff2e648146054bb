package engine

import (
	"errors"
	"fightschool-server/internal/config"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/systems"
	"sort"
	"testing"
	"time"
)

func TestBuildSession(t *testing.T) {
	fight := &domain.Fight{
		ID:              "f1",
		Questions:       []domain.Question{{Answer: "a"}, {Answer: "b"}, {Answer: "c"}},
		Enemies:         []domain.EnemyTemplate{{ID: "slime", Name: "Slime", Difficulty: 1}, {ID: "slime", Name: "Slime", Difficulty: 2}, {Name: "Ghost"}},
		DisplayMode:     domain.DisplaySimultaneous,
		BaseEnemyDamage: 5,
	}

	s, err := buildSession("ABC234", fight, 9)
	if err != nil {
		t.Fatal(err)
	}
	if s.Phase != domain.PhaseWaiting || s.DisplayMode != domain.DisplaySimultaneous || s.BaseEnemyDamage != 5 {
		t.Errorf("session = %+v", s)
	}

	wantIDs := []string{"slime_1", "slime_2", "enemy_3"}
	for i, e := range s.Enemies {
		if e.ID != wantIDs[i] {
			t.Errorf("enemy %d id = %s, want %s", i, e.ID, wantIDs[i])
		}
		if e.Health != 0 {
			t.Errorf("enemy health must wait for the first question, got %d", e.Health)
		}
	}
	if s.EnemyHealthComputed {
		t.Error("enemy health marked computed before the fight started")
	}
}

func TestBuildSession_InvalidFight(t *testing.T) {
	_, err := buildSession("X", &domain.Fight{ID: "f", Enemies: []domain.EnemyTemplate{{ID: "e"}}}, 1)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Errorf("got %v, want ErrNoQuestions", err)
	}
	_, err = buildSession("X", &domain.Fight{ID: "f", Questions: []domain.Question{{Answer: "a"}}}, 1)
	if !errors.Is(err, domain.ErrNoEnemies) {
		t.Errorf("got %v, want ErrNoEnemies", err)
	}
}

func TestQuestionOrder(t *testing.T) {
	plain := questionOrder(4, false, 1)
	for i, v := range plain {
		if v != i {
			t.Fatalf("unshuffled order = %v", plain)
		}
	}

	a := questionOrder(20, true, 77)
	b := questionOrder(20, true, 77)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different orders: %v vs %v", a, b)
		}
	}

	sorted := append([]int(nil), a...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			t.Fatalf("shuffled order is not a permutation: %v", a)
		}
	}
}

func TestCompanions(t *testing.T) {
	host := systems.NewCombatant(&domain.Student{
		ID:             "p1",
		Class:          domain.ClassWarrior,
		UnlockedLevels: map[string]int{domain.ClassWarrior: 4},
	}, nil, nil)

	bots := companions("ABC234", host, 2)
	if len(bots) != 2 {
		t.Fatalf("bots = %d, want 2", len(bots))
	}
	if bots[0].Class != domain.ClassPriest || bots[1].Class != domain.ClassWizard {
		t.Errorf("classes = %s, %s; host class must be skipped", bots[0].Class, bots[1].Class)
	}
	for _, b := range bots {
		if !b.IsBot || b.Level != 4 {
			t.Errorf("bot %s: isBot=%v level=%d", b.ID, b.IsBot, b.Level)
		}
	}
	if bots[0].ID != "bot_priest_ABC234" {
		t.Errorf("id = %s", bots[0].ID)
	}

	if all := companions("ABC234", host, 10); len(all) != len(companionClasses)-1 {
		t.Errorf("bots = %d, want every class but the host's", len(all))
	}
}

func TestTimings(t *testing.T) {
	tm := TimingsFrom(config.TimingConfig{
		Unit:             time.Second,
		AbilitiesCeiling: 12,
		AbilitiesIdle:    6,
		ModalUnit:        2 * time.Second,
		AIBase:           2 * time.Second,
		AIPerAttack:      1500 * time.Millisecond,
		AIMin:            time.Second,
	})

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"abilities ceiling", tm.AbilitiesCeiling, 12 * time.Second},
		{"abilities idle", tm.AbilitiesIdle, 6 * time.Second},
		{"question deadline", tm.QuestionDeadline(30), 30 * time.Second},
		{"resolution hold, no events", tm.ResolutionHold(0), 2 * time.Second},
		{"resolution hold, 3 events", tm.ResolutionHold(3), 6 * time.Second},
		{"ai hold, no attacks", tm.AIHold(0), time.Second},
		{"ai hold, 2 attacks", tm.AIHold(2), 5 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}
