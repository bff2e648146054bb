package engine

import (
	"fightschool-server/internal/domain"
	"fightschool-server/internal/systems"
	"fmt"
	"math/rand"
)

// Порядок классов для ботов соло-режима: сначала роли, которых нет у хоста
var companionClasses = []string{
	domain.ClassWarrior,
	domain.ClassPriest,
	domain.ClassWizard,
	domain.ClassRanger,
	domain.ClassScout,
	domain.ClassWarlock,
}

var companionNames = map[string]string{
	domain.ClassWarrior: "Iron Golem",
	domain.ClassPriest:  "Lantern Monk",
	domain.ClassWizard:  "Ember Sage",
	domain.ClassRanger:  "Owl Archer",
	domain.ClassScout:   "Quiet Fox",
	domain.ClassWarlock: "Grey Hexer",
}

func validateFight(f *domain.Fight) error {
	if len(f.Questions) == 0 {
		return fmt.Errorf("fight %s: %w", f.ID, domain.ErrNoQuestions)
	}
	if len(f.Enemies) == 0 {
		return fmt.Errorf("fight %s: %w", f.ID, domain.ErrNoEnemies)
	}
	return nil
}

// buildSession создает сессию в фазе waiting из шаблона боя.
// Здоровье врагов считается позже, на первом вопросе, когда состав известен.
func buildSession(id string, fight *domain.Fight, seed int64) (*domain.Session, error) {
	if err := validateFight(fight); err != nil {
		return nil, err
	}

	s := domain.NewSession(id, fight.ID, seed)
	s.DisplayMode = fight.DisplayMode
	s.BaseEnemyDamage = fight.BaseEnemyDamage
	s.QuestionOrder = questionOrder(len(fight.Questions), fight.ShuffleQuestions, seed)

	for idx, t := range fight.Enemies {
		s.Enemies = append(s.Enemies, &domain.Enemy{
			ID:         enemyID(t.ID, idx),
			Name:       t.Name,
			Image:      t.Image,
			Difficulty: t.Difficulty,
		})
	}
	return s, nil
}

// questionOrder - индексы вопросов шаблона. Перемешивание зависит только от зерна.
func questionOrder(n int, shuffle bool, seed int64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })
	}
	return order
}

// Один шаблон врага может встречаться в бою несколько раз
func enemyID(templateID string, idx int) string {
	if templateID == "" {
		templateID = "enemy"
	}
	return fmt.Sprintf("%s_%d", templateID, idx+1)
}

// companions собирает ботов для соло-боя. Класс хоста пропускается,
// уровень ботов равен уровню хоста.
func companions(sessionID string, host *domain.Combatant, count int) []*domain.Combatant {
	out := make([]*domain.Combatant, 0, count)
	for _, class := range companionClasses {
		if len(out) == count {
			break
		}
		if class == host.Class {
			continue
		}

		st := &domain.Student{
			ID:             fmt.Sprintf("bot_%s_%s", class, sessionID),
			Name:           companionNames[class],
			Class:          class,
			UnlockedLevels: map[string]int{class: host.Level},
		}
		c := systems.NewCombatant(st, nil, nil)
		c.IsBot = true
		out = append(out, c)
	}
	return out
}
