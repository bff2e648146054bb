package domain

import "strings"

// Question - вопрос шаблона боя
type Question struct {
	ID        string   `json:"id" yaml:"id"`
	Body      string   `json:"body" yaml:"body"`
	Choices   []string `json:"choices,omitempty" yaml:"choices"`
	Answer    string   `json:"-" yaml:"answer"`
	TimeLimit int      `json:"timeLimit" yaml:"time_limit"` // секунды
	Shuffle   bool     `json:"shuffle" yaml:"shuffle"`      // перемешивать варианты на клиенте
}

// IsCorrect сравнивает ответ без учета регистра и пробелов по краям
func (q Question) IsCorrect(answer string) bool {
	got := strings.TrimSpace(answer)
	if got == "" {
		return false
	}
	return strings.EqualFold(got, strings.TrimSpace(q.Answer))
}

// EnemyTemplate - враг из шаблона боя
type EnemyTemplate struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Image      string  `yaml:"image"`
	Difficulty float64 `yaml:"difficulty"` // множитель сложности
}

// LootEntry - строка таблицы добычи
type LootEntry struct {
	ItemID string `yaml:"item_id"`
	Weight int    `yaml:"weight"`
}

// Fight - шаблон боя. Его CRUD живет во внешнем сервисе, движок только читает.
type Fight struct {
	ID               string          `yaml:"id"`
	Title            string          `yaml:"title"`
	Questions        []Question      `yaml:"questions"`
	Enemies          []EnemyTemplate `yaml:"enemies"`
	DisplayMode      DisplayMode     `yaml:"display_mode"`
	BaseEnemyDamage  int             `yaml:"base_enemy_damage"`
	ShuffleQuestions bool            `yaml:"shuffle_questions"`
	Loot             []LootEntry     `yaml:"loot"`
	SoloCompanions   int             `yaml:"solo_companions"` // сколько ботов добавлять в соло-режиме
}

// AverageDifficulty - средний множитель сложности врагов (1.0 если врагов нет)
func (f *Fight) AverageDifficulty() float64 {
	if len(f.Enemies) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, e := range f.Enemies {
		sum += e.Difficulty
	}
	return sum / float64(len(f.Enemies))
}

// Normalize заполняет значения по умолчанию
func (f *Fight) Normalize() {
	if f.DisplayMode != DisplaySimultaneous {
		f.DisplayMode = DisplaySequential
	}
	if f.BaseEnemyDamage <= 0 {
		f.BaseEnemyDamage = DefaultBaseEnemyDamage
	}
	for i := range f.Questions {
		if f.Questions[i].TimeLimit <= 0 {
			f.Questions[i].TimeLimit = DefaultQuestionTimeLimit
		}
	}
	for i := range f.Enemies {
		if f.Enemies[i].Difficulty <= 0 {
			f.Enemies[i].Difficulty = 1.0
		}
	}
}
