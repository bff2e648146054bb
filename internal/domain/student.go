package domain

// Stats - силовые статы и производные рейтинги
type Stats struct {
	Strength  int `json:"strength" yaml:"strength"`
	Intellect int `json:"intellect" yaml:"intellect"`
	Agility   int `json:"agility" yaml:"agility"`
	Mind      int `json:"mind" yaml:"mind"`
	Attack    int `json:"attack" yaml:"attack"`
	Defense   int `json:"defense" yaml:"defense"`
	Magic     int `json:"magic" yaml:"magic"`
	Ranged    int `json:"ranged" yaml:"ranged"`
	Health    int `json:"health" yaml:"health"`
	Mana      int `json:"mana" yaml:"mana"`
}

// Add складывает статы
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Strength:  s.Strength + o.Strength,
		Intellect: s.Intellect + o.Intellect,
		Agility:   s.Agility + o.Agility,
		Mind:      s.Mind + o.Mind,
		Attack:    s.Attack + o.Attack,
		Defense:   s.Defense + o.Defense,
		Magic:     s.Magic + o.Magic,
		Ranged:    s.Ranged + o.Ranged,
		Health:    s.Health + o.Health,
		Mana:      s.Mana + o.Mana,
	}
}

// Item - предмет экипировки
type Item struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Slot    string `yaml:"slot"`
	Bonuses Stats  `yaml:"bonuses"`
}

// Student - профиль участника. Приходит из внешнего сервиса ростеров.
type Student struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Class          string         `yaml:"class"`
	Variant        string         `yaml:"variant"`
	UnlockedLevels map[string]int `yaml:"unlocked_levels"` // класс -> уровень
	Equipment      []string       `yaml:"equipment"`       // id предметов
}

// Level - открытый уровень текущего класса (минимум 1)
func (s *Student) Level() int {
	if lvl := s.UnlockedLevels[s.Class]; lvl > 0 {
		return lvl
	}
	return 1
}

// Progress - мета-прогресс участника между боями
type Progress struct {
	ParticipantID       string
	Experience          int
	CompletedEncounters int
	Items               []string
}

// Reward - награда за победу
type Reward struct {
	ParticipantID string `json:"participantId"`
	Experience    int    `json:"experience"`
	ItemID        string `json:"itemId,omitempty"`
}

// EncounterSummary - итоговая статистика участника за бой
type EncounterSummary struct {
	SessionID        string
	FightID          string
	ParticipantID    string
	Class            string
	Victory          bool
	QuestionsSeen    int
	QuestionsCorrect int
	DamageDealt      int
	DamageBlocked    int
	DamageTaken      int
	HealingDone      int
	Deaths           int
	Experience       int
}
