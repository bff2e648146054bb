package domain

import "time"

// SoloOptions - флаги соло-режима
type SoloOptions struct {
	HostID      string `json:"hostId"`
	GuildID     string `json:"guildId,omitempty"`
	AIEnabled   bool   `json:"aiEnabled"`
	JoinBlocked bool   `json:"joinBlocked"`
}

// Session - один запущенный бой.
// Сессия единолично владеет своими участниками и врагами.
// Мутирует только актор фазовой машины (engine.Instance).
type Session struct {
	ID      string `json:"id"`
	FightID string `json:"fightId"`
	Seed    int64  `json:"seed"`

	QuestionOrder  []int `json:"questionOrder"`
	QuestionIndex  int   `json:"questionIndex"` // позиция в QuestionOrder
	QuestionsAsked int   `json:"questionsAsked"`
	Round          int   `json:"round"`

	Phase Phase `json:"phase"`

	Participants map[string]*Combatant `json:"participants"`
	// Order - порядок входа. Задает стабильный порядок обхода участников.
	Order []string `json:"order"`

	DisplayMode         DisplayMode `json:"displayMode"`
	Enemies             []*Enemy    `json:"enemies"`
	Defeated            []*Enemy    `json:"defeated,omitempty"`
	EnemyHealthComputed bool        `json:"enemyHealthComputed"`
	BaseEnemyDamage     int         `json:"baseEnemyDamage"`

	ThreatLeaderID string `json:"threatLeaderId,omitempty"`

	Solo *SoloOptions `json:"solo,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession создает пустую сессию в фазе waiting
func NewSession(id, fightID string, seed int64) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		FightID:      fightID,
		Seed:         seed,
		Phase:        PhaseWaiting,
		Participants: make(map[string]*Combatant),
		Order:        make([]string, 0),
		DisplayMode:  DisplaySequential,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsSolo - сессия соло-режима
func (s *Session) IsSolo() bool {
	return s.Solo != nil
}

// AddParticipant регистрирует участника. Повторный вход не создает дубликат.
func (s *Session) AddParticipant(c *Combatant) bool {
	if _, ok := s.Participants[c.ID]; ok {
		return false
	}
	s.Participants[c.ID] = c
	s.Order = append(s.Order, c.ID)
	return true
}

// Ordered возвращает участников в порядке входа
func (s *Session) Ordered() []*Combatant {
	out := make([]*Combatant, 0, len(s.Order))
	for _, id := range s.Order {
		if c, ok := s.Participants[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Living возвращает живых участников в порядке входа
func (s *Session) Living() []*Combatant {
	out := make([]*Combatant, 0, len(s.Order))
	for _, c := range s.Ordered() {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Participant - участник по id (nil если нет)
func (s *Session) Participant(id string) *Combatant {
	if id == "" {
		return nil
	}
	return s.Participants[id]
}

// LivingParticipant - живой участник по id (nil если нет или мертв)
func (s *Session) LivingParticipant(id string) *Combatant {
	c := s.Participant(id)
	if c == nil || !c.IsAlive() {
		return nil
	}
	return c
}

// ActiveEnemies - враги, которых сейчас можно атаковать.
// В последовательном режиме это только первый живой враг списка.
func (s *Session) ActiveEnemies() []*Enemy {
	out := make([]*Enemy, 0, len(s.Enemies))
	for _, e := range s.Enemies {
		if !e.IsAlive() {
			continue
		}
		out = append(out, e)
		if s.DisplayMode == DisplaySequential {
			break
		}
	}
	return out
}

// Enemy - активный и живой враг по id (nil если нет)
func (s *Session) Enemy(id string) *Enemy {
	if id == "" {
		return nil
	}
	for _, e := range s.ActiveEnemies() {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// AnyEnemy ищет врага по id среди всех, включая мертвых
func (s *Session) AnyEnemy(id string) *Enemy {
	for _, e := range s.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// AllParticipantsDead - поражение. Пустая сессия не считается побежденной.
func (s *Session) AllParticipantsDead() bool {
	if len(s.Participants) == 0 {
		return false
	}
	for _, c := range s.Participants {
		if c.IsAlive() {
			return false
		}
	}
	return true
}

// AllEnemiesDefeated - победа: здоровье каждого врага <= 0
func (s *Session) AllEnemiesDefeated() bool {
	if len(s.Enemies) == 0 && len(s.Defeated) == 0 {
		return false
	}
	for _, e := range s.Enemies {
		if e.Health > 0 {
			return false
		}
	}
	return true
}

// CurrentQuestionNumber - номер вопроса в шаблоне
func (s *Session) CurrentQuestionNumber() int {
	if len(s.QuestionOrder) == 0 {
		return 0
	}
	return s.QuestionOrder[s.QuestionIndex%len(s.QuestionOrder)]
}

// AdvanceQuestion переходит к следующему вопросу, по кругу
func (s *Session) AdvanceQuestion() {
	if len(s.QuestionOrder) == 0 {
		return
	}
	s.QuestionIndex = (s.QuestionIndex + 1) % len(s.QuestionOrder)
}

// Clone - глубокая копия снимка
func (s *Session) Clone() *Session {
	cp := *s
	cp.QuestionOrder = append([]int(nil), s.QuestionOrder...)
	cp.Order = append([]string(nil), s.Order...)
	cp.Participants = make(map[string]*Combatant, len(s.Participants))
	for id, c := range s.Participants {
		cp.Participants[id] = c.Clone()
	}
	cp.Enemies = cloneEnemies(s.Enemies)
	cp.Defeated = cloneEnemies(s.Defeated)
	if s.Solo != nil {
		solo := *s.Solo
		cp.Solo = &solo
	}
	return &cp
}

func cloneEnemies(in []*Enemy) []*Enemy {
	if in == nil {
		return nil
	}
	out := make([]*Enemy, len(in))
	for i, e := range in {
		ce := *e
		out[i] = &ce
	}
	return out
}
