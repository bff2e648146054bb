package domain

// PendingAction - невыполненный выбор участника на текущий раунд.
// Живет только в фазе abilities, очищается после резолва.
type PendingAction struct {
	AbilityID  string     `json:"abilityId"`
	TargetID   string     `json:"targetId,omitempty"`
	TargetType TargetType `json:"targetType,omitempty"`
}

// IsEmpty true, если способность не выбрана
func (p *PendingAction) IsEmpty() bool {
	return p == nil || p.AbilityID == ""
}

// HexEffect - проклятие (урон по времени) на враге
type HexEffect struct {
	EnemyID    string `json:"enemyId"`
	Damage     int    `json:"damage"`
	RoundsLeft int    `json:"roundsLeft"`
}

// Combatant - состояние участника в сессии
type Combatant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Class   string `json:"class"`
	Variant string `json:"variant,omitempty"`
	IsBot   bool   `json:"isBot,omitempty"`

	// Пулы ресурсов
	Health      int `json:"health"`
	MaxHealth   int `json:"maxHealth"`
	Mana        int `json:"mana"`
	MaxMana     int `json:"maxMana"`
	ComboPoints int `json:"comboPoints"`
	ComboCap    int `json:"comboCap"`
	Consumables int `json:"consumables"`

	// Кэш боевых характеристик. Считается один раз при входе.
	Attributes Stats `json:"attributes"`

	// Состояние раунда
	Answer          string         `json:"-"`
	HasAnswered     bool           `json:"hasAnswered"`
	IsCorrect       bool           `json:"isCorrect"`
	IsHealing       bool           `json:"isHealing"`
	HealTargetID    string         `json:"healTargetId,omitempty"`
	HealApplied     bool           `json:"healApplied,omitempty"`
	HealedAmount    int            `json:"healedAmount,omitempty"` // сколько вылечено в abilities
	BlockTargetID   string         `json:"blockTargetId,omitempty"`
	Pending         *PendingAction `json:"pending,omitempty"`
	Crafting        bool           `json:"crafting,omitempty"`
	Charging        bool           `json:"charging,omitempty"`
	ChargeRounds    int            `json:"chargeRounds,omitempty"`
	Hex             *HexEffect     `json:"hex,omitempty"`
	Threat          float64        `json:"threat"`
	LastDamageDealt int            `json:"lastDamageDealt"`

	// Цели прошлого раунда (для авто-таргета)
	LastTargetID      string `json:"lastTargetId,omitempty"`
	LastHealTargetID  string `json:"lastHealTargetId,omitempty"`
	LastBlockTargetID string `json:"lastBlockTargetId,omitempty"`

	// Счетчики за бой
	QuestionsSeen      int `json:"questionsSeen"`
	QuestionsCorrect   int `json:"questionsCorrect"`
	QuestionsIncorrect int `json:"questionsIncorrect"`
	DamageDealt        int `json:"damageDealt"`
	DamageBlocked      int `json:"damageBlocked"`
	DamageTaken        int `json:"damageTaken"`
	HealingDone        int `json:"healingDone"`
	Deaths             int `json:"deaths"`

	// Мета-прогресс
	Level               int            `json:"level"`
	CompletedEncounters int            `json:"completedEncounters"`
	AbilityLastUsed     map[string]int `json:"abilityLastUsed,omitempty"` // способность -> номер раунда
	UltimateUsed        bool           `json:"ultimateUsed,omitempty"`

	IsDead bool `json:"isDead"`
}

// IsAlive - жив ли участник
func (c *Combatant) IsAlive() bool {
	return !c.IsDead && c.Health > 0
}

// TakeDamage наносит урон. Возвращает true, если участник погиб именно этим ударом.
func (c *Combatant) TakeDamage(amount int) bool {
	if c.IsDead {
		return false
	}
	if amount < 0 {
		amount = 0
	}

	c.Health -= amount
	c.DamageTaken += amount

	if c.Health <= 0 {
		c.Health = 0
		c.IsDead = true
		c.Deaths++
		return true
	}
	return false
}

// Heal лечит и возвращает фактически восстановленное здоровье
func (c *Combatant) Heal(amount int) int {
	if c.IsDead || amount <= 0 {
		return 0 // Не лечим трупы
	}
	before := c.Health
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	return c.Health - before
}

// SpendMana тратит ману. Возвращает false, если не хватило.
func (c *Combatant) SpendMana(cost int) bool {
	if c.Mana < cost {
		return false
	}
	c.Mana -= cost
	return true
}

// RestoreMana - реген маны
func (c *Combatant) RestoreMana(amount int) {
	c.Mana += amount
	if c.Mana > c.MaxMana {
		c.Mana = c.MaxMana
	}
}

// AddCombo добавляет очко комбо (не выше лимита)
func (c *Combatant) AddCombo() {
	if c.ComboPoints < c.ComboCap {
		c.ComboPoints++
	}
}

// ResetRound очищает выбор прошлого раунда, запоминая цели для авто-таргета
func (c *Combatant) ResetRound() {
	if c.Pending != nil && c.Pending.TargetType != TargetAlly && c.Pending.TargetID != "" {
		c.LastTargetID = c.Pending.TargetID
	}
	if c.HealTargetID != "" {
		c.LastHealTargetID = c.HealTargetID
	}
	if c.BlockTargetID != "" {
		c.LastBlockTargetID = c.BlockTargetID
	}
	c.Answer = ""
	c.HasAnswered = false
	c.IsCorrect = false
	c.IsHealing = false
	c.HealTargetID = ""
	c.HealApplied = false
	c.HealedAmount = 0
	c.BlockTargetID = ""
	c.Pending = nil
	c.Crafting = false
}

// CooldownReady проверяет, прошел ли кулдаун способности
func (c *Combatant) CooldownReady(abilityID string, round, cooldown int) bool {
	if cooldown <= 0 {
		return true
	}
	last, ok := c.AbilityLastUsed[abilityID]
	if !ok {
		return true
	}
	return round-last >= cooldown
}

// MarkUsed запоминает раунд использования способности
func (c *Combatant) MarkUsed(abilityID string, round int) {
	if c.AbilityLastUsed == nil {
		c.AbilityLastUsed = make(map[string]int)
	}
	c.AbilityLastUsed[abilityID] = round
}

// Clone - глубокая копия
func (c *Combatant) Clone() *Combatant {
	cp := *c
	if c.Pending != nil {
		p := *c.Pending
		cp.Pending = &p
	}
	if c.Hex != nil {
		h := *c.Hex
		cp.Hex = &h
	}
	if c.AbilityLastUsed != nil {
		cp.AbilityLastUsed = make(map[string]int, len(c.AbilityLastUsed))
		for k, v := range c.AbilityLastUsed {
			cp.AbilityLastUsed[k] = v
		}
	}
	return &cp
}
