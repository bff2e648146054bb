package systems

import (
	"fightschool-server/internal/domain"
	"sort"
)

// ClassDef - описание класса персонажа
type ClassDef struct {
	ID         string
	Role       domain.Role
	DamageType domain.DamageType
	Base       domain.Stats // Статы 1-го уровня
	PerLevel   domain.Stats // Прирост за каждый открытый уровень выше первого
	Abilities  []string     // Способности класса (без общих attack/potion)
	Ultimate   string
	ComboCap   int // 0 - класс не копит комбо
	CanCharge  bool
}

var classRegistry = map[string]*ClassDef{
	domain.ClassWarrior: {
		ID:         domain.ClassWarrior,
		Role:       domain.RoleTank,
		DamageType: domain.DamagePhysical,
		Base:       domain.Stats{Strength: 6, Intellect: 1, Agility: 2, Mind: 2, Attack: 5, Defense: 8, Health: 40},
		PerLevel:   domain.Stats{Strength: 1, Attack: 1, Defense: 2, Health: 5},
		Abilities:  []string{"shield_slam"},
		Ultimate:   "earthshatter",
	},
	domain.ClassPriest: {
		ID:         domain.ClassPriest,
		Role:       domain.RoleHealer,
		DamageType: domain.DamageMagical,
		Base:       domain.Stats{Strength: 1, Intellect: 5, Agility: 2, Mind: 6, Attack: 1, Defense: 3, Magic: 5, Health: 28, Mana: 60},
		PerLevel:   domain.Stats{Intellect: 1, Mind: 1, Magic: 1, Health: 3, Mana: 5},
		Abilities:  []string{"smite"},
		Ultimate:   "holy_nova",
	},
	domain.ClassScout: {
		ID:         domain.ClassScout,
		Role:       domain.RoleDamage,
		DamageType: domain.DamagePhysical,
		Base:       domain.Stats{Strength: 4, Intellect: 1, Agility: 6, Mind: 1, Attack: 6, Defense: 3, Health: 30},
		PerLevel:   domain.Stats{Strength: 1, Agility: 1, Attack: 1, Health: 4},
		Abilities:  []string{"eviscerate"},
		Ultimate:   "blade_flurry",
		ComboCap:   domain.DefaultComboCap,
	},
	domain.ClassWizard: {
		ID:         domain.ClassWizard,
		Role:       domain.RoleDamage,
		DamageType: domain.DamageMagical,
		Base:       domain.Stats{Strength: 1, Intellect: 7, Agility: 2, Mind: 3, Attack: 1, Defense: 2, Magic: 6, Health: 26, Mana: 80},
		PerLevel:   domain.Stats{Intellect: 1, Magic: 1, Health: 3, Mana: 10},
		Abilities:  []string{"fireball"},
		Ultimate:   "meteor",
		CanCharge:  true,
	},
	domain.ClassWarlock: {
		ID:         domain.ClassWarlock,
		Role:       domain.RoleDamage,
		DamageType: domain.DamageHybrid,
		Base:       domain.Stats{Strength: 1, Intellect: 4, Agility: 3, Mind: 4, Attack: 1, Defense: 2, Magic: 5, Health: 30, Mana: 60},
		PerLevel:   domain.Stats{Agility: 1, Mind: 1, Magic: 1, Health: 4, Mana: 5},
		Abilities:  []string{"hex", "drain_life"},
		Ultimate:   "doom",
	},
	domain.ClassRanger: {
		ID:         domain.ClassRanger,
		Role:       domain.RoleDamage,
		DamageType: domain.DamageRanged,
		Base:       domain.Stats{Strength: 2, Intellect: 1, Agility: 6, Mind: 2, Attack: 2, Defense: 3, Ranged: 6, Health: 32},
		PerLevel:   domain.Stats{Agility: 1, Ranged: 1, Health: 4},
		Abilities:  []string{"aimed_shot"},
		Ultimate:   "volley",
	},
}

// Class возвращает описание класса. Неизвестный класс считается воином.
func Class(id string) *ClassDef {
	if def, ok := classRegistry[id]; ok {
		return def
	}
	return classRegistry[domain.ClassWarrior]
}

// IsKnownClass - есть ли класс в реестре
func IsKnownClass(id string) bool {
	_, ok := classRegistry[id]
	return ok
}

// ClassIDs - отсортированный список классов
func ClassIDs() []string {
	ids := make([]string, 0, len(classRegistry))
	for id := range classRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RoleOf - роль участника по классу
func RoleOf(c *domain.Combatant) domain.Role {
	return Class(c.Class).Role
}

// BuildAttributes считает боевые характеристики: база класса + прирост за уровни + экипировка.
// Вызывается один раз при входе в сессию.
func BuildAttributes(classID string, level int, items []domain.Item) domain.Stats {
	def := Class(classID)
	if level < 1 {
		level = 1
	}

	attrs := def.Base
	for i := 1; i < level; i++ {
		attrs = attrs.Add(def.PerLevel)
	}
	for _, it := range items {
		attrs = attrs.Add(it.Bonuses)
	}
	if attrs.Health < 1 {
		attrs.Health = 1
	}
	if attrs.Mana < 0 {
		attrs.Mana = 0
	}
	return attrs
}

// NewCombatant собирает участника из профиля студента
func NewCombatant(st *domain.Student, items []domain.Item, progress *domain.Progress) *domain.Combatant {
	def := Class(st.Class)
	level := st.Level()
	attrs := BuildAttributes(def.ID, level, items)

	c := &domain.Combatant{
		ID:        st.ID,
		Name:      st.Name,
		Class:     def.ID,
		Variant:   st.Variant,
		Health:    attrs.Health,
		MaxHealth: attrs.Health,
		Mana:      attrs.Mana,
		MaxMana:   attrs.Mana,
		ComboCap:  def.ComboCap,

		Attributes: attrs,
		Level:      level,
	}
	if progress != nil {
		c.CompletedEncounters = progress.CompletedEncounters
	}
	return c
}
