package systems

import (
	"fightschool-server/internal/domain"
	"fmt"
)

// FormulaContext - входные данные формулы способности
type FormulaContext struct {
	Actor  *domain.Combatant
	Class  *ClassDef
	Target *domain.Enemy // nil для способностей без цели
	Round  int
}

// Effect - результат формулы. Применяет его резолвер.
type Effect struct {
	Damage        int
	AllEnemies    bool
	SelfHeal      int
	Hex           *domain.HexEffect
	ConsumesCombo bool
	AddsCombo     bool
}

// Formula - чистая функция способности
type Formula func(ctx FormulaContext) Effect

// AbilityDef - описание способности
type AbilityDef struct {
	ID         string
	Class      string // "" - доступна всем классам
	Target     domain.TargetType
	Cooldown   int // в раундах
	ManaCost   int
	MinCombo   int
	Consumable bool // тратит расходник
	Ultimate   bool
	Formula    Formula
}

// NeedsTarget - способность нельзя применить без явной цели
func (a *AbilityDef) NeedsTarget() bool {
	return a.Target != domain.TargetNone
}

func defaultDamage(ctx FormulaContext) int {
	return DefaultDamage(ctx.Class.DamageType, ctx.Actor.Attributes)
}

func ultimate(ctx FormulaContext) Effect {
	return Effect{Damage: 2 * defaultDamage(ctx), AllEnemies: true}
}

var abilityRegistry = map[string]*AbilityDef{
	domain.AbilityAttack: {
		ID: domain.AbilityAttack,
		Formula: func(ctx FormulaContext) Effect {
			return Effect{Damage: defaultDamage(ctx), AddsCombo: ctx.Class.ComboCap > 0}
		},
	},
	domain.AbilityPotion: {
		ID:         domain.AbilityPotion,
		Consumable: true,
		Formula: func(FormulaContext) Effect {
			return Effect{SelfHeal: domain.PotionHealAmount}
		},
	},

	// Воин
	"shield_slam": {
		ID:       "shield_slam",
		Class:    domain.ClassWarrior,
		Target:   domain.TargetEnemy,
		Cooldown: 2,
		Formula: func(ctx FormulaContext) Effect {
			return Effect{Damage: defaultDamage(ctx) + ctx.Actor.Attributes.Defense/2}
		},
	},

	// Жрец
	"smite": {
		ID:       "smite",
		Class:    domain.ClassPriest,
		ManaCost: 10,
		Formula: func(ctx FormulaContext) Effect {
			return Effect{Damage: defaultDamage(ctx) * 5 / 4}
		},
	},

	// Разведчик: тратит все комбо, каждое очко +50% базового урона
	"eviscerate": {
		ID:       "eviscerate",
		Class:    domain.ClassScout,
		MinCombo: 1,
		Formula: func(ctx FormulaContext) Effect {
			base := defaultDamage(ctx)
			return Effect{Damage: base + base*ctx.Actor.ComboPoints/2, ConsumesCombo: true}
		},
	},

	// Волшебник
	"fireball": {
		ID:       "fireball",
		Class:    domain.ClassWizard,
		Target:   domain.TargetEnemy,
		ManaCost: 20,
		Formula: func(ctx FormulaContext) Effect {
			return Effect{Damage: defaultDamage(ctx) * 3 / 2}
		},
	},

	// Чернокнижник
	"hex": {
		ID:       "hex",
		Class:    domain.ClassWarlock,
		Target:   domain.TargetEnemy,
		Cooldown: domain.HexRounds,
		ManaCost: 10,
		Formula: func(ctx FormulaContext) Effect {
			perRound := defaultDamage(ctx) / 2
			if perRound < 1 {
				perRound = 1
			}
			hex := &domain.HexEffect{Damage: perRound, RoundsLeft: domain.HexRounds}
			if ctx.Target != nil {
				hex.EnemyID = ctx.Target.ID
			}
			return Effect{Hex: hex}
		},
	},
	"drain_life": {
		ID:       "drain_life",
		Class:    domain.ClassWarlock,
		ManaCost: 15,
		Formula: func(ctx FormulaContext) Effect {
			dmg := defaultDamage(ctx)
			return Effect{Damage: dmg, SelfHeal: dmg / 2}
		},
	},

	// Следопыт
	"aimed_shot": {
		ID:       "aimed_shot",
		Class:    domain.ClassRanger,
		Target:   domain.TargetEnemy,
		Cooldown: 3,
		Formula: func(ctx FormulaContext) Effect {
			return Effect{Damage: defaultDamage(ctx) * 2}
		},
	},

	// Ультимейты: раз за бой, с 3-го уровня класса, бьют всех активных врагов
	"earthshatter": {ID: "earthshatter", Class: domain.ClassWarrior, Ultimate: true, Formula: ultimate},
	"holy_nova":    {ID: "holy_nova", Class: domain.ClassPriest, Ultimate: true, Formula: ultimate},
	"blade_flurry": {ID: "blade_flurry", Class: domain.ClassScout, Ultimate: true, Formula: ultimate},
	"meteor":       {ID: "meteor", Class: domain.ClassWizard, Ultimate: true, Formula: ultimate},
	"doom":         {ID: "doom", Class: domain.ClassWarlock, Ultimate: true, Formula: ultimate},
	"volley":       {ID: "volley", Class: domain.ClassRanger, Ultimate: true, Formula: ultimate},
}

// Ability возвращает описание способности (nil, если такой нет)
func Ability(id string) *AbilityDef {
	return abilityRegistry[id]
}

// ChargedBlast - выстрел волшебника после накопления заряда
func ChargedBlast(c *domain.Combatant) int {
	return DefaultDamage(domain.DamageMagical, c.Attributes) * (1 + c.ChargeRounds)
}

// CanUse проверяет предусловия способности для участника в раунде round.
// Ошибки - domain.Err* предусловий, их вызывающий код молча отбрасывает.
func CanUse(c *domain.Combatant, abilityID string, round int) (*AbilityDef, error) {
	def := Ability(abilityID)
	if def == nil {
		return nil, fmt.Errorf("unknown ability %q: %w", abilityID, domain.ErrNotEligible)
	}
	if !c.IsAlive() {
		return def, domain.ErrActorDead
	}
	if def.Class != "" && def.Class != c.Class {
		return def, fmt.Errorf("%s is not a %s ability: %w", abilityID, c.Class, domain.ErrNotEligible)
	}
	if def.Ultimate {
		if c.Level < domain.UltimateMinLevel {
			return def, fmt.Errorf("ultimate locked below level %d: %w", domain.UltimateMinLevel, domain.ErrNotEligible)
		}
		if c.UltimateUsed {
			return def, fmt.Errorf("ultimate already used: %w", domain.ErrNoResource)
		}
	}
	if !c.CooldownReady(def.ID, round, def.Cooldown) {
		return def, fmt.Errorf("%s on cooldown: %w", abilityID, domain.ErrNoResource)
	}
	if c.Mana < def.ManaCost {
		return def, fmt.Errorf("not enough mana for %s: %w", abilityID, domain.ErrNoResource)
	}
	if c.ComboPoints < def.MinCombo {
		return def, fmt.Errorf("not enough combo for %s: %w", abilityID, domain.ErrNoResource)
	}
	if def.Consumable && c.Consumables < 1 {
		return def, fmt.Errorf("no consumables: %w", domain.ErrNoResource)
	}
	return def, nil
}

// payCost списывает ресурсы способности. Вызывается только после успешного CanUse.
func payCost(c *domain.Combatant, def *AbilityDef, round int) {
	c.SpendMana(def.ManaCost)
	if def.Consumable {
		c.Consumables--
	}
	if def.Ultimate {
		c.UltimateUsed = true
	}
	c.MarkUsed(def.ID, round)
}
