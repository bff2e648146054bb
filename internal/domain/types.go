package domain

import "strings"

// Phase - фаза раунда. Порядок фиксирован:
// waiting -> question -> abilities -> question_resolution -> enemy_ai -> state_check -> (question | game_over)
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseQuestion   Phase = "question"
	PhaseAbilities  Phase = "abilities"
	PhaseResolution Phase = "question_resolution"
	PhaseEnemyAI    Phase = "enemy_ai"
	PhaseStateCheck Phase = "state_check"
	PhaseGameOver   Phase = "game_over"
)

// IsTerminal true только для game_over
func (p Phase) IsTerminal() bool {
	return p == PhaseGameOver
}

// Role - боевая роль класса. Коллектор действий делит участников по ролям.
type Role uint8

const (
	RoleDamage Role = iota
	RoleTank
	RoleHealer
)

func (r Role) String() string {
	switch r {
	case RoleTank:
		return "tank"
	case RoleHealer:
		return "healer"
	default:
		return "damage"
	}
}

// DamageType - класс урона, определяет базовую формулу
type DamageType uint8

const (
	DamagePhysical DamageType = iota
	DamageMagical
	DamageRanged
	DamageHybrid
)

func (d DamageType) String() string {
	switch d {
	case DamageMagical:
		return "magical"
	case DamageRanged:
		return "ranged"
	case DamageHybrid:
		return "hybrid"
	default:
		return "physical"
	}
}

// TargetType - на кого направлено действие
type TargetType string

const (
	TargetNone  TargetType = ""
	TargetAlly  TargetType = "ally"
	TargetEnemy TargetType = "enemy"
)

// ParseTargetType нечувствителен к регистру. Неизвестное значение -> TargetNone.
func ParseTargetType(s string) TargetType {
	switch TargetType(strings.ToLower(strings.TrimSpace(s))) {
	case TargetAlly:
		return TargetAlly
	case TargetEnemy:
		return TargetEnemy
	}
	return TargetNone
}

// DisplayMode - как показываются враги боя
type DisplayMode string

const (
	// DisplaySequential - враги выходят по одному, побежденный убирается из активного списка
	DisplaySequential DisplayMode = "sequential"
	// DisplaySimultaneous - все враги на поле до конца боя
	DisplaySimultaneous DisplayMode = "simultaneous"
)

// Outcome - результат state_check
type Outcome uint8

const (
	OutcomeContinue Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "continue"
	}
}
