package domain

// Классы персонажей
const (
	ClassWarrior = "warrior"
	ClassPriest  = "priest"
	ClassScout   = "scout"
	ClassWizard  = "wizard"
	ClassWarlock = "warlock"
	ClassRanger  = "ranger"
)

// Идентификаторы способностей, общие для всех классов
const (
	AbilityAttack = "attack" // Обычная атака по формуле класса
	AbilityPotion = "potion" // Выпить зелье (нужен расходник)
)

// Ресурсы
const (
	DefaultComboCap    = 5
	ManaRegenPerRound  = 10
	ChargeRoundsToFire = 2
	PotionHealAmount   = 15
	HexRounds          = 3
	UltimateMinLevel   = 3
)

// Множители угрозы
const (
	ThreatPerDamageTank  = 2.0
	ThreatPerDamage      = 1.0
	ThreatPerHeal        = 0.5
	ThreatPerBlockDamage = 1.0
)

// Параметры здоровья врагов
const (
	EnemyBaseHealthPerPlayer = 30
	EnemyHealthPerLevel      = 5
	DefenseReductionDivisor  = 4
	EnemyAIDamageBonus       = 1
	DefaultBaseEnemyDamage   = 2
	DefaultQuestionTimeLimit = 20
)

// Границы опыта
const (
	XPMinCap        = 100
	XPMaxCap        = 1000
	XPMinDifficulty = 0.5
	XPMaxDifficulty = 3.0
)
