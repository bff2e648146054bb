package engine

import (
	"fightschool-server/internal/config"
	"time"
)

// Timings - длительности фаз в реальном времени
type Timings struct {
	Unit             time.Duration // одна "секунда" игрового таймера
	AbilitiesCeiling time.Duration
	AbilitiesIdle    time.Duration
	ModalUnit        time.Duration // показ одного события обратной связи
	AIBase           time.Duration
	AIPerAttack      time.Duration
	AIMin            time.Duration
	StateCheckPause  time.Duration
	GameOverGrace    time.Duration
}

// TimingsFrom переводит секцию [timing] конфига в длительности
func TimingsFrom(c config.TimingConfig) Timings {
	return Timings{
		Unit:             c.Unit,
		AbilitiesCeiling: time.Duration(c.AbilitiesCeiling) * c.Unit,
		AbilitiesIdle:    time.Duration(c.AbilitiesIdle) * c.Unit,
		ModalUnit:        c.ModalUnit,
		AIBase:           c.AIBase,
		AIPerAttack:      c.AIPerAttack,
		AIMin:            c.AIMin,
		StateCheckPause:  c.StateCheckPause,
		GameOverGrace:    c.GameOverGrace,
	}
}

// QuestionDeadline - время на ответ. Лимит вопроса задан в единицах таймера.
func (t Timings) QuestionDeadline(limit int) time.Duration {
	return time.Duration(limit) * t.Unit
}

// ResolutionHold - пауза на показ модалки: по ModalUnit на событие, минимум одно
func (t Timings) ResolutionHold(maxEvents int) time.Duration {
	if maxEvents < 1 {
		maxEvents = 1
	}
	return time.Duration(maxEvents) * t.ModalUnit
}

// AIHold - пауза на анимацию атак врагов
func (t Timings) AIHold(attacks int) time.Duration {
	if attacks == 0 {
		return t.AIMin
	}
	return t.AIBase + time.Duration(attacks)*t.AIPerAttack
}

// Config хранит параметры запуска движка
type Config struct {
	// Seed - фиксированное зерно сессий. 0 - случайное зерно для каждой сессии.
	Seed    int64
	Timings Timings

	// SoloCompanions - сколько ботов получает соло-бой, если в шаблоне не задано
	SoloCompanions int
	// BotAccuracy - доля верных ответов ботов-компаньонов
	BotAccuracy float64
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		Timings:        TimingsFrom(config.Defaults().Timing),
		SoloCompanions: 2,
		BotAccuracy:    0.7,
	}
}
