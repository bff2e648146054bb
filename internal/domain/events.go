package domain

// FeedbackKind - тип события обратной связи за раунд
type FeedbackKind string

const (
	FeedbackCorrectDamage FeedbackKind = "correct_damage"
	FeedbackDamageTaken   FeedbackKind = "damage_taken"
	FeedbackHealed        FeedbackKind = "healed"
	FeedbackHealReceived  FeedbackKind = "heal_received"
	FeedbackBlocked       FeedbackKind = "blocked"
	FeedbackGotBlocked    FeedbackKind = "got_blocked"
	FeedbackDotDamage     FeedbackKind = "dot_damage"
	FeedbackCrafted       FeedbackKind = "crafted"
	FeedbackLifesteal     FeedbackKind = "lifesteal"
	FeedbackCharging      FeedbackKind = "charging"
)

// FeedbackEvent - одно дискретное событие для модалки клиента
type FeedbackEvent struct {
	Kind     FeedbackKind `json:"kind"`
	Amount   int          `json:"amount"`
	SourceID string       `json:"sourceId,omitempty"`
	TargetID string       `json:"targetId,omitempty"`
	Ability  string       `json:"ability,omitempty"`
}

// Feedback - события раунда по участникам. Никогда не сохраняется.
type Feedback map[string][]FeedbackEvent

// Add дописывает событие участнику
func (f Feedback) Add(participantID string, ev FeedbackEvent) {
	f[participantID] = append(f[participantID], ev)
}

// Merge добавляет все события other в f
func (f Feedback) Merge(other Feedback) {
	for id, evs := range other {
		f[id] = append(f[id], evs...)
	}
}

// MaxPerParticipant - максимальное число событий у одного участника.
// От него зависит длительность фазы question_resolution.
func (f Feedback) MaxPerParticipant() int {
	most := 0
	for _, evs := range f {
		if len(evs) > most {
			most = len(evs)
		}
	}
	return most
}

// Find возвращает первое событие нужного типа у участника
func (f Feedback) Find(participantID string, kind FeedbackKind) (FeedbackEvent, bool) {
	for _, ev := range f[participantID] {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return FeedbackEvent{}, false
}

// EnemyAttack - одна атака врага в фазе enemy_ai
type EnemyAttack struct {
	EnemyID   string `json:"enemyId"`
	EnemyName string `json:"enemyName"`
	TargetID  string `json:"targetId"`
	BlockerID string `json:"blockerId,omitempty"`
	Damage    int    `json:"damage"`
	Blocked   bool   `json:"blocked"`
	Killed    bool   `json:"killed"`
}
