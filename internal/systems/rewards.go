package systems

import (
	"fightschool-server/internal/domain"
	"math/rand"
)

// RollLoot выбирает предмет из таблицы добычи по весам ("" если таблица пуста)
func RollLoot(table []domain.LootEntry, rng *rand.Rand) string {
	total := 0
	for _, e := range table {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	if total == 0 {
		return ""
	}
	roll := rng.Intn(total)
	for _, e := range table {
		if e.Weight <= 0 {
			continue
		}
		if roll < e.Weight {
			return e.ItemID
		}
		roll -= e.Weight
	}
	return ""
}

// Rewards - награды за победу: опыт и один предмет каждому участнику-человеку.
// Боты наград не получают. Генератор зависит только от зерна сессии.
func Rewards(s *domain.Session, fight *domain.Fight) []domain.Reward {
	rng := rand.New(rand.NewSource(s.Seed + int64(s.Round)))
	avg := fight.AverageDifficulty()

	rewards := make([]domain.Reward, 0, len(s.Order))
	for _, c := range s.Ordered() {
		if c.IsBot {
			continue
		}
		rewards = append(rewards, domain.Reward{
			ParticipantID: c.ID,
			Experience:    Experience(c, avg),
			ItemID:        RollLoot(fight.Loot, rng),
		})
	}
	return rewards
}

// Summaries - итоговая статистика всех участников-людей
func Summaries(s *domain.Session, victory bool, rewards []domain.Reward) []domain.EncounterSummary {
	xp := make(map[string]int, len(rewards))
	for _, r := range rewards {
		xp[r.ParticipantID] = r.Experience
	}

	out := make([]domain.EncounterSummary, 0, len(s.Order))
	for _, c := range s.Ordered() {
		if c.IsBot {
			continue
		}
		out = append(out, domain.EncounterSummary{
			SessionID:        s.ID,
			FightID:          s.FightID,
			ParticipantID:    c.ID,
			Class:            c.Class,
			Victory:          victory,
			QuestionsSeen:    c.QuestionsSeen,
			QuestionsCorrect: c.QuestionsCorrect,
			DamageDealt:      c.DamageDealt,
			DamageBlocked:    c.DamageBlocked,
			DamageTaken:      c.DamageTaken,
			HealingDone:      c.HealingDone,
			Deaths:           c.Deaths,
			Experience:       xp[c.ID],
		})
	}
	return out
}
