package systems

import (
	"fightschool-server/internal/domain"
	"fightschool-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ThreatLeader - живой участник со строго наибольшей угрозой.
// При равенстве побеждает тот, кто вошел раньше.
func ThreatLeader(s *domain.Session) *domain.Combatant {
	var leader *domain.Combatant
	for _, c := range s.Living() {
		if leader == nil || c.Threat > leader.Threat {
			leader = c
		}
	}
	return leader
}

// EnemyAttackDamage - урон атаки врага в фазе enemy_ai (на единицу больше урона за ошибку)
func EnemyAttackDamage(s *domain.Session) int {
	base := s.BaseEnemyDamage
	if base <= 0 {
		base = domain.DefaultBaseEnemyDamage
	}
	return base + domain.EnemyAIDamageBonus
}

type attackPlan struct {
	enemy  *domain.Enemy
	victim *domain.Combatant
}

// RunEnemyAI - каждый живой активный враг атакует лидера по угрозе.
// В режиме sequential активен только первый живой враг, остальные ждут очереди.
// Цели всех атак вычисляются до применения урона и в течение раунда не меняются.
// Если жертва погибла от предыдущей атаки, следующая атака по ней наносит 0.
func RunEnemyAI(in *domain.Session) (*domain.Session, []domain.EnemyAttack) {
	s := in.Clone()
	log := logger.Log.WithFields(logrus.Fields{
		"component":  "enemy_ai",
		"session_id": s.ID,
		"round":      s.Round,
	})

	var plans []attackPlan
	for _, e := range s.ActiveEnemies() {
		victim := ThreatLeader(s)
		if victim == nil {
			break
		}
		plans = append(plans, attackPlan{enemy: e, victim: victim})
	}

	dmg := EnemyAttackDamage(s)
	attacks := make([]domain.EnemyAttack, 0, len(plans))
	for _, p := range plans {
		atk := domain.EnemyAttack{
			EnemyID:   p.enemy.ID,
			EnemyName: p.enemy.Name,
			TargetID:  p.victim.ID,
		}

		switch {
		case !p.victim.IsAlive():
			// цель уже мертва, перенацеливания нет
		default:
			if blocker := FindBlocker(s, p.victim.ID); blocker != nil {
				blocker.DamageBlocked += dmg
				blocker.Threat += BlockThreat(dmg)
				atk.BlockerID = blocker.ID
				atk.Blocked = true
				atk.Damage = dmg
				break
			}
			taken := ReduceByDefense(dmg, p.victim.Attributes.Defense)
			atk.Killed = p.victim.TakeDamage(taken)
			atk.Damage = taken
		}

		log.WithFields(logrus.Fields{
			"enemy_id":  atk.EnemyID,
			"target_id": atk.TargetID,
			"damage":    atk.Damage,
			"blocked":   atk.Blocked,
			"killed":    atk.Killed,
		}).Debug("Enemy attack applied.")
		attacks = append(attacks, atk)
	}

	if leader := ThreatLeader(s); leader != nil {
		s.ThreatLeaderID = leader.ID
	} else {
		s.ThreatLeaderID = ""
	}
	return s, attacks
}
