package engine

import (
	"context"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"time"

	"github.com/sirupsen/logrus"
)

// Фазы раунда:
// waiting -> question -> abilities -> question_resolution -> enemy_ai -> state_check -> (question | game_over)
//
// Каждый переход отменяет таймеры прошлой фазы. Защелка phaseEnded гарантирует,
// что фаза завершится ровно один раз, какой бы триггер ни сработал первым.

// beginPhase переключает фазу и сбрасывает защелку
func (i *Instance) beginPhase(p domain.Phase) {
	i.cancelTimers()
	i.phaseEnded = false
	i.phaseStarted = time.Now()
	i.Session.Phase = p

	i.log.WithFields(logrus.Fields{
		"phase": p,
		"round": i.Session.Round,
	}).Debug("Phase entered")
}

// endPhase ставит защелку. false - фаза уже завершена другим триггером.
func (i *Instance) endPhase() bool {
	if i.phaseEnded {
		return false
	}
	i.phaseEnded = true
	i.cancelTimers()
	return true
}

func (i *Instance) onTimer(ev timerEvent) {
	if ev.kind == timerTick {
		// Снимаем до обработки: onAbilitiesTick сам взводит следующий тик
		i.polling.Store(false)
	}
	if ev.gen != i.timers.gen {
		return // таймер прошлой фазы
	}

	switch i.Session.Phase {
	case domain.PhaseQuestion:
		i.exitQuestion("deadline")
	case domain.PhaseAbilities:
		if ev.kind == timerTick {
			i.onAbilitiesTick()
			return
		}
		i.exitAbilities("ceiling")
	case domain.PhaseResolution:
		if i.endPhase() {
			i.enterEnemyAI()
		}
	case domain.PhaseEnemyAI:
		if i.endPhase() {
			i.enterStateCheck()
		}
	case domain.PhaseStateCheck:
		if i.endPhase() {
			i.enterQuestion()
		}
	case domain.PhaseGameOver:
		if i.endPhase() {
			// Cleanup останавливает этот же цикл, поэтому не из актора
			go i.Service.Cleanup(i.ID, "game over")
		}
	}
}

// --- question ---

func (i *Instance) enterQuestion() {
	s := i.Session
	i.beginPhase(domain.PhaseQuestion)

	if !s.EnemyHealthComputed {
		systems.InitEnemyHealth(s)
		i.log.WithField("enemies", len(s.Enemies)).Info("Enemy health computed")
	}
	for _, c := range s.Ordered() {
		c.ResetRound()
	}
	s.Round++
	s.QuestionsAsked++

	q := i.currentQuestion()
	deadline := i.timings.QuestionDeadline(q.TimeLimit)

	i.persist()
	i.broadcastState()
	i.broadcastPhase(deadline)
	i.broadcast(api.ServerMessage{Type: api.MsgQuestion, Question: toQuestionView(q, s.QuestionsAsked)})
	i.armDeadline(deadline)
}

func (i *Instance) exitQuestion(reason string) {
	if !i.endPhase() {
		return
	}
	s := i.Session
	systems.EvaluateAnswers(s, i.currentQuestion())

	correct := 0
	for _, c := range s.Living() {
		if c.IsCorrect {
			correct++
		}
	}
	i.log.WithFields(logrus.Fields{
		"reason":  reason,
		"round":   s.Round,
		"correct": correct,
		"living":  len(s.Living()),
	}).Info("Question closed")

	i.enterAbilities()
}

// --- abilities ---

func (i *Instance) enterAbilities() {
	s := i.Session
	i.beginPhase(domain.PhaseAbilities)
	i.lastActivity = time.Now()

	if healed := systems.ApplyLockedHeals(s); len(healed) > 0 {
		i.log.WithField("healers", healed).Debug("Locked heals applied")
	}

	i.broadcastState()
	i.broadcastPhase(i.timings.AbilitiesCeiling)
	i.armDeadline(i.timings.AbilitiesCeiling)
	i.armTick()
}

// onAbilitiesTick - раз в единицу: таймер клиентам, опрос готовности, выход по бездействию
func (i *Instance) onAbilitiesTick() {
	if i.phaseEnded {
		return
	}
	s := i.Session

	left := i.unitsLeft(i.timings.AbilitiesCeiling - time.Since(i.phaseStarted))
	i.broadcast(api.ServerMessage{Type: api.MsgPhaseTimer, Phase: string(s.Phase), SecondsRemaining: &left})

	if systems.AllRequiredSubmitted(s) {
		i.exitAbilities("all_submitted")
		return
	}
	if time.Since(i.lastActivity) >= i.timings.AbilitiesIdle {
		i.exitAbilities("inactivity")
		return
	}
	i.armTick()
}

func (i *Instance) exitAbilities(reason string) {
	if !i.endPhase() {
		return
	}
	touched := systems.AutoTargetAll(i.Session)
	i.log.WithFields(logrus.Fields{
		"reason":       reason,
		"round":        i.Session.Round,
		"auto_targets": len(touched),
	}).Info("Abilities closed")

	i.enterResolution()
}

// --- question_resolution ---

func (i *Instance) enterResolution() {
	i.beginPhase(domain.PhaseResolution)

	res := systems.Resolve(i.Session, i.currentQuestion())
	i.Session = res.Session
	s := i.Session

	i.persist()
	i.broadcastState()
	i.broadcastPhase(0)

	// Обратная связь - только адресату
	for _, id := range s.Order {
		events := res.Feedback[id]
		if len(events) == 0 {
			continue
		}
		i.Service.Hub.SendToParticipant(s.ID, id, api.ServerMessage{
			Type:      api.MsgResolutionFeedback,
			SessionID: s.ID,
			Feedback:  toFeedbackViews(events),
		})
	}
	i.broadcast(api.ServerMessage{Type: api.MsgPartyDamageSummary, PartyDamage: toPartyDamageView(res)})

	if res.NextEnemy != nil {
		next := toEnemyView(res.NextEnemy)
		i.broadcast(api.ServerMessage{Type: api.MsgNextEnemy, Enemy: &next})
	}

	i.armDeadline(i.timings.ResolutionHold(res.Feedback.MaxPerParticipant()))
}

// --- enemy_ai ---

func (i *Instance) enterEnemyAI() {
	i.beginPhase(domain.PhaseEnemyAI)

	next, attacks := systems.RunEnemyAI(i.Session)
	i.Session = next

	i.persist()
	i.broadcastState()
	i.broadcastPhase(0)
	i.broadcast(api.ServerMessage{Type: api.MsgEnemyAIAttack, Attacks: toAttackViews(attacks)})

	i.armDeadline(i.timings.AIHold(len(attacks)))
}

// --- state_check ---

func (i *Instance) enterStateCheck() {
	s := i.Session
	i.beginPhase(domain.PhaseStateCheck)

	outcome := systems.Outcome(s)
	i.log.WithFields(logrus.Fields{
		"round":   s.Round,
		"outcome": outcome.String(),
	}).Info("State checked")

	if outcome != domain.OutcomeContinue {
		i.finish(outcome, false)
		return
	}

	s.AdvanceQuestion()
	i.persist()
	i.broadcast(api.ServerMessage{Type: api.MsgNextQuestion, QuestionNumber: s.QuestionsAsked + 1})
	i.armDeadline(i.timings.StateCheckPause)
}

// --- game_over ---

// finish - победа, поражение или завершение хостом.
// Итоги и награды сохраняются до финальной рассылки; очистка после grace.
func (i *Instance) finish(outcome domain.Outcome, byHost bool) {
	s := i.Session
	i.beginPhase(domain.PhaseGameOver)
	victory := outcome == domain.OutcomeVictory

	var rewards []domain.Reward
	if victory {
		rewards = systems.Rewards(s, i.Fight)
	}
	summaries := systems.Summaries(s, victory, rewards)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := i.Service.Store.SaveSummaries(ctx, summaries); err != nil {
		i.log.WithError(err).Error("Failed to save encounter summaries")
	}
	if len(rewards) > 0 {
		if err := i.Service.Store.ApplyRewards(ctx, rewards); err != nil {
			i.log.WithError(err).Error("Failed to apply rewards")
		}
	}
	i.persist()

	i.broadcast(api.ServerMessage{
		Type:    api.MsgGameOver,
		State:   BuildSessionView(s),
		Victory: &victory,
		Rewards: toRewardViews(rewards),
	})
	i.saveJournal(outcome)

	i.log.WithFields(logrus.Fields{
		"outcome": outcome.String(),
		"rounds":  s.Round,
		"by_host": byHost,
	}).Info("Fight over")

	grace := i.timings.GameOverGrace
	if byHost {
		grace = 0
	}
	i.armDeadline(grace)
}
