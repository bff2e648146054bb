package engine

import (
	"context"
	"fightschool-server/internal/domain"
	"fightschool-server/pkg/api"
	"testing"
	"time"
)

func TestFight_VictoryAwardsAndCleansUp(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")
	tank := h.join(t, id, "p_tank")

	h.send(host, "start_fight", nil)
	q := mage.await(t, api.MsgQuestion)
	if q.Question == nil || q.Question.Number != 1 || q.Question.Body != "2+2?" {
		t.Fatalf("question = %+v, want first question", q.Question)
	}

	// Все ответили - вопрос закрывается, не дожидаясь дедлайна
	h.send(mage, "answer", api.AnswerPayload{Text: "4"})
	h.send(tank, "answer", api.AnswerPayload{Text: " 4 "})
	host.awaitPhase(t, domain.PhaseAbilities)

	// Никто ничего не выбрал: авто-таргет атакует единственного врага
	over := host.await(t, api.MsgGameOver)
	if over.Victory == nil || !*over.Victory {
		t.Fatalf("victory = %v, want true", over.Victory)
	}
	if len(over.Rewards) != 2 {
		t.Errorf("rewards = %d, want 2", len(over.Rewards))
	}
	if over.State == nil || over.State.Phase != string(domain.PhaseGameOver) {
		t.Errorf("final state = %+v, want game_over", over.State)
	}

	fb := mage.await(t, api.MsgGameOver)
	if fb.Victory == nil || !*fb.Victory {
		t.Error("participant should receive the same game_over")
	}

	if n := len(h.store.Summaries()); n != 2 {
		t.Errorf("summaries = %d, want 2", n)
	}
	progress, err := h.store.Progress(context.Background(), "p_mage")
	if err != nil {
		t.Fatal(err)
	}
	if progress.CompletedEncounters != 1 {
		t.Errorf("completed encounters = %d, want 1", progress.CompletedEncounters)
	}

	// После паузы показа сессия убирается полностью
	host.await(t, api.MsgForceDisconnect)
	eventually(t, "session removed", func() bool {
		exists, _ := h.store.SessionExists(context.Background(), id)
		return h.svc.Lookup(id) == nil && !exists
	})
}

func TestFight_FeedbackGoesOnlyToAddressee(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")

	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)
	h.send(mage, "answer", api.AnswerPayload{Text: "4"})

	fb := mage.await(t, api.MsgResolutionFeedback)
	if len(fb.Feedback) == 0 {
		t.Fatal("participant got empty feedback")
	}

	// У хоста нет личности участника - ему уходит только сводка
	msg := host.await(t, api.MsgPartyDamageSummary)
	if msg.PartyDamage == nil || msg.PartyDamage.ByMember["p_mage"] == 0 {
		t.Errorf("party damage = %+v, want damage from p_mage", msg.PartyDamage)
	}
	select {
	case msg := <-host.ch:
		if msg.Type == api.MsgResolutionFeedback {
			t.Error("host received unicast feedback")
		}
	default:
	}
}

func TestFight_DeadlineAdvancesToNextQuestion(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "endless")
	mage := h.join(t, id, "p_mage")

	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)

	// Никто не ответил: дедлайн, abilities без выборов, атака врага, следующий вопрос
	host.awaitPhase(t, domain.PhaseAbilities)
	host.await(t, api.MsgEnemyAIAttack)
	next := host.await(t, api.MsgNextQuestion)
	if next.QuestionNumber != 2 {
		t.Errorf("next_question = %d, want 2", next.QuestionNumber)
	}

	q := mage.await(t, api.MsgQuestion)
	if q.Question.Number != 2 {
		t.Errorf("question number = %d, want 2", q.Question.Number)
	}
	// Вопрос в шаблоне один: номер растет, текст повторяется по кругу
	if q.Question.Body != "1+1?" {
		t.Errorf("body = %q", q.Question.Body)
	}
}

func TestFight_AbilitiesCloseWhenAllSubmitted(t *testing.T) {
	h := newHarness(t)
	h.svc.cfg.Timings.AbilitiesCeiling = 2 * time.Second
	h.svc.cfg.Timings.AbilitiesIdle = time.Second
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")

	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)
	h.send(mage, "answer", api.AnswerPayload{Text: "4"})
	mage.awaitPhase(t, domain.PhaseAbilities)

	snap, err := h.svc.Snapshot(id)
	if err != nil {
		t.Fatal(err)
	}
	enemyID := snap.Enemies[0].ID

	start := time.Now()
	h.send(mage, "use_ability", api.AbilityPayload{AbilityID: "attack", TargetID: enemyID})
	mage.awaitPhase(t, domain.PhaseResolution)

	if elapsed := time.Since(start); elapsed >= 500*time.Millisecond {
		t.Errorf("abilities closed after %s, expected before the inactivity window", elapsed)
	}
}

func TestFight_EndedByHost(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")

	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)
	h.send(host, "end_fight", nil)

	over := mage.await(t, api.MsgGameOver)
	if over.Victory == nil || *over.Victory {
		t.Fatalf("victory = %v, want false", over.Victory)
	}
	if len(over.Rewards) != 0 {
		t.Errorf("rewards on defeat: %+v", over.Rewards)
	}
	if n := len(h.store.Summaries()); n != 1 {
		t.Errorf("summaries = %d, want 1", n)
	}

	mage.await(t, api.MsgForceDisconnect)
	eventually(t, "session removed", func() bool { return h.svc.Lookup(id) == nil })
}

func TestStartFight_RequiresHost(t *testing.T) {
	h := newHarness(t)
	_, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")

	h.send(mage, "start_fight", nil)
	time.Sleep(50 * time.Millisecond)

	if phase := h.phaseOf(t, id); phase != domain.PhaseWaiting {
		t.Errorf("phase = %s, want waiting", phase)
	}
}

func TestStartFight_NeedsParticipants(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "arith")

	h.send(host, "start_fight", nil)
	time.Sleep(50 * time.Millisecond)

	if phase := h.phaseOf(t, id); phase != domain.PhaseWaiting {
		t.Errorf("phase = %s, want waiting", phase)
	}
}

func TestAnswer_OutsideQuestionIsDropped(t *testing.T) {
	h := newHarness(t)
	_, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")

	h.send(mage, "answer", api.AnswerPayload{Text: "4"})
	time.Sleep(50 * time.Millisecond)

	snap, err := h.svc.Snapshot(id)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Participant("p_mage").HasAnswered {
		t.Error("answer accepted in waiting phase")
	}
	select {
	case msg := <-mage.ch:
		if msg.Type == api.MsgError {
			t.Errorf("precondition failure should not reply: %s", msg.Error)
		}
	default:
	}
}

func TestInstance_StaleTimerIsDiscarded(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")
	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)

	inst := h.svc.Lookup(id)
	var phase domain.Phase
	err := inst.call(func() {
		inst.onTimer(timerEvent{kind: timerDeadline, gen: inst.timers.gen - 1})
		phase = inst.Session.Phase
	})
	if err != nil {
		t.Fatal(err)
	}
	if phase != domain.PhaseQuestion {
		t.Errorf("stale deadline moved phase to %s", phase)
	}
}

func TestInstance_PhaseEndsOnce(t *testing.T) {
	h := newHarness(t)
	_, id := h.host(t, "arith")

	inst := h.svc.Lookup(id)
	var first, second bool
	err := inst.call(func() {
		inst.beginPhase(domain.PhaseQuestion)
		first = inst.endPhase()
		second = inst.endPhase()
	})
	if err != nil {
		t.Fatal(err)
	}
	if !first || second {
		t.Errorf("endPhase = (%v, %v), want (true, false)", first, second)
	}
}

func TestInstance_PanicDoesNotKillLoop(t *testing.T) {
	h := newHarness(t)
	_, id := h.host(t, "arith")
	inst := h.svc.Lookup(id)

	_ = inst.call(func() { panic("boom") })

	if _, err := inst.Snapshot(); err != nil {
		t.Fatalf("loop died after panic: %v", err)
	}
}

func TestCurrentAnswer(t *testing.T) {
	h := newHarness(t)
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")

	answer, _, err := h.svc.CurrentAnswer(id)
	if err != nil || answer != "" {
		t.Errorf("waiting phase: (%q, %v), want empty", answer, err)
	}

	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)

	answer, choices, err := h.svc.CurrentAnswer(id)
	if err != nil {
		t.Fatal(err)
	}
	if answer != "4" || len(choices) != 3 {
		t.Errorf("got (%q, %v), want 4 with 3 choices", answer, choices)
	}

	if _, _, err := h.svc.CurrentAnswer("NOPE00"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestFight_AllAnsweredClosesQuestionEarly(t *testing.T) {
	h := newHarness(t)
	h.svc.cfg.Timings.AbilitiesCeiling = 2 * time.Second
	h.svc.cfg.Timings.AbilitiesIdle = time.Second
	host, id := h.host(t, "arith")
	mage := h.join(t, id, "p_mage")
	tank := h.join(t, id, "p_tank")
	priest := h.join(t, id, "p_priest")

	h.send(host, "start_fight", nil)
	mage.await(t, api.MsgQuestion)
	asked := time.Now()
	deadline := h.svc.cfg.Timings.QuestionDeadline(50)

	h.send(mage, "answer", api.AnswerPayload{Text: "4"})
	h.send(tank, "answer", api.AnswerPayload{Text: "4"})
	h.send(priest, "answer", api.AnswerPayload{Text: "5"})
	host.awaitPhase(t, domain.PhaseAbilities)

	if elapsed := time.Since(asked); elapsed >= deadline/2 {
		t.Fatalf("abilities entered after %s, question deadline is %s", elapsed, deadline)
	}

	// Дедлайн вопроса проходит, но уже отменен: фаза и раунд не меняются
	time.Sleep(deadline + 50*time.Millisecond - time.Since(asked))
	snap, err := h.svc.Snapshot(id)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Phase != domain.PhaseAbilities || snap.Round != 1 {
		t.Errorf("phase = %s round = %d, want abilities in round 1", snap.Phase, snap.Round)
	}
	if !snap.Participant("p_mage").IsCorrect || snap.Participant("p_priest").IsCorrect {
		t.Error("answers evaluated incorrectly at question exit")
	}
}

func TestFight_AbilitiesCloseOnInactivity(t *testing.T) {
	h := newHarness(t)
	h.svc.cfg.Timings.AbilitiesCeiling = 2 * time.Second
	h.svc.cfg.Timings.AbilitiesIdle = 100 * time.Millisecond
	host, id := h.host(t, "arith")
	tank := h.join(t, id, "p_tank")

	h.send(host, "start_fight", nil)
	tank.await(t, api.MsgQuestion)
	h.send(tank, "answer", api.AnswerPayload{Text: "4"})
	tank.awaitPhase(t, domain.PhaseAbilities)
	opened := time.Now()

	// Танк не выбирает цель блока: готовности нет, закрывает бездействие
	tank.awaitPhase(t, domain.PhaseResolution)
	elapsed := time.Since(opened)
	if elapsed < 50*time.Millisecond || elapsed >= time.Second {
		t.Errorf("abilities closed after %s, want the 100ms inactivity window", elapsed)
	}
}

func TestInstance_TickPollIsNotReentrant(t *testing.T) {
	h := newHarness(t)
	h.svc.cfg.Timings.AbilitiesCeiling = 2 * time.Second
	h.svc.cfg.Timings.AbilitiesIdle = time.Second
	host, id := h.host(t, "arith")
	tank := h.join(t, id, "p_tank")

	h.send(host, "start_fight", nil)
	tank.await(t, api.MsgQuestion)
	h.send(tank, "answer", api.AnswerPayload{Text: "4"})
	tank.awaitPhase(t, domain.PhaseAbilities)
	tank.await(t, api.MsgPhaseTimer)

	// Занимаем флаг, когда ни один тик не ждет в очереди актора
	inst := h.svc.Lookup(id)
	eventually(t, "poll flag claimed", func() bool {
		var claimed bool
		if err := inst.call(func() { claimed = inst.polling.CompareAndSwap(false, true) }); err != nil {
			t.Fatal(err)
		}
		return claimed
	})

	time.Sleep(30 * time.Millisecond)
	for drained := false; !drained; {
		select {
		case <-tank.ch:
		default:
			drained = true
		}
	}
	time.Sleep(50 * time.Millisecond)
	for drained := false; !drained; {
		select {
		case msg := <-tank.ch:
			if msg.Type == api.MsgPhaseTimer {
				t.Fatal("tick was processed while a poll was in flight")
			}
		default:
			drained = true
		}
	}

	// Отложенные тики не потеряны: цепочка продолжается
	inst.polling.Store(false)
	tank.await(t, api.MsgPhaseTimer)
	if phase := h.phaseOf(t, id); phase != domain.PhaseAbilities {
		t.Errorf("phase = %s, want abilities", phase)
	}
}
