package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fightschool-server/pkg/logger"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInstanceStopped - цикл сессии уже остановлен (сессия очищена)
var ErrInstanceStopped = fmt.Errorf("session loop stopped: %w", domain.ErrSessionNotFound)

const storeTimeout = 3 * time.Second

// InstanceCommand обертка, чтобы передать намерение и того, кто его прислал
type InstanceCommand struct {
	ConnID        string
	ParticipantID string
	IsHost        bool
	Type          domain.MessageType
	Payload       json.RawMessage
}

// Instance - один запущенный бой. Однопоточный актор:
// сессию читает и меняет только горутина Run.
type Instance struct {
	ID       string
	FightID  string
	SoloHost string // "" для обычной сессии
	Seed     int64

	Session *domain.Session
	Fight   *domain.Fight

	Service *GameService
	timings Timings
	log     *logrus.Entry

	// Каналы коммуникации
	CommandChan chan InstanceCommand
	timerChan   chan timerEvent
	flushChan   chan struct{}
	callChan    chan func()
	quit        chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	removed     atomic.Bool // Cleanup: запись в хранилище больше не нужна

	timers       phaseTimers
	polling      atomic.Bool // опрос готовности в полете
	phaseEnded   bool        // защелка "фаза уже завершена"
	phaseStarted time.Time
	lastActivity time.Time

	Journal *domain.Journal // Лента принятых сообщений
	recent  []LogLine
}

func NewInstance(service *GameService, s *domain.Session, fight *domain.Fight) *Instance {
	inst := &Instance{
		ID:          s.ID,
		FightID:     s.FightID,
		Seed:        s.Seed,
		Session:     s,
		Fight:       fight,
		Service:     service,
		timings:     service.cfg.Timings,
		CommandChan: make(chan InstanceCommand, 100),
		timerChan:   make(chan timerEvent, 4),
		flushChan:   make(chan struct{}, 1),
		callChan:    make(chan func()),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		Journal: &domain.Journal{
			SessionID: s.ID,
			FightID:   s.FightID,
			Seed:      s.Seed,
			Timestamp: time.Now().Unix(),
			Entries:   make([]domain.JournalEntry, 0),
		},
	}
	if s.Solo != nil {
		inst.SoloHost = s.Solo.HostID
	}
	inst.log = logger.Log.WithFields(logrus.Fields{
		"component":  "session",
		"session_id": s.ID,
		"fight_id":   s.FightID,
	})
	return inst
}

// Run запускает цикл ЭТОЙ сессии. Возвращается после Stop.
func (i *Instance) Run() {
	defer close(i.done)
	i.log.Info("Session loop started")

	for {
		select {
		case <-i.quit:
			i.cancelTimers()
			i.Service.Hub.CancelBroadcast(i.ID)
			i.log.Info("Session loop stopped")
			return

		case cmd := <-i.CommandChan:
			i.dispatch("command", func() { i.executeCommand(cmd) })

		case ev := <-i.timerChan:
			i.dispatch("timer", func() { i.onTimer(ev) })

		case <-i.flushChan:
			i.dispatch("flush", i.broadcastState)

		case fn := <-i.callChan:
			i.dispatch("call", fn)
		}
	}
}

// dispatch не запускает обработчик, если Stop уже вызван:
// select выбирает среди готовых веток случайно, и quit может проиграть
func (i *Instance) dispatch(what string, fn func()) {
	if i.stopped() {
		return
	}
	i.safely(what, fn)
}

func (i *Instance) stopped() bool {
	select {
	case <-i.quit:
		return true
	default:
		return false
	}
}

// Stop останавливает цикл и все таймеры. Повторный вызов безопасен, ожидания нет.
func (i *Instance) Stop() {
	i.stopOnce.Do(func() { close(i.quit) })
}

// Done закрывается, когда цикл полностью остановлен
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Submit ставит намерение в очередь актора. false - сессия уже остановлена.
func (i *Instance) Submit(cmd InstanceCommand) bool {
	if i.stopped() {
		return false
	}
	select {
	case i.CommandChan <- cmd:
		return true
	case <-i.quit:
		return false
	}
}

// call выполняет fn в горутине актора и ждет завершения
func (i *Instance) call(fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case i.callChan <- wrapped:
	case <-i.quit:
		return ErrInstanceStopped
	}
	select {
	case <-finished:
		return nil
	case <-i.quit:
		return ErrInstanceStopped
	}
}

// safely не дает панике в обработчике уронить сессию
func (i *Instance) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			i.log.WithFields(logrus.Fields{
				"handler": what,
				"phase":   i.Session.Phase,
				"panic":   r,
				"stack":   string(debug.Stack()),
			}).Error("Session handler panicked")
		}
	}()
	fn()
}

// --- Операции для реестра (выполняются внутри актора) ---

// Snapshot возвращает глубокую копию текущего состояния
func (i *Instance) Snapshot() (*domain.Session, error) {
	var out *domain.Session
	err := i.call(func() { out = i.Session.Clone() })
	return out, err
}

// HasParticipant - участник уже в сессии (переподключение)
func (i *Instance) HasParticipant(id string) (bool, error) {
	var ok bool
	err := i.call(func() { ok = i.Session.Participant(id) != nil })
	return ok, err
}

// AddParticipant добавляет нового участника
func (i *Instance) AddParticipant(c *domain.Combatant) error {
	var result error
	err := i.call(func() {
		s := i.Session
		switch {
		case s.Phase.IsTerminal():
			result = fmt.Errorf("join %s: %w", s.ID, domain.ErrWrongPhase)
		case s.Solo != nil && s.Solo.JoinBlocked && !c.IsBot && c.ID != s.Solo.HostID:
			result = fmt.Errorf("join %s: %w", s.ID, domain.ErrJoinBlocked)
		case !s.AddParticipant(c):
			// гонка двух join одного участника: второй просто переподключается
		default:
			i.log.WithFields(logrus.Fields{
				"participant_id": c.ID,
				"class":          c.Class,
				"phase":          s.Phase,
			}).Info("Participant joined")
			i.persist()
			i.markDirty()
		}
	})
	if err != nil {
		return err
	}
	return result
}

// CurrentAnswer - правильный ответ текущего вопроса (нужен ботам-компаньонам)
func (i *Instance) CurrentAnswer() (answer string, choices []string, err error) {
	err = i.call(func() {
		if i.Session.Phase != domain.PhaseQuestion {
			return
		}
		q := i.currentQuestion()
		answer = q.Answer
		choices = append([]string(nil), q.Choices...)
	})
	return answer, choices, err
}

// Resume продолжает восстановленную сессию: бой заново входит в question
// для текущего индекса, ожидание остается ожиданием.
func (i *Instance) Resume() error {
	return i.call(func() {
		if i.Session.Phase == domain.PhaseWaiting {
			return
		}
		i.log.WithField("phase", i.Session.Phase).Info("Resuming session at question")
		i.enterQuestion()
	})
}

// --- Входящие сообщения ---

func (i *Instance) executeCommand(cmd InstanceCommand) {
	s := i.Session
	log := i.log.WithFields(logrus.Fields{
		"participant_id": cmd.ParticipantID,
		"message":        cmd.Type.String(),
		"phase":          s.Phase,
	})

	var err error
	switch cmd.Type {
	case domain.MessageStartFight:
		err = i.startFight(cmd)
	case domain.MessageEndFight:
		err = i.endFight(cmd)
	default:
		err = i.applyIntent(cmd)
	}

	if err != nil {
		if domain.IsPrecondition(err) {
			// Гонка клиента и таймера: молча отбрасываем
			log.WithError(err).Debug("Message dropped")
			return
		}
		log.WithError(err).Warn("Message rejected")
		i.Service.Hub.SendTo(cmd.ConnID, api.ServerMessage{Type: api.MsgError, SessionID: i.ID, Error: err.Error()})
	}
}

func (i *Instance) applyIntent(cmd InstanceCommand) error {
	s := i.Session
	if allowed := cmd.Type.AllowedIn(); allowed == "" || allowed != s.Phase {
		return fmt.Errorf("%s in %s: %w", cmd.Type, s.Phase, domain.ErrWrongPhase)
	}
	if i.phaseEnded {
		return domain.ErrPhaseLatched
	}

	handler, ok := i.Service.actionHandlers[cmd.Type]
	if !ok {
		return fmt.Errorf("no handler for %s: %w", cmd.Type, domain.ErrNotEligible)
	}

	ctx := handlers.Context{
		Session: s,
		Actor:   s.Participant(cmd.ParticipantID),
	}
	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		return err
	}

	i.recordCommand(cmd)
	if result.Msg != "" {
		i.AddLog(result.Msg, cmd.Type.String())
	}
	if result.Changed {
		i.lastActivity = time.Now()
		i.markDirty()
	}

	// Все ответили - вопрос закрывается досрочно
	if s.Phase == domain.PhaseQuestion && systems.AllAnswered(s) {
		i.exitQuestion("all_answered")
	}
	return nil
}

func (i *Instance) startFight(cmd InstanceCommand) error {
	s := i.Session
	if !cmd.IsHost {
		return domain.ErrNotHost
	}
	if s.Phase != domain.PhaseWaiting {
		return fmt.Errorf("start in %s: %w", s.Phase, domain.ErrWrongPhase)
	}
	if len(s.Participants) == 0 {
		return fmt.Errorf("no participants: %w", domain.ErrNotEligible)
	}

	i.recordCommand(cmd)
	i.log.WithField("participants", len(s.Participants)).Info("Fight started")
	i.enterQuestion()
	return nil
}

func (i *Instance) endFight(cmd InstanceCommand) error {
	if !cmd.IsHost {
		return domain.ErrNotHost
	}
	if i.Session.Phase.IsTerminal() {
		return fmt.Errorf("fight already over: %w", domain.ErrWrongPhase)
	}

	i.recordCommand(cmd)
	i.log.Info("Fight ended by host")
	i.finish(domain.OutcomeDefeat, true)
	return nil
}

func (i *Instance) recordCommand(cmd InstanceCommand) {
	i.Journal.Entries = append(i.Journal.Entries, domain.JournalEntry{
		Round:         i.Session.Round,
		ParticipantID: cmd.ParticipantID,
		Message:       cmd.Type,
		Payload:       cmd.Payload,
	})
}

// --- Рассылка ---

// markDirty откладывает рассылку снимка на окно дебаунса
func (i *Instance) markDirty() {
	i.Service.Hub.ScheduleBroadcast(i.ID, func() {
		select {
		case i.flushChan <- struct{}{}:
		default: // flush уже в очереди
		}
	})
}

// broadcastState - немедленная полная рассылка (отменяет отложенную)
func (i *Instance) broadcastState() {
	i.Service.Hub.BroadcastState(i.ID, api.ServerMessage{
		Type:      api.MsgCombatState,
		SessionID: i.ID,
		State:     BuildSessionView(i.Session),
	})
}

func (i *Instance) broadcast(msg api.ServerMessage) {
	msg.SessionID = i.ID
	i.Service.Hub.Broadcast(i.ID, msg)
}

func (i *Instance) broadcastPhase(remaining time.Duration) {
	msg := api.ServerMessage{Type: api.MsgPhaseChange, Phase: string(i.Session.Phase)}
	if remaining > 0 {
		secs := i.unitsLeft(remaining)
		msg.SecondsRemaining = &secs
	}
	i.broadcast(msg)
}

// unitsLeft - сколько единиц таймера осталось (с округлением вверх)
func (i *Instance) unitsLeft(d time.Duration) int {
	if d <= 0 || i.timings.Unit <= 0 {
		return 0
	}
	return int((d + i.timings.Unit - 1) / i.timings.Unit)
}

// --- Хранилище ---

func (i *Instance) persist() {
	if i.removed.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	i.Session.UpdatedAt = time.Now()
	if err := i.Service.Store.SaveSession(ctx, i.Session); err != nil {
		i.log.WithError(err).Error("Failed to persist session")
	}

	// Cleanup не дождался этого сохранения и уже удалил запись
	if i.removed.Load() {
		if err := i.Service.Store.DeleteSession(ctx, i.ID); err != nil {
			i.log.WithError(err).Error("Failed to delete session record after cleanup")
		}
	}
}

func (i *Instance) saveJournal(outcome domain.Outcome) {
	if i.Service.Journals == nil {
		return
	}
	i.Journal.Outcome = outcome
	path, err := i.Service.Journals.Save(i.Journal)
	if err != nil {
		i.log.WithError(err).Error("Failed to save combat journal")
		return
	}
	i.log.WithFields(logrus.Fields{
		"path":    path,
		"entries": len(i.Journal.Entries),
	}).Info("Combat journal saved")
}

func (i *Instance) currentQuestion() domain.Question {
	qs := i.Fight.Questions
	n := i.Session.CurrentQuestionNumber()
	if n < 0 || n >= len(qs) {
		// шаблон изменился после восстановления
		i.log.WithField("question", n).Warn("Question index out of range, using first")
		return qs[0]
	}
	return qs[n]
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrFightNotFound) ||
		errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrStudentNotFound) ||
		errors.Is(err, domain.ErrNoQuestions) ||
		errors.Is(err, domain.ErrNoEnemies)
}
