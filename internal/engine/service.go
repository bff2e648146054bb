package engine

import (
	"context"
	"errors"
	"fightschool-server/internal/catalog"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine/handlers"
	"fightschool-server/internal/engine/handlers/actions"
	"fightschool-server/internal/infrastructure/storage"
	"fightschool-server/internal/network"
	"fightschool-server/internal/systems"
	"fightschool-server/pkg/api"
	"fightschool-server/pkg/logger"
	"fightschool-server/pkg/utils"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Сколько раз пробуем сгенерировать свободный код сессии
const maxCodeAttempts = 32

// Сколько Cleanup ждет остановки цикла: дольше одного сохранения
const stopWaitTimeout = storeTimeout + time.Second

// BotLauncher запускает бота-компаньона для участника сессии.
// Реализация живет в internal/agent, движок знает только этот контракт.
type BotLauncher interface {
	Launch(sessionID, participantID string, seed int64)
}

// GameService - реестр сессий. Создает, находит и очищает инстансы,
// маршрутизирует входящие сообщения в актор нужной сессии.
type GameService struct {
	mu         sync.RWMutex
	instances  map[string]*Instance
	soloByHost map[string]string // участник-хост -> id его соло-сессии

	Hub      *network.Hub
	Catalog  catalog.Catalog
	Store    storage.Store
	Journals *storage.JournalService // nil - журнал боя не пишется
	Bots     BotLauncher             // nil - боты сидят молча

	cfg            Config
	stopWait       time.Duration
	log            *logrus.Entry
	actionHandlers map[domain.MessageType]handlers.HandlerFunc
}

func NewService(cfg Config, hub *network.Hub, cat catalog.Catalog, store storage.Store) *GameService {
	s := &GameService{
		instances:      make(map[string]*Instance),
		soloByHost:     make(map[string]string),
		Hub:            hub,
		Catalog:        cat,
		Store:          store,
		cfg:            cfg,
		stopWait:       stopWaitTimeout,
		log:            logger.Log.WithField("component", "registry"),
		actionHandlers: make(map[domain.MessageType]handlers.HandlerFunc),
	}
	s.registerHandlers()
	return s
}

func (s *GameService) registerHandlers() {
	s.actionHandlers[domain.MessageAnswer] = handlers.WithPayload(actions.HandleAnswer)
	s.actionHandlers[domain.MessageBlock] = handlers.WithPayload(actions.HandleBlock)
	s.actionHandlers[domain.MessageHeal] = handlers.WithPayload(actions.HandleHeal)
	s.actionHandlers[domain.MessageDeclineHealing] = handlers.WithEmptyPayload(actions.HandleDeclineHealing)
	s.actionHandlers[domain.MessageUseAbility] = handlers.WithPayload(actions.HandleUseAbility)
	s.actionHandlers[domain.MessageSelectTarget] = handlers.WithPayload(actions.HandleSelectTarget)
	s.actionHandlers[domain.MessageCreateConsumable] = handlers.WithEmptyPayload(actions.HandleCreateConsumable)
	s.actionHandlers[domain.MessageToggleCharge] = handlers.WithPayload(actions.HandleToggleCharge)
	s.actionHandlers[domain.MessageUseUltimate] = handlers.WithPayload(actions.HandleUseUltimate)
}

// ProcessCommand принимает сообщение от соединения (WebSocket или бот).
// host/host_solo/join обрабатывает реестр, остальное уходит в актор сессии,
// к которой привязано соединение.
func (s *GameService) ProcessCommand(ctx context.Context, connID string, cmd api.ClientCommand) {
	msgType := domain.ParseMessage(cmd.Type)
	if msgType == domain.MessageUnknown {
		s.log.WithFields(logrus.Fields{"conn_id": connID, "message": cmd.Type}).Warn("Unknown message type")
		s.replyError(connID, "", fmt.Errorf("unknown message type %q", cmd.Type))
		return
	}

	var err error
	switch msgType {
	case domain.MessageHost:
		err = s.handleHost(ctx, connID, cmd.Payload)
	case domain.MessageHostSolo:
		err = s.handleHostSolo(ctx, connID, cmd.Payload)
	case domain.MessageJoin:
		err = s.handleJoin(ctx, connID, cmd.Payload)
	default:
		err = s.route(connID, msgType, cmd.Payload)
	}
	if err == nil {
		return
	}

	log := s.log.WithFields(logrus.Fields{"conn_id": connID, "message": msgType.String()})
	switch {
	case domain.IsPrecondition(err):
		log.WithError(err).Debug("Message dropped")
	case isNotFound(err):
		log.WithError(err).Info("Message rejected")
		s.replyError(connID, "", err)
	default:
		log.WithError(err).Warn("Message failed")
		s.replyError(connID, "", err)
	}
}

// route передает намерение в актор сессии соединения
func (s *GameService) route(connID string, msgType domain.MessageType, payload []byte) error {
	sessionID, participantID, isHost := s.Hub.Binding(connID)
	if sessionID == "" {
		return fmt.Errorf("connection is not attached to a session: %w", domain.ErrSessionNotFound)
	}
	inst := s.Lookup(sessionID)
	if inst == nil {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionNotFound)
	}

	ok := inst.Submit(InstanceCommand{
		ConnID:        connID,
		ParticipantID: participantID,
		IsHost:        isHost,
		Type:          msgType,
		Payload:       payload,
	})
	if !ok {
		return ErrInstanceStopped
	}
	return nil
}

// --- host ---

func (s *GameService) handleHost(ctx context.Context, connID string, raw []byte) error {
	p, err := handlers.Decode[api.HostPayload](raw)
	if err != nil {
		return err
	}

	// Переподключение хоста к своей сессии
	if p.SessionID != "" {
		inst := s.Lookup(p.SessionID)
		if inst == nil {
			return fmt.Errorf("session %s: %w", p.SessionID, domain.ErrSessionNotFound)
		}
		s.Hub.Attach(connID, inst.ID, "", true)
		return s.reply(connID, inst, api.MsgSessionCreated, "")
	}

	fight, err := s.Catalog.Fight(ctx, p.FightID)
	if err != nil {
		return err
	}
	if err := validateFight(fight); err != nil {
		return err
	}

	// У шаблона одна живая групповая сессия: повторный host начинает заново
	for _, id := range s.sessionsOfFight(fight.ID) {
		s.Cleanup(id, "fight restarted by host")
	}

	inst, err := s.create(ctx, fight, nil)
	if err != nil {
		return err
	}
	s.Hub.Attach(connID, inst.ID, "", true)

	s.log.WithFields(logrus.Fields{
		"session_id": inst.ID,
		"fight_id":   fight.ID,
		"host_id":    p.HostID,
	}).Info("Session hosted")
	return s.reply(connID, inst, api.MsgSessionCreated, "")
}

// --- host_solo ---

func (s *GameService) handleHostSolo(ctx context.Context, connID string, raw []byte) error {
	p, err := handlers.Decode[api.HostSoloPayload](raw)
	if err != nil {
		return err
	}

	fight, err := s.Catalog.Fight(ctx, p.FightID)
	if err != nil {
		return err
	}
	if err := validateFight(fight); err != nil {
		return err
	}
	host, err := s.loadCombatant(ctx, p.ParticipantID)
	if err != nil {
		return err
	}

	// Соло-сессия у участника одна: повторный запуск очищает прошлую
	if prev := s.soloSession(p.ParticipantID); prev != "" {
		s.Cleanup(prev, "solo fight restarted")
	}

	aiEnabled := p.AIEnabled == nil || *p.AIEnabled
	inst, err := s.create(ctx, fight, &domain.SoloOptions{
		HostID:      p.ParticipantID,
		GuildID:     p.GuildID,
		AIEnabled:   aiEnabled,
		JoinBlocked: true,
	})
	if err != nil {
		return err
	}

	if err := inst.AddParticipant(host); err != nil {
		s.Cleanup(inst.ID, "solo setup failed")
		return err
	}

	var bots []*domain.Combatant
	if aiEnabled {
		count := fight.SoloCompanions
		if count <= 0 {
			count = s.cfg.SoloCompanions
		}
		bots = companions(inst.ID, host, count)
		for _, b := range bots {
			if err := inst.AddParticipant(b); err != nil {
				s.Cleanup(inst.ID, "solo setup failed")
				return err
			}
		}
	}

	s.Hub.Attach(connID, inst.ID, p.ParticipantID, true)
	s.launchBots(inst.ID, inst.Seed, bots)

	s.log.WithFields(logrus.Fields{
		"session_id":     inst.ID,
		"fight_id":       fight.ID,
		"participant_id": p.ParticipantID,
		"companions":     len(bots),
	}).Info("Solo session hosted")
	return s.reply(connID, inst, api.MsgSessionCreated, p.ParticipantID)
}

// --- join ---

func (s *GameService) handleJoin(ctx context.Context, connID string, raw []byte) error {
	p, err := handlers.Decode[api.JoinPayload](raw)
	if err != nil {
		return err
	}

	inst := s.Lookup(p.SessionID)
	if inst == nil {
		return fmt.Errorf("session %s: %w", p.SessionID, domain.ErrSessionNotFound)
	}

	known, err := inst.HasParticipant(p.ParticipantID)
	if err != nil {
		return err
	}
	if !known {
		c, err := s.loadCombatant(ctx, p.ParticipantID)
		if err != nil {
			return err
		}
		if err := inst.AddParticipant(c); err != nil {
			return err
		}
	}

	s.Hub.Attach(connID, inst.ID, p.ParticipantID, inst.SoloHost == p.ParticipantID)

	s.log.WithFields(logrus.Fields{
		"session_id":     inst.ID,
		"participant_id": p.ParticipantID,
		"reconnect":      known,
	}).Info("Participant attached")
	return s.reply(connID, inst, api.MsgJoined, p.ParticipantID)
}

// loadCombatant собирает участника из профиля, экипировки и мета-прогресса
func (s *GameService) loadCombatant(ctx context.Context, participantID string) (*domain.Combatant, error) {
	st, err := s.Catalog.Student(ctx, participantID)
	if err != nil {
		return nil, err
	}
	items, err := s.Catalog.Items(ctx, st.Equipment)
	if err != nil {
		return nil, fmt.Errorf("load equipment of %s: %w", participantID, err)
	}
	progress, err := s.Store.Progress(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("load progress of %s: %w", participantID, err)
	}
	return systems.NewCombatant(st, items, progress), nil
}

// --- Создание и очистка ---

// create регистрирует новую сессию с незанятым кодом и запускает ее цикл
func (s *GameService) create(ctx context.Context, fight *domain.Fight, solo *domain.SoloOptions) (*Instance, error) {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = utils.Seed()
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id := utils.SessionCode()

		// Код мог остаться в хранилище от сессии, которую еще не восстановили
		exists, err := s.Store.SessionExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check session code: %w", err)
		}
		if exists {
			continue
		}

		sess, err := buildSession(id, fight, seed)
		if err != nil {
			return nil, err
		}
		sess.Solo = solo

		inst := NewInstance(s, sess, fight)
		if !s.register(inst) {
			continue
		}
		inst.persist()
		go inst.Run()
		return inst, nil
	}
	return nil, errors.New("no free session code")
}

// register добавляет инстанс, если код свободен
func (s *GameService) register(inst *Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.instances[inst.ID]; taken {
		return false
	}
	s.instances[inst.ID] = inst
	if inst.SoloHost != "" {
		s.soloByHost[inst.SoloHost] = inst.ID
	}
	return true
}

// Cleanup полностью убирает сессию: цикл и таймеры, соединения, запись в хранилище.
// Идемпотентен; шаги независимы, ошибка одного не отменяет остальные.
func (s *GameService) Cleanup(id, reason string) {
	log := s.log.WithFields(logrus.Fields{"session_id": id, "reason": reason})

	s.mu.Lock()
	inst := s.instances[id]
	delete(s.instances, id)
	for host, sid := range s.soloByHost {
		if sid == id {
			delete(s.soloByHost, host)
		}
	}
	s.mu.Unlock()

	if inst != nil {
		inst.removed.Store(true)
		inst.Stop()
		// Сохранение в полете не должно пережить удаление записи
		select {
		case <-inst.Done():
			log.Debug("Session loop stopped")
		case <-time.After(s.stopWait):
			log.Warn("Session loop did not stop in time")
		}
	}

	if closed := s.Hub.CloseSession(id, reason); closed > 0 {
		log.WithField("connections", closed).Debug("Session connections closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.Store.DeleteSession(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete session record")
	}

	if inst != nil {
		log.Info("Session cleaned up")
	}
}

// Restore поднимает сессии, сохраненные до рестарта. Бой в середине раунда
// заново входит в question текущего индекса; завершенные записи удаляются.
func (s *GameService) Restore(ctx context.Context) (int, error) {
	records, err := s.Store.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	restored := 0
	for _, sess := range records {
		log := s.log.WithFields(logrus.Fields{"session_id": sess.ID, "phase": sess.Phase})

		if sess.Phase == domain.PhaseGameOver {
			s.dropRecord(ctx, sess.ID)
			log.Info("Finished session record removed")
			continue
		}

		fight, err := s.Catalog.Fight(ctx, sess.FightID)
		if err == nil {
			err = validateFight(fight)
		}
		if err != nil {
			s.dropRecord(ctx, sess.ID)
			log.WithError(err).Warn("Session fight unavailable, record removed")
			continue
		}

		inst := NewInstance(s, sess, fight)
		if !s.register(inst) {
			log.Warn("Session already live, skipping restore")
			continue
		}
		go inst.Run()

		var bots []*domain.Combatant
		for _, c := range sess.Ordered() {
			if c.IsBot {
				bots = append(bots, c)
			}
		}
		s.launchBots(sess.ID, sess.Seed, bots)

		if err := inst.Resume(); err != nil {
			log.WithError(err).Error("Failed to resume session")
			continue
		}
		restored++
	}

	s.log.WithFields(logrus.Fields{"records": len(records), "restored": restored}).Info("Sessions restored")
	return restored, nil
}

func (s *GameService) dropRecord(ctx context.Context, id string) {
	if err := s.Store.DeleteSession(ctx, id); err != nil {
		s.log.WithError(err).WithField("session_id", id).Error("Failed to delete session record")
	}
}

// Shutdown останавливает все циклы, не трогая сохраненные записи
func (s *GameService) Shutdown(ctx context.Context) {
	s.mu.RLock()
	all := make([]*Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		all = append(all, inst)
	}
	s.mu.RUnlock()

	for _, inst := range all {
		inst.Stop()
	}
	for _, inst := range all {
		select {
		case <-inst.Done():
		case <-ctx.Done():
			s.log.WithField("session_id", inst.ID).Warn("Session loop did not stop in time")
		}
	}
	s.log.WithField("sessions", len(all)).Info("Session loops stopped")
}

// --- Чтение ---

// Lookup - живой инстанс по коду (nil если нет)
func (s *GameService) Lookup(id string) *Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instances[id]
}

// Snapshot - копия состояния сессии
func (s *GameService) Snapshot(id string) (*domain.Session, error) {
	inst := s.Lookup(id)
	if inst == nil {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return inst.Snapshot()
}

// CurrentAnswer - правильный ответ текущего вопроса сессии ("" вне фазы question)
func (s *GameService) CurrentAnswer(sessionID string) (string, []string, error) {
	inst := s.Lookup(sessionID)
	if inst == nil {
		return "", nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionNotFound)
	}
	return inst.CurrentAnswer()
}

// SessionSummary - строка списка сессий для /debug
type SessionSummary struct {
	ID           string    `json:"id"`
	FightID      string    `json:"fightId"`
	SoloHost     string    `json:"soloHost,omitempty"`
	Phase        string    `json:"phase"`
	Round        int       `json:"round"`
	Participants int       `json:"participants"`
	Connections  int       `json:"connections"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sessions - список живых сессий, отсортированный по коду
func (s *GameService) Sessions() []SessionSummary {
	s.mu.RLock()
	all := make([]*Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		all = append(all, inst)
	}
	s.mu.RUnlock()

	out := make([]SessionSummary, 0, len(all))
	for _, inst := range all {
		snap, err := inst.Snapshot()
		if err != nil {
			continue // очищена, пока собирали список
		}
		out = append(out, SessionSummary{
			ID:           snap.ID,
			FightID:      snap.FightID,
			SoloHost:     inst.SoloHost,
			Phase:        string(snap.Phase),
			Round:        snap.Round,
			Participants: len(snap.Participants),
			Connections:  s.Hub.SessionConnections(snap.ID),
			UpdatedAt:    snap.UpdatedAt,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (s *GameService) sessionsOfFight(fightID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, inst := range s.instances {
		if inst.FightID == fightID && inst.SoloHost == "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *GameService) soloSession(hostID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.soloByHost[hostID]
}

func (s *GameService) launchBots(sessionID string, seed int64, bots []*domain.Combatant) {
	if s.Bots == nil {
		return
	}
	for n, b := range bots {
		s.Bots.Launch(sessionID, b.ID, seed+int64(n+1))
	}
}

// --- Ответы соединению ---

func (s *GameService) reply(connID string, inst *Instance, msgType, participantID string) error {
	snap, err := inst.Snapshot()
	if err != nil {
		return err
	}
	s.Hub.SendTo(connID, api.ServerMessage{
		Type:          msgType,
		SessionID:     inst.ID,
		ParticipantID: participantID,
		State:         BuildSessionView(snap),
	})
	return nil
}

func (s *GameService) replyError(connID, sessionID string, err error) {
	s.Hub.SendTo(connID, api.ServerMessage{Type: api.MsgError, SessionID: sessionID, Error: err.Error()})
}
