package network

import (
	"fightschool-server/pkg/api"
	"fightschool-server/pkg/logger"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const sendBuffer = 100

// Subscriber - одно соединение (человек или бот)
type Subscriber struct {
	ConnID        string
	SessionID     string
	ParticipantID string
	IsHost        bool

	ch chan api.ServerMessage
}

// Hub занимается только рассылкой сообщений подписчикам сессий
type Hub struct {
	mu sync.RWMutex
	// ConnID -> подписчик
	conns map[string]*Subscriber
	// SessionID -> ConnID -> подписчик
	sessions map[string]map[string]*Subscriber

	debounce *Debouncer
}

func NewHub(debounce time.Duration) *Hub {
	return &Hub{
		conns:    make(map[string]*Subscriber),
		sessions: make(map[string]map[string]*Subscriber),
		debounce: NewDebouncer(debounce),
	}
}

// Register создает личный канал соединения. Повторная регистрация закрывает старый канал.
func (h *Hub) Register(connID string) <-chan api.ServerMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.conns[connID]; ok {
		h.dropLocked(old)
	}
	sub := &Subscriber{ConnID: connID, ch: make(chan api.ServerMessage, sendBuffer)}
	h.conns[connID] = sub
	return sub.ch
}

// Unregister удаляет соединение. Повторный вызов безопасен.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.conns[connID]; ok {
		h.dropLocked(sub)
	}
}

// Attach привязывает соединение к сессии. Старое соединение той же личности
// (тот же участник или хост этой сессии) закрывается принудительно.
// Возвращает число закрытых соединений.
func (h *Hub) Attach(connID, sessionID, participantID string, isHost bool) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.conns[connID]
	if !ok {
		return 0
	}
	if sub.SessionID != "" && sub.SessionID != sessionID {
		h.detachLocked(sub)
		sub.IsHost = false
	}

	closed := 0
	for _, other := range h.sessions[sessionID] {
		if other.ConnID == connID {
			continue
		}
		sameParticipant := participantID != "" && other.ParticipantID == participantID
		sameHost := isHost && other.IsHost
		if sameParticipant || sameHost {
			trySend(other, api.ServerMessage{Type: api.MsgForceDisconnect, SessionID: sessionID, Reason: "connected from another place"})
			h.dropLocked(other)
			closed++
		}
	}

	sub.SessionID = sessionID
	sub.ParticipantID = participantID
	sub.IsHost = sub.IsHost || isHost
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]*Subscriber)
	}
	h.sessions[sessionID][connID] = sub

	if closed > 0 {
		logger.Log.WithFields(logrus.Fields{
			"component":      "hub",
			"session_id":     sessionID,
			"participant_id": participantID,
			"closed":         closed,
		}).Info("Closed stale connections")
	}
	return closed
}

// Binding - к какой сессии и личности привязано соединение
func (h *Hub) Binding(connID string) (sessionID, participantID string, isHost bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sub, ok := h.conns[connID]; ok {
		return sub.SessionID, sub.ParticipantID, sub.IsHost
	}
	return "", "", false
}

// SendTo отправляет сообщение конкретному соединению (Unicast)
func (h *Hub) SendTo(connID string, msg api.ServerMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if sub, ok := h.conns[connID]; ok {
		trySend(sub, msg)
	}
}

// SendToParticipant отправляет сообщение всем соединениям участника сессии
func (h *Hub) SendToParticipant(sessionID, participantID string, msg api.ServerMessage) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, sub := range h.sessions[sessionID] {
		if sub.ParticipantID == participantID && trySend(sub, msg) {
			sent++
		}
	}
	return sent
}

// Broadcast немедленно отправляет всем соединениям сессии
func (h *Hub) Broadcast(sessionID string, msg api.ServerMessage) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, sub := range h.sessions[sessionID] {
		if trySend(sub, msg) {
			sent++
		}
	}
	return sent
}

// BroadcastState - полная рассылка снимка. Отменяет отложенную рассылку этой сессии.
func (h *Hub) BroadcastState(sessionID string, msg api.ServerMessage) int {
	h.debounce.Cancel(sessionID)
	return h.Broadcast(sessionID, msg)
}

// ScheduleBroadcast откладывает flush на окно дебаунса (не больше одного на сессию)
func (h *Hub) ScheduleBroadcast(sessionID string, flush func()) {
	h.debounce.Schedule(sessionID, flush)
}

// CancelBroadcast снимает отложенную рассылку сессии
func (h *Hub) CancelBroadcast(sessionID string) bool {
	return h.debounce.Cancel(sessionID)
}

// CloseSession принудительно закрывает все соединения сессии. Идемпотентен.
func (h *Hub) CloseSession(sessionID, reason string) int {
	h.debounce.Cancel(sessionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.sessions[sessionID]
	for _, sub := range subs {
		trySend(sub, api.ServerMessage{Type: api.MsgForceDisconnect, SessionID: sessionID, Reason: reason})
		h.dropLocked(sub)
	}
	delete(h.sessions, sessionID)
	return len(subs)
}

// SessionConnections - число соединений, привязанных к сессии
func (h *Hub) SessionConnections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// SubscriberCount возвращает количество активных соединений.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) detachLocked(sub *Subscriber) {
	if subs, ok := h.sessions[sub.SessionID]; ok {
		delete(subs, sub.ConnID)
		if len(subs) == 0 {
			delete(h.sessions, sub.SessionID)
		}
	}
}

func (h *Hub) dropLocked(sub *Subscriber) {
	h.detachLocked(sub)
	delete(h.conns, sub.ConnID)
	close(sub.ch)
}

// Медленный клиент теряет кадры, но не блокирует сессию
func trySend(sub *Subscriber, msg api.ServerMessage) bool {
	select {
	case sub.ch <- msg:
		return true
	default:
		return false
	}
}
