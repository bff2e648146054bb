package server

import (
	"errors"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine"
	"fightschool-server/pkg/api"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DebugHandler предоставляет доступ к внутреннему состоянию реестра
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/debug/sessions", h.handleListSessions)
	r.GET("/debug/sessions/:id", h.handleSession)
}

// /debug/sessions - живые сессии, их фазы и число соединений
func (h *DebugHandler) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Sessions())
}

type sessionDump struct {
	State *api.SessionView `json:"state"`
	// Полные участники, включая скрытые поля (атрибуты, угроза, кулдауны)
	Participants map[string]*domain.Combatant `json:"participants"`
	Logs         []engine.LogLine             `json:"logs"`
}

// /debug/sessions/:id - снимок сессии и последние строки ее лога
func (h *DebugHandler) handleSession(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.Service.Snapshot(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	dump := sessionDump{
		State:        engine.BuildSessionView(snap),
		Participants: snap.Participants,
		Logs:         []engine.LogLine{},
	}
	if inst := h.Service.Lookup(id); inst != nil {
		if logs, err := inst.RecentLogs(); err == nil && logs != nil {
			dump.Logs = logs
		}
	}
	c.JSON(http.StatusOK, dump)
}
