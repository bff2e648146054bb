package storage

import (
	"context"
	"encoding/json"
	"fightschool-server/internal/domain"
	"fmt"
	"sort"
	"sync"
)

// Memory - хранилище в памяти. Снимки сериализуются в JSON,
// чтобы вызывающий не делил указатели с хранилищем.
type Memory struct {
	mu        sync.RWMutex
	sessions  map[string][]byte
	summaries []domain.EncounterSummary
	progress  map[string]*domain.Progress
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string][]byte),
		progress: make(map[string]*domain.Progress),
	}
}

func (m *Memory) SaveSession(_ context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}

func (m *Memory) LoadSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return decodeSession(data)
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *Memory) SessionExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[id]
	return ok, nil
}

func (m *Memory) ListSessions(_ context.Context) ([]*domain.Session, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		m.mu.RLock()
		data, ok := m.sessions[id]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		s, err := decodeSession(data)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) SaveSummaries(_ context.Context, summaries []domain.EncounterSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summaries...)
	return nil
}

// Summaries - все сохраненные итоги (для тестов и отладки)
func (m *Memory) Summaries() []domain.EncounterSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.EncounterSummary(nil), m.summaries...)
}

func (m *Memory) Progress(_ context.Context, participantID string) (*domain.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.progress[participantID]; ok {
		cp := *p
		cp.Items = append([]string(nil), p.Items...)
		return &cp, nil
	}
	return &domain.Progress{ParticipantID: participantID}, nil
}

func (m *Memory) ApplyRewards(_ context.Context, rewards []domain.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rewards {
		p, ok := m.progress[r.ParticipantID]
		if !ok {
			p = &domain.Progress{ParticipantID: r.ParticipantID}
			m.progress[r.ParticipantID] = p
		}
		applyReward(p, r)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func decodeSession(data []byte) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Participants == nil {
		s.Participants = make(map[string]*domain.Combatant)
	}
	return &s, nil
}
