// Package catalog - источник шаблонов боев и профилей участников.
// Их CRUD живет во внешних сервисах; движок только читает.
package catalog

import (
	"context"
	"fightschool-server/internal/domain"
	"fmt"
	"sync"
)

// Catalog - контракты внешних коллабораторов
type Catalog interface {
	Fight(ctx context.Context, id string) (*domain.Fight, error)
	Student(ctx context.Context, id string) (*domain.Student, error)
	Items(ctx context.Context, ids []string) ([]domain.Item, error)
}

// tables - один загруженный снимок каталога
type tables struct {
	fights   map[string]*domain.Fight
	students map[string]*domain.Student
	items    map[string]domain.Item
}

func newTables() *tables {
	return &tables{
		fights:   make(map[string]*domain.Fight),
		students: make(map[string]*domain.Student),
		items:    make(map[string]domain.Item),
	}
}

func (t *tables) fight(id string) (*domain.Fight, error) {
	f, ok := t.fights[id]
	if !ok {
		return nil, fmt.Errorf("fight %q: %w", id, domain.ErrFightNotFound)
	}
	return cloneFight(f), nil
}

func (t *tables) student(id string) (*domain.Student, error) {
	s, ok := t.students[id]
	if !ok {
		return nil, fmt.Errorf("student %q: %w", id, domain.ErrStudentNotFound)
	}
	cp := *s
	return &cp, nil
}

// Неизвестные предметы пропускаются: экипировка могла быть удалена из магазина
func (t *tables) itemsByID(ids []string) []domain.Item {
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := t.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func cloneFight(f *domain.Fight) *domain.Fight {
	cp := *f
	cp.Questions = append([]domain.Question(nil), f.Questions...)
	cp.Enemies = append([]domain.EnemyTemplate(nil), f.Enemies...)
	cp.Loot = append([]domain.LootEntry(nil), f.Loot...)
	return &cp
}

// Memory - каталог в памяти (тесты, локальный запуск без файлов)
type Memory struct {
	mu sync.RWMutex
	t  *tables
}

func NewMemory() *Memory {
	return &Memory{t: newTables()}
}

func (m *Memory) PutFight(f domain.Fight) {
	f.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.fights[f.ID] = &f
}

func (m *Memory) PutStudent(s domain.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.students[s.ID] = &s
}

func (m *Memory) PutItem(it domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t.items[it.ID] = it
}

func (m *Memory) Fight(_ context.Context, id string) (*domain.Fight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.fight(id)
}

func (m *Memory) Student(_ context.Context, id string) (*domain.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.student(id)
}

func (m *Memory) Items(_ context.Context, ids []string) ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.itemsByID(ids), nil
}
