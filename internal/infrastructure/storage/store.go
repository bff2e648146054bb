package storage

import (
	"context"
	"fightschool-server/internal/domain"
)

// Store - key-value хранилище сессий плюс итоги боев и мета-прогресс.
// Снимок сессии хранится целиком; durability сверх "восстановиться после рестарта" не требуется.
type Store interface {
	SaveSession(ctx context.Context, s *domain.Session) error
	// LoadSession возвращает domain.ErrSessionNotFound, если записи нет
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	// DeleteSession идемпотентен: удаление несуществующей записи не ошибка
	DeleteSession(ctx context.Context, id string) error
	SessionExists(ctx context.Context, id string) (bool, error)
	ListSessions(ctx context.Context) ([]*domain.Session, error)

	SaveSummaries(ctx context.Context, summaries []domain.EncounterSummary) error
	// Progress никогда не возвращает nil: новый участник получает пустой прогресс
	Progress(ctx context.Context, participantID string) (*domain.Progress, error)
	ApplyRewards(ctx context.Context, rewards []domain.Reward) error

	Close() error
}

func applyReward(p *domain.Progress, r domain.Reward) {
	p.Experience += r.Experience
	p.CompletedEncounters++
	if r.ItemID != "" {
		p.Items = append(p.Items, r.ItemID)
	}
}
