package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fightschool-server/internal/domain"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SessionRecord - снимок сессии целиком (ключ -> JSON)
type SessionRecord struct {
	ID        string `gorm:"primaryKey;size:16"`
	FightID   string `gorm:"index"`
	Phase     string
	Snapshot  []byte
	UpdatedAt time.Time
}

// EncounterSummaryRecord - итог боя одного участника
type EncounterSummaryRecord struct {
	ID               uint   `gorm:"primaryKey"`
	SessionID        string `gorm:"index"`
	FightID          string `gorm:"index"`
	ParticipantID    string `gorm:"index"`
	Class            string
	Victory          bool
	QuestionsSeen    int
	QuestionsCorrect int
	DamageDealt      int
	DamageBlocked    int
	DamageTaken      int
	HealingDone      int
	Deaths           int
	Experience       int
	CreatedAt        time.Time
}

// StudentProgressRecord - мета-прогресс участника
type StudentProgressRecord struct {
	ParticipantID       string   `gorm:"primaryKey"`
	Experience          int
	CompletedEncounters int
	Items               []string `gorm:"serializer:json"`
	UpdatedAt           time.Time
}

type sqliteStore struct {
	db *gorm.DB
}

// OpenSQLite открывает базу и мигрирует схему
func OpenSQLite(dsn string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&SessionRecord{}, &EncounterSummaryRecord{}, &StudentProgressRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (r *sqliteStore) SaveSession(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	rec := SessionRecord{ID: s.ID, FightID: s.FightID, Phase: string(s.Phase), Snapshot: data, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fight_id", "phase", "snapshot", "updated_at"}),
	}).Create(&rec).Error
}

func (r *sqliteStore) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	var rec SessionRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(rec.Snapshot)
}

func (r *sqliteStore) DeleteSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&SessionRecord{}).Error
}

func (r *sqliteStore) SessionExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&SessionRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sqliteStore) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	var recs []SessionRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Session, 0, len(recs))
	for _, rec := range recs {
		s, err := decodeSession(rec.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", rec.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *sqliteStore) SaveSummaries(ctx context.Context, summaries []domain.EncounterSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	recs := make([]EncounterSummaryRecord, len(summaries))
	for i, s := range summaries {
		recs[i] = EncounterSummaryRecord{
			SessionID:        s.SessionID,
			FightID:          s.FightID,
			ParticipantID:    s.ParticipantID,
			Class:            s.Class,
			Victory:          s.Victory,
			QuestionsSeen:    s.QuestionsSeen,
			QuestionsCorrect: s.QuestionsCorrect,
			DamageDealt:      s.DamageDealt,
			DamageBlocked:    s.DamageBlocked,
			DamageTaken:      s.DamageTaken,
			HealingDone:      s.HealingDone,
			Deaths:           s.Deaths,
			Experience:       s.Experience,
		}
	}
	return r.db.WithContext(ctx).Create(&recs).Error
}

func (r *sqliteStore) Progress(ctx context.Context, participantID string) (*domain.Progress, error) {
	var rec StudentProgressRecord
	err := r.db.WithContext(ctx).Where("participant_id = ?", participantID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.Progress{ParticipantID: participantID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Progress{
		ParticipantID:       rec.ParticipantID,
		Experience:          rec.Experience,
		CompletedEncounters: rec.CompletedEncounters,
		Items:               rec.Items,
	}, nil
}

func (r *sqliteStore) ApplyRewards(ctx context.Context, rewards []domain.Reward) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rw := range rewards {
			var rec StudentProgressRecord
			err := tx.Where("participant_id = ?", rw.ParticipantID).First(&rec).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			p := &domain.Progress{
				ParticipantID:       rw.ParticipantID,
				Experience:          rec.Experience,
				CompletedEncounters: rec.CompletedEncounters,
				Items:               rec.Items,
			}
			applyReward(p, rw)

			rec = StudentProgressRecord{
				ParticipantID:       p.ParticipantID,
				Experience:          p.Experience,
				CompletedEncounters: p.CompletedEncounters,
				Items:               p.Items,
				UpdatedAt:           time.Now(),
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sqliteStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
