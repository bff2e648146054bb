package catalog

import (
	"context"
	"errors"
	"fightschool-server/internal/domain"
	"fightschool-server/pkg/logger"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

const (
	FightsFile   = "fights.yaml"
	StudentsFile = "students.yaml"
	ItemsFile    = "items.yaml"
)

// DefaultMissReloadInterval - не чаще одного перечитывания по промаху за это время
const DefaultMissReloadInterval = 2 * time.Second

// YAML - каталог из YAML-файлов. Файлы перечитываются при промахе
// (шаблон могли добавить во внешнем редакторе), но не чаще MissReloadInterval.
// Параллельные перезагрузки схлопываются через singleflight.
type YAML struct {
	dir   string
	group singleflight.Group

	MissReloadInterval time.Duration
	now                func() time.Time

	mu       sync.RWMutex
	t        *tables
	loadedAt time.Time
}

func NewYAML(dir string) *YAML {
	return &YAML{dir: dir, MissReloadInterval: DefaultMissReloadInterval, now: time.Now}
}

// Reload перечитывает все файлы каталога
func (c *YAML) Reload(ctx context.Context) error {
	ch := c.group.DoChan("reload", func() (interface{}, error) {
		t, err := loadTables(c.dir)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.t = t
		c.loadedAt = c.now()
		c.mu.Unlock()

		logger.Log.WithFields(logrus.Fields{
			"component": "catalog",
			"dir":       c.dir,
			"fights":    len(t.fights),
			"students":  len(t.students),
			"items":     len(t.items),
		}).Info("Catalog loaded.")
		return nil, nil
	})

	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *YAML) current() *tables {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// missReloadDue - с прошлой загрузки прошло не меньше MissReloadInterval
func (c *YAML) missReloadDue() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Sub(c.loadedAt) >= c.MissReloadInterval
}

// lookup ищет в текущем снимке, а при промахе перечитывает файлы,
// если окно MissReloadInterval уже прошло
func lookup[T any](ctx context.Context, c *YAML, get func(*tables) (T, error)) (T, error) {
	if t := c.current(); t != nil {
		v, err := get(t)
		if err == nil || !c.missReloadDue() {
			return v, err
		}
	}
	if err := c.Reload(ctx); err != nil {
		var zero T
		return zero, err
	}
	return get(c.current())
}

func (c *YAML) Fight(ctx context.Context, id string) (*domain.Fight, error) {
	return lookup(ctx, c, func(t *tables) (*domain.Fight, error) { return t.fight(id) })
}

func (c *YAML) Student(ctx context.Context, id string) (*domain.Student, error) {
	return lookup(ctx, c, func(t *tables) (*domain.Student, error) { return t.student(id) })
}

func (c *YAML) Items(ctx context.Context, ids []string) ([]domain.Item, error) {
	t := c.current()
	if t == nil {
		if err := c.Reload(ctx); err != nil {
			return nil, err
		}
		t = c.current()
	}
	return t.itemsByID(ids), nil
}

func loadTables(dir string) (*tables, error) {
	t := newTables()

	var fightFile struct {
		Fights []domain.Fight `yaml:"fights"`
	}
	if err := readYAML(filepath.Join(dir, FightsFile), &fightFile); err != nil {
		return nil, err
	}
	for i := range fightFile.Fights {
		f := &fightFile.Fights[i]
		if f.ID == "" {
			return nil, fmt.Errorf("%s: fight #%d has no id", FightsFile, i)
		}
		f.Normalize()
		t.fights[f.ID] = f
	}

	var studentFile struct {
		Students []domain.Student `yaml:"students"`
	}
	if err := readYAML(filepath.Join(dir, StudentsFile), &studentFile); err != nil {
		return nil, err
	}
	for i := range studentFile.Students {
		s := &studentFile.Students[i]
		t.students[s.ID] = s
	}

	var itemFile struct {
		Items []domain.Item `yaml:"items"`
	}
	if err := readYAML(filepath.Join(dir, ItemsFile), &itemFile); err != nil {
		return nil, err
	}
	for _, it := range itemFile.Items {
		t.items[it.ID] = it
	}

	return t, nil
}

// readYAML читает файл; отсутствующий файл - пустая таблица
func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
