package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	Timing  TimingConfig  `toml:"timing"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Addr          string `toml:"addr" env:"FS_ADDR"`
	AllowedOrigin string `toml:"allowed_origin" env:"FS_ALLOWED_ORIGIN"` // "" - любой origin
	Debug         bool   `toml:"debug" env:"FS_DEBUG"`                   // включает /debug/*
}

type StorageConfig struct {
	DSN        string `toml:"dsn" env:"FS_DB_DSN"`               // sqlite DSN; "" - хранилище в памяти
	JournalDir string `toml:"journal_dir" env:"FS_JOURNAL_DIR"` // "" - журнал боя не пишется
}

type CatalogConfig struct {
	Dir string `toml:"dir" env:"FS_CATALOG_DIR"` // каталог с fights.yaml, students.yaml, items.yaml
	// MissReloadInterval - как часто промах по id может перечитать файлы
	MissReloadInterval time.Duration `toml:"miss_reload_interval" env:"FS_CATALOG_MISS_RELOAD"`
}

// TimingConfig - длительности фаз. Unit - одна "единица времени" из описания фаз.
type TimingConfig struct {
	Unit              time.Duration `toml:"unit"`
	AbilitiesCeiling  int           `toml:"abilities_ceiling_units"`   // потолок фазы abilities
	AbilitiesIdle     int           `toml:"abilities_inactivity_units"` // выход без активности
	ModalUnit         time.Duration `toml:"modal_unit"`                 // на одно событие обратной связи
	AIBase            time.Duration `toml:"ai_base"`
	AIPerAttack       time.Duration `toml:"ai_per_attack"`
	AIMin             time.Duration `toml:"ai_min"`
	StateCheckPause   time.Duration `toml:"state_check_pause"`
	GameOverGrace     time.Duration `toml:"game_over_grace"`
	BroadcastDebounce time.Duration `toml:"broadcast_debounce"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"` // "json" или "text"
}

// Load читает TOML (если путь задан и файл есть), затем накладывает переменные окружения
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// работаем на значениях по умолчанию
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет, что тайминги имеют смысл
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	t := c.Timing
	if t.Unit <= 0 || t.ModalUnit <= 0 {
		return errors.New("timing.unit and timing.modal_unit must be positive")
	}
	if t.AbilitiesCeiling <= 0 || t.AbilitiesIdle <= 0 {
		return errors.New("abilities ceiling and inactivity windows must be positive")
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Catalog: CatalogConfig{
			Dir:                "data",
			MissReloadInterval: 2 * time.Second,
		},
		Timing: TimingConfig{
			Unit:              time.Second,
			AbilitiesCeiling:  12,
			AbilitiesIdle:     12,
			ModalUnit:         2 * time.Second,
			AIBase:            2 * time.Second,
			AIPerAttack:       1500 * time.Millisecond,
			AIMin:             time.Second,
			StateCheckPause:   time.Second,
			GameOverGrace:     30 * time.Second,
			BroadcastDebounce: 150 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
