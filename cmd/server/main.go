package main

import (
	"context"
	"fightschool-server/internal/agent"
	"fightschool-server/internal/catalog"
	"fightschool-server/internal/config"
	"fightschool-server/internal/engine"
	"fightschool-server/internal/infrastructure/storage"
	"fightschool-server/internal/network"
	"fightschool-server/internal/server"
	"fightschool-server/internal/version"
	"fightschool-server/pkg/logger"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Сколько единиц таймера бот максимум думает над ответом
const botThinkUnits = 3

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var configPath, addr string
	var seed int64
	flag.StringVar(&configPath, "config", "config.toml", "Path to TOML config (missing file means defaults)")
	flag.StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	// По умолчанию 0 (значит у каждой сессии свое случайное зерно).
	flag.Int64Var(&seed, "seed", 0, "Fixed session seed (0 for random)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load config")
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)

	logger.Log.Info("Starting FightSchool server...")
	logger.Log.Info(version.String())

	// 2. Хранилище и каталог
	var store storage.Store
	if cfg.Storage.DSN != "" {
		store, err = storage.OpenSQLite(cfg.Storage.DSN)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to open session store")
		}
		logger.Log.WithField("dsn", cfg.Storage.DSN).Info("Using SQLite session store")
	} else {
		store = storage.NewMemory()
		logger.Log.Warn("No storage.dsn configured, sessions will not survive a restart")
	}

	cat := catalog.NewYAML(cfg.Catalog.Dir)
	cat.MissReloadInterval = cfg.Catalog.MissReloadInterval
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cat.Reload(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Failed to load catalog")
	}
	cancel()

	// 3. Инициализация ядра с конфигом
	engineCfg := engine.NewConfig()
	engineCfg.Timings = engine.TimingsFrom(cfg.Timing)
	if seed != 0 {
		engineCfg.Seed = seed
		logger.Log.WithField("seed", seed).Info("Using fixed session seed")
	}

	hub := network.NewHub(cfg.Timing.BroadcastDebounce)
	gameService := engine.NewService(engineCfg, hub, cat, store)
	gameService.Bots = agent.NewLauncher(hub, gameService, engineCfg.BotAccuracy, botThinkUnits*cfg.Timing.Unit)

	if cfg.Storage.JournalDir != "" {
		journals, err := storage.NewJournalService(cfg.Storage.JournalDir)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to prepare journal dir")
		}
		gameService.Journals = journals
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := gameService.Restore(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to restore sessions")
	}
	cancel()

	// 4. Запуск сервера
	srv := server.New(gameService, cfg.Server)
	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.WithError(err).Fatal("Server start error")
		}
	}()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info("Shutting down...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("HTTP shutdown incomplete")
	}
	// Записи сессий остаются в хранилище: после рестарта бои продолжатся
	gameService.Shutdown(ctx)
	if err := store.Close(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close store")
	}

	logger.Log.Info("Done.")
}
