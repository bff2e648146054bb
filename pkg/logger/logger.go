package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
var Log *logrus.Logger

// Init инициализирует глобальный логгер из переменных окружения LOG_LEVEL и LOG_FORMAT.
// Вызывается один раз при старте (и в TestMain пакетов с тестами).
func Init() {
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure пересоздает логгер с явными уровнем и форматом.
// Пустой или неизвестный уровень -> info. Формат "json" - для продакшена, иначе текст.
func Configure(logLevel, logFormat string) {
	Log = logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(logLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(logFormat) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// SetOutput перенаправляет вывод (тесты глушат логи через io.Discard)
func SetOutput(w io.Writer) {
	if Log == nil {
		Init()
	}
	Log.SetOutput(w)
}
