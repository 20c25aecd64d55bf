// Package main — точка входа бота.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/guild-top/internal/app"
	"serotonyl.ru/guild-top/internal/config"
)

func main() {
	os.Exit(run(context.Background()))
}

// run запускает бота и возвращает код выхода процесса.
// Ненулевой код нужен Docker/systemd, чтобы увидеть падение.
func run(parent context.Context) int {
	// Настраиваем логирование
	setupLogging()

	log.Info("=== Бот запускается ===")

	// Загружаем конфигурацию из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("Не удалось загрузить конфигурацию")
		return 1
	}

	// Устанавливаем уровень логирования из конфига
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}
	if cfg.AppEnv != "development" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	// Контекст отменяется по Ctrl+C или docker stop
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем приложение (хранилище, сервисы, хосты)
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("Не удалось инициализировать приложение")
		return 1
	}
	defer application.Close()

	log.Info("=== Бот готов к работе ===")

	if err := application.Run(ctx); err != nil {
		log.WithError(err).Error("Приложение остановлено с ошибкой")
		return 1
	}

	log.Info("=== Бот остановлен ===")
	return 0
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
