// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает хранилище, создаёт репозитории, сервисы,
// хосты (Telegram, Discord, HTTP) и планировщик.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"serotonyl.ru/guild-top/internal/api/rest"
	"serotonyl.ru/guild-top/internal/bot"
	"serotonyl.ru/guild-top/internal/bot/filters"
	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/config"
	"serotonyl.ru/guild-top/internal/db"
	"serotonyl.ru/guild-top/internal/db/postgres"
	"serotonyl.ru/guild-top/internal/db/sqlite"
	"serotonyl.ru/guild-top/internal/discord"
	"serotonyl.ru/guild-top/internal/features/economy"
	"serotonyl.ru/guild-top/internal/features/members"
	"serotonyl.ru/guild-top/internal/features/relationships"
	"serotonyl.ru/guild-top/internal/features/reputation"
	"serotonyl.ru/guild-top/internal/features/top"
	"serotonyl.ru/guild-top/internal/i18n"
	"serotonyl.ru/guild-top/internal/jobs"
)

// App содержит все компоненты приложения.
// Хосты, для которых не задан токен или адрес, остаются nil.
type App struct {
	Bot       *bot.Bot
	Discord   *discord.Host
	HTTP      *rest.Server
	Scheduler *jobs.Scheduler
	Top       *top.Service

	closeStore func()
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.StandardLogger()

	// === 1. Хранилище ===
	store, health, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{closeStore: closeStore}

	// === 2. Локализация и часовой пояс ===
	catalog, err := i18n.Load()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("ошибка загрузки переводов: %w", err)
	}
	tr := catalog.Printer(cfg.AppLocale)
	loc := common.LoadLocation(cfg.AppTimezone)

	// === 3. Репозитории и сервисы ===
	memberService := members.NewService(members.NewRepository(store), logger.WithField("feature", "members"))
	reputationService := reputation.NewService(reputation.NewRepository(store), logger.WithField("feature", "reputation"))
	relationshipService := relationships.NewService(relationships.NewRepository(store), logger.WithField("feature", "relationships"))

	economyRepo, err := newEconomyRepository(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	economyService := economy.NewService(economyRepo, logger.WithField("feature", "economy"))

	app.Top = top.NewService(top.Deps{
		Members:       memberService,
		Reputation:    reputationService,
		Relationships: relationshipService,
		Economy:       economyService,
		Sessions:      top.NewSessions(cfg.TopSessionTTL),
		Logger:        logger.WithField("feature", "top"),
	})

	// === 4. Telegram ===
	if cfg.TelegramBotToken != "" {
		api, err := telego.NewBot(cfg.TelegramBotToken)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
		}
		me, err := api.GetMe(ctx)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("ошибка авторизации в Telegram: %w", err)
		}
		log.Infof("Авторизован как @%s", me.Username)

		topHandler := top.NewHandler(app.Top, api, tr, loc, cfg.TopQueryTimeout)
		app.Bot = bot.New(api, cfg, tr, topHandler, filters.NewChatFilter(cfg.TelegramAllowedChats))
	}

	// === 5. Discord ===
	if cfg.DiscordBotToken != "" {
		app.Discord = discord.New(cfg.DiscordBotToken, app.Top, tr, cfg.TopQueryTimeout)
	}

	// === 6. HTTP ===
	if cfg.HTTPAddr != "" {
		if cfg.AppEnv != "development" {
			gin.SetMode(gin.ReleaseMode)
		}
		rps, burst := httpLimit(cfg)
		ranking := rest.NewRankingHandler(app.Top, catalog, cfg.AppLocale, loc, cfg.TopQueryTimeout, logger.WithField("host", "http"))
		router := rest.NewRouter(ranking, health, logger.WithField("host", "http"), rps, burst)
		app.HTTP = rest.NewServer(cfg.HTTPAddr, router)
	}

	// === 7. Планировщик ===
	app.Scheduler = jobs.NewScheduler(loc, app.Top)

	log.WithFields(log.Fields{
		"driver":   cfg.DBDriver,
		"telegram": app.Bot != nil,
		"discord":  app.Discord != nil,
		"http":     app.HTTP != nil,
	}).Info("Все компоненты инициализированы")

	return app, nil
}

// Run запускает планировщик и все хосты, ждёт отмены ctx или первой ошибки.
func (a *App) Run(ctx context.Context) error {
	if err := a.Scheduler.Start(); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)
	if a.Bot != nil {
		g.Go(func() error { return a.Bot.Start(ctx) })
	}
	if a.Discord != nil {
		g.Go(func() error { return a.Discord.Start(ctx) })
	}
	if a.HTTP != nil {
		g.Go(func() error { return a.HTTP.Run(ctx) })
	}
	return g.Wait()
}

// Close освобождает хранилище.
func (a *App) Close() {
	if a.closeStore != nil {
		a.closeStore()
	}
}

// openStore открывает хранилище выбранного драйвера и возвращает
// запросчик, проверку здоровья для /healthz и функцию закрытия.
func openStore(ctx context.Context, cfg *config.Config) (db.Queryer, rest.HealthFunc, func(), error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		d, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		return d, d.PingContext, func() { d.Close() }, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool, postgres.Schema); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		return postgres.NewQueryer(pool), pool.Ping, pool.Close, nil
	}
}

// newEconomyRepository берёт валюту из окружения, а если задан файл,
// дополняет её настройками сообществ из TOML.
func newEconomyRepository(cfg *config.Config) (*economy.Repository, error) {
	fallback := economy.Settings{Coin: cfg.EconomyCurrencyName, Forms: cfg.EconomyCurrencyForms}
	if cfg.EconomySettingsPath == "" {
		return economy.NewRepository(fallback), nil
	}
	repo, err := economy.LoadFile(cfg.EconomySettingsPath, fallback)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки настроек экономики: %w", err)
	}
	log.WithFields(log.Fields{
		"path":   cfg.EconomySettingsPath,
		"guilds": repo.Len(),
	}).Info("Настройки экономики загружены")
	return repo, nil
}

// httpLimit переводит RATE_LIMIT_REQUESTS за RATE_LIMIT_WINDOW в лимит для HTTP.
func httpLimit(cfg *config.Config) (rate.Limit, int) {
	return rate.Every(cfg.RateLimitWindow / time.Duration(cfg.RateLimitRequests)), cfg.RateLimitRequests
}
