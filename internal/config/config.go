// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	// Чаты, в которых разрешён /top. Пусто — любые группы.
	TelegramAllowedChatsRaw string  `envconfig:"TELEGRAM_ALLOWED_CHATS"`
	TelegramAllowedChats    []int64 `envconfig:"-"` // заполним вручную

	// --- Discord ---
	DiscordBotToken string `envconfig:"DISCORD_BOT_TOKEN"`

	// --- HTTP (только чтение) ---
	HTTPAddr string `envconfig:"HTTP_ADDR"`

	// --- Database ---
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/guild.db"`
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"guild_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`
	AppLocale   string `envconfig:"APP_LOCALE" default:"ru-RU"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Top ---
	// Сколько живёт меню топа без нажатий
	TopSessionTTL time.Duration `envconfig:"TOP_SESSION_TTL" default:"3m"`
	// Сколько ждём ответа хранилища на один рендер
	TopQueryTimeout time.Duration `envconfig:"TOP_QUERY_TIMEOUT" default:"5s"`

	// --- Economy ---
	EconomyCurrencyName     string   `envconfig:"ECONOMY_CURRENCY_NAME" default:"пленки"`
	EconomyCurrencyFormsRaw string   `envconfig:"ECONOMY_CURRENCY_FORMS" default:"пленка,пленки,пленок"`
	EconomyCurrencyForms    []string `envconfig:"-"`
	// TOML с настройками валюты по сообществам (необязательно)
	EconomySettingsPath string `envconfig:"ECONOMY_SETTINGS_PATH"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.TelegramBotToken == "" && c.DiscordBotToken == "" && c.HTTPAddr == "" {
		return fmt.Errorf("не задан ни TELEGRAM_BOT_TOKEN, ни DISCORD_BOT_TOKEN, ни HTTP_ADDR")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен для DB_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH не задан")
		}
	default:
		return fmt.Errorf("неизвестный DB_DRIVER %q", c.DBDriver)
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.TopSessionTTL <= 0 || c.TopQueryTimeout <= 0 {
		return fmt.Errorf("TOP_SESSION_TTL и TOP_QUERY_TIMEOUT должны быть > 0")
	}
	if n := len(c.EconomyCurrencyForms); n == 1 || n > 3 {
		return fmt.Errorf("ECONOMY_CURRENCY_FORMS: нужно 2 или 3 формы, получено %d", n)
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.TelegramAllowedChatsRaw)
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_ALLOWED_CHATS parse: %w", err)
	}
	cfg.TelegramAllowedChats = ids
	cfg.EconomyCurrencyForms = parseCSV(cfg.EconomyCurrencyFormsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	parts := parseCSV(s)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
