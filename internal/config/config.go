package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // контейнер может быть без zoneinfo

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Port string `env:"PORT"` // порт HTTP-сервера

	// LINE
	LineChannelSecret      string `env:"LINE_CHANNEL_SECRET"`       // секрет канала, проверка X-Line-Signature
	LineChannelAccessToken string `env:"LINE_CHANNEL_ACCESS_TOKEN"` // токен Messaging API

	Gemini GeminiConfig

	// Контекст диалога
	ContextWindow        int           `env:"CONTEXT_WINDOW"`         // сколько реплик хранить на пользователя
	ContextStore         string        `env:"CONTEXT_STORE"`          // memory|postgres
	DatabaseURL          string        `env:"DATABASE_URL"`           // нужен только для postgres
	ContextIdleTTL       time.Duration `env:"CONTEXT_IDLE_TTL"`       // 0 = контекст не вычищается
	ContextSweepInterval time.Duration `env:"CONTEXT_SWEEP_INTERVAL"` // период джанитора

	Calendar CalendarConfig
	S3       S3Config
	Alerts   AlertsConfig

	CallbackRateLimit int `env:"CALLBACK_RATE_LIMIT"` // запросов в минуту на /callback, 0 = без лимита
}

// GeminiConfig — генерация через OpenAI-совместимый эндпоинт Gemini.
type GeminiConfig struct {
	APIKey          string        `env:"GEMINI_API_KEY"`
	BaseURL         string        `env:"GEMINI_BASE_URL"`
	Model           string        `env:"GEMINI_MODEL"`
	Temperature     float32       `env:"GEMINI_TEMPERATURE"`
	MaxOutputTokens int           `env:"GEMINI_MAX_OUTPUT_TOKENS"`
	Timeout         time.Duration `env:"GENERATE_TIMEOUT"`
	Persona         string        `env:"PERSONA_PROMPT"` // пусто: встроенная персона
}

type CalendarConfig struct {
	CredentialsFile string        `env:"GOOGLE_SERVICE_ACCOUNT_FILE"` // пусто: команда #行程 отвечает диагностикой
	CalendarID      string        `env:"CALENDAR_ID"`
	Timeout         time.Duration `env:"CALENDAR_TIMEOUT"`
	TimeZone        string        `env:"CALENDAR_TIMEZONE"` // в какой зоне печатать время событий
}

// S3Config — архив снапшота контекста. Без бакета архив выключен.
type S3Config struct {
	Endpoint    string `env:"S3_ENDPOINT"`
	AccessKey   string `env:"S3_ACCESS_KEY"`
	SecretKey   string `env:"S3_SECRET_KEY"`
	Bucket      string `env:"S3_BUCKET"`
	Region      string `env:"S3_REGION"`
	Secure      bool   `env:"S3_SECURE"`
	SnapshotKey string `env:"S3_SNAPSHOT_KEY"`
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type AlertsConfig struct {
	TelegramToken  string `env:"ALERT_TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"ALERT_TELEGRAM_CHAT_ID"`
}

func (c AlertsConfig) Enabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Defaults возвращает конфигурацию со значениями по умолчанию.
// Они перекрываются .env и переменными окружения.
func Defaults() *Config {
	return &Config{
		Port: "8080",
		Gemini: GeminiConfig{
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:           "gemma-3n-e4b-it",
			Temperature:     0.7,
			MaxOutputTokens: 1024,
			Timeout:         30 * time.Second,
		},
		ContextWindow:        5,
		ContextStore:         StoreMemory,
		ContextIdleTTL:       0,
		ContextSweepInterval: 10 * time.Minute,
		Calendar: CalendarConfig{
			CalendarID: "primary",
			Timeout:    10 * time.Second,
			TimeZone:   "Asia/Taipei",
		},
		S3: S3Config{
			Region:      "us-east-1",
			Secure:      true,
			SnapshotKey: "chat-context/snapshot.json",
		},
	}
}

// Load: .env → окружение поверх дефолтов → валидация.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.ContextStore = strings.ToLower(strings.TrimSpace(cfg.ContextStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is not set"))
	}
	if c.LineChannelAccessToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is not set"))
	}
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is not set"))
	}
	if c.ContextWindow < 1 {
		errs = append(errs, fmt.Errorf("CONTEXT_WINDOW must be >= 1, got %d", c.ContextWindow))
	}

	switch c.ContextStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for CONTEXT_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CONTEXT_STORE %q", c.ContextStore))
	}

	if c.ContextIdleTTL < 0 {
		errs = append(errs, errors.New("CONTEXT_IDLE_TTL must not be negative"))
	}
	if c.ContextIdleTTL > 0 && c.ContextSweepInterval <= 0 {
		errs = append(errs, errors.New("CONTEXT_SWEEP_INTERVAL must be positive when CONTEXT_IDLE_TTL is set"))
	}
	if c.CallbackRateLimit < 0 {
		errs = append(errs, errors.New("CALLBACK_RATE_LIMIT must not be negative"))
	}
	if c.Calendar.TimeZone != "" {
		if _, err := time.LoadLocation(c.Calendar.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("CALENDAR_TIMEZONE: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Location — зона для вывода времени событий; при ошибке UTC.
func (c CalendarConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
