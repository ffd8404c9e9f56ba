package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port    string `env:"PORT" envDefault:"5250"`
		GinMode string `env:"GIN_MODE" envDefault:"release"`

		// Origins allowed by CORS, "*" allows any
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}

	Database struct {
		// Either "sqlite" or "mysql"
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
		Path   string `env:"DB_PATH" envDefault:"database/immopro.db"`
		DSN    string `env:"DB_DSN"`
	}

	Sessions struct {
		TTL             time.Duration `env:"SESSION_TTL" envDefault:"30m"`
		CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
	}

	// Alerts configures the fan-out of saved scenarios to notifications
	Alerts struct {
		// Capacity of the scenario queue, in batches
		QueueBufferSize int `env:"QUEUE_BUFFER_SIZE" envDefault:"100"`

		// Number of concurrent alert processors
		ProcessorCount int `env:"ALERT_PROCESSOR_COUNT" envDefault:"1"`

		// Maximum number of retries for a failed delivery
		MaxRetries int `env:"ALERT_MAX_RETRIES" envDefault:"3"`

		RetryDelay time.Duration `env:"ALERT_RETRY_DELAY" envDefault:"5s"`

		MinGlobalScore float64 `env:"ALERT_MIN_GLOBAL_SCORE" envDefault:"7.5"`
		MinROI         float64 `env:"ALERT_MIN_ROI" envDefault:"0"`
	}

	Retention struct {
		// Scenarios older than this many days are pruned, 0 keeps everything
		ScenarioDays  int    `env:"SCENARIO_RETENTION_DAYS" envDefault:"0"`
		PruneSchedule string `env:"PRUNE_SCHEDULE" envDefault:"@daily"`
	}

	RateLimit struct {
		RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
		Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"30"`
	}

	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
		APIURL   string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	}
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env parsing cannot
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "mysql":
		if c.Database.DSN == "" {
			return errors.New("DB_DSN is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Alerts.QueueBufferSize <= 0 {
		return fmt.Errorf("QUEUE_BUFFER_SIZE must be positive, got %d", c.Alerts.QueueBufferSize)
	}
	if c.Alerts.ProcessorCount <= 0 {
		return fmt.Errorf("ALERT_PROCESSOR_COUNT must be positive, got %d", c.Alerts.ProcessorCount)
	}
	if c.Alerts.MaxRetries < 0 {
		return fmt.Errorf("ALERT_MAX_RETRIES must not be negative, got %d", c.Alerts.MaxRetries)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Sessions.TTL)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when Telegram is enabled")
	}
	return nil
}
