package config

import "time"

// Config holds runtime configuration for the storefront bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Contacts ContactsConfig `mapstructure:"contacts"`
}

// ContactsConfig holds the operator contact details shown by the info
// buttons.
type ContactsConfig struct {
	Phone   string `mapstructure:"phone"`
	ChatURL string `mapstructure:"chat_url"`
}

// BotConfig configures the Telegram connection.
type BotConfig struct {
	Token    string        `mapstructure:"token" validate:"required"`
	Mode     string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Language string        `mapstructure:"language"`
}

// ServerConfig configures the ops HTTP server (health, metrics).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL catalog store.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig configures the Redis connection used for rate limiting and idempotency.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// CatalogConfig controls catalog behavior.
type CatalogConfig struct {
	ImageDir      string        `mapstructure:"image_dir"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	PageSize      int           `mapstructure:"page_size"`
	MigrationsDir string        `mapstructure:"migrations_dir"`
}

// SessionsConfig controls the in-memory session registry lifecycle.
type SessionsConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LimitsConfig controls per-user rate limiting. The section is hot-reloadable.
type LimitsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AdminConfig lists Telegram IDs allowed to use the admin panel.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// IsAdmin reports whether the Telegram ID may use the admin panel.
func (c AdminConfig) IsAdmin(id int64) bool {
	for _, allowed := range c.IDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + sslmode
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Timeout == 0 {
		cfg.Bot.Timeout = 10 * time.Second
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "text"
	}
	if cfg.Catalog.ImageDir == "" {
		cfg.Catalog.ImageDir = "images"
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = 5
	}
	if cfg.Catalog.MigrationsDir == "" {
		cfg.Catalog.MigrationsDir = "migrations"
	}
	if cfg.Sessions.IdleTTL == 0 {
		cfg.Sessions.IdleTTL = 24 * time.Hour
	}
	if cfg.Sessions.SweepInterval == 0 {
		cfg.Sessions.SweepInterval = time.Hour
	}
	if cfg.Limits.Requests == 0 {
		cfg.Limits.Requests = 20
	}
	if cfg.Limits.Window == 0 {
		cfg.Limits.Window = 10 * time.Second
	}
}
