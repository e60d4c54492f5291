// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables, validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// missing env files are fine outside of local development
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env
	applyDefaults(&cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

// Watcher re-reads the limits section whenever the config file changes on disk.
type Watcher struct {
	mu     sync.RWMutex
	limits LimitsConfig
}

// NewWatcher registers a file watch on v and returns a handle exposing the live limits section.
func NewWatcher(v *viper.Viper, initial LimitsConfig, onChange func(LimitsConfig)) *Watcher {
	w := &Watcher{limits: initial}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		applyDefaults(&cfg)

		w.mu.Lock()
		w.limits = cfg.Limits
		w.mu.Unlock()

		if onChange != nil {
			onChange(cfg.Limits)
		}
	})
	v.WatchConfig()

	return w
}

// Limits returns the most recently loaded limits section.
func (w *Watcher) Limits() LimitsConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.limits
}
