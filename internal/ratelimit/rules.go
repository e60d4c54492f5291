package ratelimit

import (
	"time"

	"github.com/avrorra/storebot/pkg/config"
)

// Rules resolves the currently effective per-user limit. The provider
// indirection lets the limits follow config hot reloads without
// restarting the bot.
type Rules struct {
	provider func() config.LimitsConfig
}

// NewRules constructs rules over a live limits provider. A nil provider
// yields permanently disabled limits.
func NewRules(provider func() config.LimitsConfig) *Rules {
	return &Rules{provider: provider}
}

// NewStaticRules constructs rules over a fixed limits snapshot.
func NewStaticRules(cfg config.LimitsConfig) *Rules {
	return &Rules{provider: func() config.LimitsConfig { return cfg }}
}

// Enabled reports whether limiting is currently switched on.
func (r *Rules) Enabled() bool {
	if r == nil || r.provider == nil {
		return false
	}
	return r.provider().Enabled
}

// PerUserLimit returns the current per-user request limit and window.
func (r *Rules) PerUserLimit() (int, time.Duration) {
	if r == nil || r.provider == nil {
		return 0, 0
	}
	cfg := r.provider()
	return cfg.Requests, cfg.Window
}
