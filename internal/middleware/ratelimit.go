package middleware

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/i18n"
	"github.com/avrorra/storebot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter    ratelimit.Limiter
	rules      *ratelimit.Rules
	translator i18n.Translator
	log        *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, translator i18n.Translator, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter:    limiter,
		rules:      rules,
		translator: translator,
		log:        log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
// Limiter failures let the update through so a Redis outage does not take
// the bot down with it.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := sender.ID
		limit, window := m.rules.PerUserLimit()
		if limit <= 0 || window <= 0 {
			return next(c)
		}

		key := fmt.Sprintf("user:%d", userID)
		result, err := m.limiter.Check(context.Background(), key, limit, window)
		if err != nil && result == nil {
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID))
			if cb := c.Callback(); cb != nil {
				return c.Respond(&telebot.CallbackResponse{Text: m.limitMessage()})
			}
			return c.Send(m.limitMessage())
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) limitMessage() string {
	if m.translator != nil {
		return m.translator.T("errors.rate_limited")
	}
	return "Слишком много запросов, попробуйте чуть позже."
}
