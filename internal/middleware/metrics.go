package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/handlers"
	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordUpdate(extractHandlerName(c), status, time.Since(start))

		return err
	}
}

// extractHandlerName groups updates into low-cardinality handler labels.
// Callback data is reduced to its action prefix so product IDs and page
// numbers do not explode the label space.
func extractHandlerName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		unique, _, err := keyboard.DecodeCallback(strings.TrimPrefix(cb.Data, "\f"))
		if err != nil || unique == "" {
			return "callback"
		}
		return "cb:" + unique
	}

	if msg := c.Message(); msg != nil {
		if msg.Contact != nil {
			return "contact"
		}
		if msg.Photo != nil {
			return "photo"
		}
	}

	if text := c.Text(); text != "" {
		if strings.HasPrefix(text, "/") {
			if idx := strings.IndexAny(text, " @"); idx > 0 {
				return text[:idx]
			}
			return text
		}
		return "text"
	}

	return "unknown"
}
