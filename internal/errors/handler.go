package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/avrorra/storebot/pkg/logger"
)

// Handler is the single sink for handler errors: it logs, reports to
// Sentry when the severity warrants it, and yields the text to show
// the user.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

// NewHandler builds the error sink.
func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{log: log, sentryEnabled: sentryEnabled}
}

// Handle processes err and returns the user-facing message plus whether
// the failed operation may be retried. The message is empty when the
// error carries no user-facing text; callers supply their own fallback.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr == nil {
		log.Error("unclassified error", h.logArgs(ctx,
			slog.String("message", err.Error()),
			slog.String("severity", string(SeverityHigh)),
		)...)

		if h.sentryEnabled {
			h.report(err)
		}

		return "", false
	}

	log.Error("application error", h.logArgs(ctx,
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
	)...)

	if h.sentryEnabled && (appErr.Severity == SeverityCritical || appErr.Severity == SeverityHigh) {
		h.report(err)
	}

	return appErr.UserMessage, appErr.Retryable
}

// logArgs appends the request correlation ID, when present, to the
// error's own attributes.
func (h *Handler) logArgs(ctx context.Context, attrs ...slog.Attr) []any {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}

	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	return args
}

func (h *Handler) report(err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}
			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}
