package logger

import (
	"context"
	"log/slog"
	"strings"
)

// Attribute keys whose values never reach the log output. Phone and
// address are customer data collected during checkout.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"api_key":       {},
	"authorization": {},
	"phone":         {},
	"address":       {},
}

const maskedValue = "***"

// MaskingHandler is a slog.Handler decorator that masks sensitive
// attribute values before the record reaches the real handler.
type MaskingHandler struct {
	next slog.Handler
}

// NewMaskingHandler wraps next with attribute masking.
func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MaskingHandler{next: h.next.WithAttrs(attrs)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		if _, sensitive := sensitiveKeys[strings.ToLower(attr.Key)]; sensitive {
			attr.Value = slog.StringValue(maskedValue)
		}
		masked.AddAttrs(attr)
		return true
	})

	return h.next.Handle(ctx, masked)
}
