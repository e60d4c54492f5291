package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// InlineButton is a lightweight inline keyboard button definition used by the builder.
type InlineButton struct {
	Text   string
	Unique string // Action name that routes the press to a handler.
	Data   string // Payload encoded into callback data.
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions before rendering telebot markup.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
	log  *slog.Logger
}

// NewInlineKeyboard creates a builder instance backed by inline reply markup.
func NewInlineKeyboard(log *slog.Logger) *InlineKeyboardBuilder {
	if log == nil {
		log = slog.Default()
	}

	return &InlineKeyboardBuilder{
		rows: make([][]InlineButton, 0),
		log:  log,
	}
}

// AddRow appends a new row made of custom InlineButton definitions.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build finalizes inline markup, encoding each button's action and
// payload into callback data. Buttons whose payload exceeds the Telegram
// limit are rendered without the payload so the keyboard stays usable.
func (b *InlineKeyboardBuilder) Build() *telebot.ReplyMarkup {
	inlineKeyboard := make([][]telebot.InlineButton, len(b.rows))
	for i, row := range b.rows {
		inlineKeyboard[i] = make([]telebot.InlineButton, len(row))
		for j, btn := range row {
			data, err := EncodeCallback(btn.Unique, btn.Data)
			if err != nil {
				b.log.Warn("callback payload dropped",
					slog.String("unique", btn.Unique),
					slog.Any("error", err),
				)
				data = btn.Unique
			}

			inlineKeyboard[i][j] = telebot.InlineButton{
				Text: btn.Text,
				Data: data,
			}
		}
	}

	return &telebot.ReplyMarkup{InlineKeyboard: inlineKeyboard}
}
