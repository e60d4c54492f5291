package handlers

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
)

// Handler processes bot updates.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// callbackPayload returns the decoded payload of the pressed inline
// button, empty when the update is not a callback.
func callbackPayload(c telebot.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}

	_, data, err := keyboard.DecodeCallback(strings.TrimPrefix(cb.Data, "\f"))
	if err != nil {
		return ""
	}
	return data
}

// respond answers the callback query so the client stops the spinner.
func respond(c telebot.Context, text string) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&telebot.CallbackResponse{Text: text})
}
