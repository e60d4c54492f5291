package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
)

// MenuHandler owns the main menu anchor message and the static info
// buttons around it.
type MenuHandler struct {
	deps Deps
}

// NewMenuHandler builds the menu handler.
func NewMenuHandler(deps Deps) *MenuHandler {
	return &MenuHandler{deps: deps}
}

// showMainMenu anchors the welcome message with the reply keyboard.
// Shared by every flow that navigates back to the menu.
func showMainMenu(deps Deps, s *session.Session) error {
	deps.Screen.ClearTransient(s)

	return deps.Screen.ShowMain(s, screen.Content{
		Text:   deps.Translator.T("menu.welcome"),
		Markup: keyboard.MainMenu(deps.Translator),
	})
}

// Start handles /start: discard any in-flight dialogue and show a clean
// menu.
func (h *MenuHandler) Start(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	var err error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		s.ResetCheckout()
		s.ResetAdmin()
		err = showMainMenu(h.deps, s)
	})

	return err
}

// Show re-anchors the menu without touching dialogue state. Used as the
// default handler for unrecognized text.
func (h *MenuHandler) Show(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	var err error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		err = showMainMenu(h.deps, s)
	})

	return err
}

// Delivery shows the delivery conditions below the menu.
func (h *MenuHandler) Delivery(c telebot.Context) error {
	return h.sendInfo(c, h.deps.Translator.T("info.delivery"))
}

// Call shows the operator phone number.
func (h *MenuHandler) Call(c telebot.Context) error {
	return h.sendInfo(c, h.deps.Translator.Tf("info.call", h.deps.Contacts.Phone))
}

// Chat shows the operator chat link.
func (h *MenuHandler) Chat(c telebot.Context) error {
	return h.sendInfo(c, h.deps.Translator.Tf("info.chat", h.deps.Contacts.ChatURL))
}

func (h *MenuHandler) sendInfo(c telebot.Context, text string) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	var err error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		h.deps.Screen.ClearTransient(s)
		_, err = h.deps.Screen.SendTransient(s, screen.Content{Text: text})
	})

	return err
}
