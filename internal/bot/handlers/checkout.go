package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/checkout"
	"github.com/avrorra/storebot/internal/domain"
	errs "github.com/avrorra/storebot/internal/errors"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
	"github.com/avrorra/storebot/pkg/metrics"
)

// CheckoutHandler drives the order dialogue. All decisions live in the
// checkout package; this handler only translates updates into events
// and effects into messages.
type CheckoutHandler struct {
	deps Deps
}

// NewCheckoutHandler builds the checkout handler.
func NewCheckoutHandler(deps Deps) *CheckoutHandler {
	return &CheckoutHandler{deps: deps}
}

// Begin starts the dialogue from the checkout button.
func (h *CheckoutHandler) Begin(c telebot.Context) error {
	if err := h.HandleEvent(c, checkout.Event{Kind: checkout.EventCheckout}); err != nil {
		return err
	}
	return respond(c, "")
}

// Text feeds a message typed mid-dialogue into the machine. The two
// reply-keyboard labels are recognized by their translated text, all
// other input is free-form.
func (h *CheckoutHandler) Text(c telebot.Context) error {
	text := c.Text()

	switch text {
	case h.deps.Translator.T("checkout.enter_manually"):
		return h.HandleEvent(c, checkout.Event{Kind: checkout.EventManualEntry})
	case h.deps.Translator.T("menu.back_to_main"):
		return h.HandleEvent(c, checkout.Event{Kind: checkout.EventMainMenu})
	default:
		return h.HandleEvent(c, checkout.Event{Kind: checkout.EventText, Text: text})
	}
}

// Contact feeds a shared Telegram contact into the machine.
func (h *CheckoutHandler) Contact(c telebot.Context) error {
	msg := c.Message()
	if msg == nil || msg.Contact == nil {
		return nil
	}
	return h.HandleEvent(c, checkout.Event{Kind: checkout.EventContact, Phone: msg.Contact.PhoneNumber})
}

// HandleEvent advances the dialogue one step under the session lock and
// performs the resulting effects.
func (h *CheckoutHandler) HandleEvent(c telebot.Context, ev checkout.Event) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := context.Background()

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID

		in := checkout.Input{
			State:     s.Checkout,
			Phone:     s.Phone,
			CartEmpty: s.Cart.Empty(),
		}
		out := checkout.Advance(in, ev)
		s.Checkout = out.Next
		s.Phone = out.Phone

		for _, effect := range out.Effects {
			if err := h.apply(ctx, c, s, effect); err != nil {
				opErr = err
				return
			}
		}
	})

	return opErr
}

func (h *CheckoutHandler) apply(ctx context.Context, c telebot.Context, s *session.Session, effect checkout.Effect) error {
	t := h.deps.Translator

	switch effect.Kind {
	case checkout.EffectShowSummary:
		lines, total := cartLines(ctx, h.deps.Catalog, s.Cart)
		h.deps.Screen.ClearTransient(s)
		if _, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text: renderOrderSummary(t, lines, total),
		}); err != nil {
			return err
		}
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text:   t.T("checkout.phone_choice"),
			Markup: keyboard.PhoneChoice(t),
		})
		return err

	case checkout.EffectRejectEmptyCart:
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text: t.T("checkout.empty_cart"),
		})
		return err

	case checkout.EffectPromptManualPhone:
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text:   t.T("checkout.ask_phone"),
			Markup: keyboard.BackToMain(t),
		})
		return err

	case checkout.EffectRepromptChoice:
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text:   t.T("checkout.phone_choice"),
			Markup: keyboard.PhoneChoice(t),
		})
		return err

	case checkout.EffectRepromptPhone:
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text: t.T("checkout.invalid_phone"),
		})
		return err

	case checkout.EffectPromptAddress:
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text:   t.T("checkout.ask_address"),
			Markup: keyboard.BackToMain(t),
		})
		return err

	case checkout.EffectFinalize:
		return h.finalize(ctx, c, s, effect)

	case checkout.EffectReturnToMenu:
		return showMainMenu(h.deps, s)

	default:
		return nil
	}
}

// finalize builds the order from the cart, notifies the admins, and
// confirms to the user. The order is committed the moment the address
// arrives: the cart is cleared before any delivery is known to succeed.
func (h *CheckoutHandler) finalize(ctx context.Context, c telebot.Context, s *session.Session, effect checkout.Effect) error {
	t := h.deps.Translator

	lines, _ := cartLines(ctx, h.deps.Catalog, s.Cart)
	order := domain.NewOrder(s.UserID, lines, effect.Phone, effect.Address)
	s.Cart.Clear()

	if err := showMainMenu(h.deps, s); err != nil {
		return err
	}

	confirmation := t.T("checkout.confirmed_header") +
		renderOrderLines(t, order.Lines, order.Total()) +
		t.Tf("checkout.order_reference", order.Reference) +
		t.Tf("checkout.confirmed_phone", order.Phone) +
		t.Tf("checkout.confirmed_address", order.Address) +
		t.T("checkout.confirmed_footer")

	if _, err := h.deps.Screen.SendTransient(s, screen.Content{Text: confirmation}); err != nil {
		return err
	}

	h.notifyAdmins(ctx, c, order)
	metrics.RecordOrder(order.Total())

	return nil
}

// notifyAdmins forwards the order to every configured admin. Sends are
// retried, a final failure only logs since the user's confirmation
// already went out.
func (h *CheckoutHandler) notifyAdmins(ctx context.Context, c telebot.Context, order domain.Order) {
	t := h.deps.Translator

	text := renderOrderSummary(t, order.Lines, order.Total()) +
		t.Tf("checkout.order_reference", order.Reference) +
		t.Tf("checkout.confirmed_phone", order.Phone) +
		t.Tf("checkout.confirmed_address", order.Address)

	for _, adminID := range h.deps.Admins.IDs {
		recipient := &telebot.User{ID: adminID}

		err := errs.WithRetry(ctx, func() error {
			if _, sendErr := c.Bot().Send(recipient, text, telebot.ModeHTML); sendErr != nil {
				return errs.NewTelegramError("admin order notification", sendErr)
			}
			return nil
		})
		if err != nil {
			h.deps.logger().Warn("order notification failed",
				slog.Int64("admin_id", adminID),
				slog.String("order", order.Reference),
				slog.Any("error", err),
			)
		}
	}
}
