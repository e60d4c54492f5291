package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
)

// CartHandler serves the cart view and the quantity editor.
type CartHandler struct {
	deps Deps
}

// NewCartHandler builds the cart handler.
func NewCartHandler(deps Deps) *CartHandler {
	return &CartHandler{deps: deps}
}

// Show renders the cart below the menu.
func (h *CartHandler) Show(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := context.Background()

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		h.deps.Screen.ClearTransient(s)
		_, opErr = h.deps.Screen.SendTransient(s, h.cartContent(ctx, s))
	})

	return opErr
}

// Edit shows the item picker in place of the cart view.
func (h *CartHandler) Edit(c telebot.Context) error {
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		return h.pickerContent(ctx, s)
	})
}

// Item shows the quantity editor for one cart line.
func (h *CartHandler) Item(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	return h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		return h.itemContent(ctx, s, productID)
	})
}

// Increment bumps the quantity of one line.
func (h *CartHandler) Increment(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	return h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		s.Cart.Increment(productID)
		return h.itemContent(ctx, s, productID)
	})
}

// Decrement lowers the quantity of one line, removing it at zero.
func (h *CartHandler) Decrement(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	return h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		s.Cart.Decrement(productID)
		if s.Cart.Quantity(productID) == 0 {
			return h.pickerContent(ctx, s)
		}
		return h.itemContent(ctx, s, productID)
	})
}

// Delete removes a line entirely.
func (h *CartHandler) Delete(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	if err := h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		s.Cart.Remove(productID)
		return h.pickerContent(ctx, s)
	}); err != nil {
		return err
	}

	return respond(c, h.deps.Translator.T("cart.item_deleted"))
}

// Save returns from the editor to the cart view.
func (h *CartHandler) Save(c telebot.Context) error {
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		return h.cartContent(ctx, s)
	})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c telebot.Context) error {
	if err := h.editInPlace(c, func(ctx context.Context, s *session.Session) screen.Content {
		s.Cart.Clear()
		return screen.Content{Text: h.deps.Translator.T("cart.cleared")}
	}); err != nil {
		return err
	}

	return respond(c, h.deps.Translator.T("cart.cleared"))
}

// editInPlace runs mutate under the session lock and rewrites the
// pressed message with the returned content.
func (h *CartHandler) editInPlace(c telebot.Context, mutate func(context.Context, *session.Session) screen.Content) error {
	sender := c.Sender()
	cb := c.Callback()
	if sender == nil || cb == nil || cb.Message == nil {
		return nil
	}

	ctx := context.Background()
	messageID := cb.Message.ID

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		content := mutate(ctx, s)
		_, opErr = h.deps.Screen.EditOrReplace(s, messageID, content)
	})

	return opErr
}

func (h *CartHandler) cartContent(ctx context.Context, s *session.Session) screen.Content {
	if s.Cart.Empty() {
		return screen.Content{Text: h.deps.Translator.T("cart.empty")}
	}

	lines, total := cartLines(ctx, h.deps.Catalog, s.Cart)
	return screen.Content{
		Text:   renderCart(h.deps.Translator, lines, total),
		Markup: h.deps.Keyboard.CartView(),
	}
}

func (h *CartHandler) pickerContent(ctx context.Context, s *session.Session) screen.Content {
	if s.Cart.Empty() {
		return screen.Content{Text: h.deps.Translator.T("cart.empty")}
	}

	lines, _ := cartLines(ctx, h.deps.Catalog, s.Cart)
	return screen.Content{
		Text:   h.deps.Translator.T("cart.choose_item"),
		Markup: h.deps.Keyboard.CartItems(lines),
	}
}

func (h *CartHandler) itemContent(ctx context.Context, s *session.Session, productID int64) screen.Content {
	quantity := s.Cart.Quantity(productID)
	if quantity == 0 {
		return h.pickerContent(ctx, s)
	}

	product, err := h.deps.Catalog.ProductByID(ctx, productID)
	if err != nil {
		return h.pickerContent(ctx, s)
	}

	subtotal := product.Price * int64(quantity)
	text := product.Name + "\n" +
		h.deps.Translator.Tf("cart.item_line", product.Price, quantity, subtotal)

	return screen.Content{
		Text:   text,
		Markup: h.deps.Keyboard.CartItemEdit(productID),
	}
}
