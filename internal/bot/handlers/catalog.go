package handlers

import (
	"context"
	"errors"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/catalog"
	"github.com/avrorra/storebot/internal/domain"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
)

// CatalogHandler serves the shop window: category picker, product
// lists, and the product card with its live quantity counter.
type CatalogHandler struct {
	deps Deps
}

// NewCatalogHandler builds the catalog handler.
func NewCatalogHandler(deps Deps) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// Categories shows the category picker.
func (h *CatalogHandler) Categories(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := context.Background()
	categories, err := h.deps.Catalog.Categories(ctx)
	if err != nil {
		return err
	}

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		h.deps.Screen.ClearTransient(s)
		_, opErr = h.deps.Screen.SendTransient(s, screen.Content{
			Text:   h.deps.Translator.T("catalog.choose_category"),
			Markup: h.deps.Keyboard.Categories(categories),
		})
	})

	return opErr
}

// Category shows the product list of the chosen category.
func (h *CatalogHandler) Category(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	key := callbackPayload(c)
	ctx := context.Background()

	products, err := h.deps.Catalog.Products(ctx, key)
	if err != nil {
		return err
	}

	name := key
	if category, err := h.deps.Catalog.CategoryByKey(ctx, key); err == nil {
		name = category.Name
	}

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		h.deps.Screen.ClearTransient(s)

		if len(products) == 0 {
			_, opErr = h.deps.Screen.SendTransient(s, screen.Content{
				Text:   h.deps.Translator.T("catalog.empty_category"),
				Markup: h.deps.Keyboard.BackToCategories(),
			})
			return
		}

		_, opErr = h.deps.Screen.SendTransient(s, screen.Content{
			Text:   h.deps.Translator.Tf("catalog.category_products", name),
			Markup: h.deps.Keyboard.CategoryProducts(products),
		})
	})

	return opErr
}

// Product swaps the pressed list message for the product card. The
// counter on the card starts at whatever quantity the cart already
// holds.
func (h *CatalogHandler) Product(c telebot.Context) error {
	sender := c.Sender()
	cb := c.Callback()
	if sender == nil || cb == nil || cb.Message == nil {
		return nil
	}

	product, err := h.lookupProduct(c)
	if err != nil || product == nil {
		return err
	}

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		content := h.cardContent(*product, s.Cart.Quantity(product.ID))
		_, opErr = h.deps.Screen.Replace(s, cb.Message.ID, content)
	})
	if opErr != nil {
		return opErr
	}

	return respond(c, "")
}

// AddToCart puts the product into the cart. A product already in the
// cart keeps its quantity; the counter row changes amounts. The card
// under the pressed button is refreshed so the counter matches.
func (h *CatalogHandler) AddToCart(c telebot.Context) error {
	return h.updateCard(c, func(s *session.Session, productID int64) {
		s.Cart.Add(productID)
	}, func(quantity int) string {
		return h.deps.Translator.Tf("catalog.added_to_cart", quantity)
	})
}

// CardIncrement bumps the quantity from the card's counter row.
func (h *CatalogHandler) CardIncrement(c telebot.Context) error {
	return h.updateCard(c, func(s *session.Session, productID int64) {
		s.Cart.Increment(productID)
	}, nil)
}

// CardDecrement lowers the quantity from the card's counter row,
// dropping the product out of the cart at zero.
func (h *CatalogHandler) CardDecrement(c telebot.Context) error {
	return h.updateCard(c, func(s *session.Session, productID int64) {
		s.Cart.Decrement(productID)
	}, nil)
}

// Noop answers the counter button press without doing anything.
func (h *CatalogHandler) Noop(c telebot.Context) error {
	return respond(c, "")
}

// updateCard applies a cart mutation and rewrites the pressed product
// card in place so its counter shows the new quantity.
func (h *CatalogHandler) updateCard(c telebot.Context, mutate func(*session.Session, int64), answer func(quantity int) string) error {
	sender := c.Sender()
	cb := c.Callback()
	if sender == nil || cb == nil || cb.Message == nil {
		return nil
	}

	product, err := h.lookupProduct(c)
	if err != nil || product == nil {
		return err
	}

	var quantity int
	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		mutate(s, product.ID)
		quantity = s.Cart.Quantity(product.ID)
		_, opErr = h.deps.Screen.EditOrReplace(s, cb.Message.ID, h.cardContent(*product, quantity))
	})
	if opErr != nil {
		return opErr
	}

	if answer == nil {
		return respond(c, "")
	}
	return respond(c, answer(quantity))
}

// lookupProduct resolves the product named in the callback payload. A
// missing product answers the callback and returns nil without error.
func (h *CatalogHandler) lookupProduct(c telebot.Context) (*domain.Product, error) {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return nil, respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	product, err := h.deps.Catalog.ProductByID(context.Background(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, respond(c, h.deps.Translator.T("catalog.product_missing"))
		}
		return nil, err
	}

	return product, nil
}

// cardContent renders a product card with the live cart counter.
func (h *CatalogHandler) cardContent(product domain.Product, quantity int) screen.Content {
	content := screen.Content{
		Text:   h.deps.Translator.Tf("catalog.product_caption", product.Name, product.Price),
		Markup: h.deps.Keyboard.ProductCard(product, quantity),
	}
	if product.HasImage() {
		content.PhotoPath = product.ImageURL
	}
	return content
}
