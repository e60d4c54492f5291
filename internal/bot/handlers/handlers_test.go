package handlers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/catalog"
	"github.com/avrorra/storebot/internal/checkout"
	"github.com/avrorra/storebot/internal/domain"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
	"github.com/avrorra/storebot/pkg/config"
)

// fakeTransport records every sent message so tests can assert on the
// rendered conversation.
type fakeTransport struct {
	nextID int
	sent   []screen.Content
}

func (f *fakeTransport) Send(chatID int64, content screen.Content) (int, error) {
	f.nextID++
	f.sent = append(f.sent, content)
	return f.nextID, nil
}

func (f *fakeTransport) Edit(chatID int64, messageID int, content screen.Content) error {
	f.sent = append(f.sent, content)
	return nil
}

func (f *fakeTransport) Delete(chatID int64, messageID int) error {
	return nil
}

func (f *fakeTransport) lastText() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

func (f *fakeTransport) texts() []string {
	out := make([]string, 0, len(f.sent))
	for _, content := range f.sent {
		out = append(out, content.Text)
	}
	return out
}

// stubStore serves a fixed catalog.
type stubStore struct {
	categories []domain.Category
	products   map[int64]domain.Product
}

func (s *stubStore) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories, nil
}

func (s *stubStore) CategoryByKey(ctx context.Context, key string) (*domain.Category, error) {
	for _, category := range s.categories {
		if category.Key == key {
			c := category
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", key, catalog.ErrNotFound)
}

func (s *stubStore) AddCategory(ctx context.Context, category domain.Category) error {
	s.categories = append(s.categories, category)
	return nil
}

func (s *stubStore) RenameCategory(ctx context.Context, key, name string) error { return nil }
func (s *stubStore) DeleteCategory(ctx context.Context, key string) error      { return nil }

func (s *stubStore) Products(ctx context.Context, categoryKey string) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range s.products {
		if product.CategoryKey == categoryKey {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *stubStore) AllProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, product)
	}
	return out, nil
}

func (s *stubStore) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, catalog.ErrNotFound)
	}
	return &product, nil
}

func (s *stubStore) AddProduct(ctx context.Context, product domain.Product) (int64, error) {
	id := int64(len(s.products) + 1)
	product.ID = id
	s.products[id] = product
	return id, nil
}

func (s *stubStore) UpdateProduct(ctx context.Context, product domain.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubStore) DeleteProduct(ctx context.Context, id int64) error {
	delete(s.products, id)
	return nil
}

// keyTranslator returns keys verbatim so assertions can match on them.
type keyTranslator struct{}

func (keyTranslator) T(key string) string { return key }
func (keyTranslator) Tf(key string, args ...any) string {
	return fmt.Sprintf("%s%v", key, args)
}
func (keyTranslator) Lang() string { return "ru" }

// fakeContext implements just enough of telebot.Context for the
// handlers. Unused interface methods panic via the nil embedded value.
type fakeContext struct {
	telebot.Context
	sender   *telebot.User
	chat     *telebot.Chat
	text     string
	message  *telebot.Message
	callback *telebot.Callback
	answers  []string
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Chat() *telebot.Chat         { return f.chat }
func (f *fakeContext) Text() string                { return f.text }
func (f *fakeContext) Message() *telebot.Message   { return f.message }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Bot() *telebot.Bot           { return nil }

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	for _, r := range resp {
		f.answers = append(f.answers, r.Text)
	}
	return nil
}

func textContext(userID int64, text string) *fakeContext {
	return &fakeContext{
		sender: &telebot.User{ID: userID},
		chat:   &telebot.Chat{ID: userID},
		text:   text,
	}
}

func callbackContext(userID int64, data string) *fakeContext {
	return &fakeContext{
		sender:   &telebot.User{ID: userID},
		chat:     &telebot.Chat{ID: userID},
		callback: &telebot.Callback{ID: "cb-1", Data: "\f" + data, Message: &telebot.Message{ID: 500}},
	}
}

func contactContext(userID int64, phone string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: userID},
		chat:    &telebot.Chat{ID: userID},
		message: &telebot.Message{Contact: &telebot.Contact{PhoneNumber: phone}},
	}
}

type fixture struct {
	deps      Deps
	registry  *session.MemoryRegistry
	transport *fakeTransport
	store     *stubStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	transport := &fakeTransport{}
	store := &stubStore{
		categories: []domain.Category{{Key: "cakes", Name: "Торты"}},
		products: map[int64]domain.Product{
			7: {ID: 7, Name: "Медовик", Price: 900, CategoryKey: "cakes"},
		},
	}
	registry := session.NewMemoryRegistry()
	translator := keyTranslator{}

	deps := Deps{
		Registry:   registry,
		Catalog:    catalog.NewService(store, nil, nil),
		Screen:     screen.NewManager(transport, nil),
		Translator: translator,
		Keyboard:   keyboard.NewBuilder(translator, nil),
		PageSize:   5,
	}

	return &fixture{deps: deps, registry: registry, transport: transport, store: store}
}

func (f *fixture) session(userID int64, inspect func(*session.Session)) {
	f.registry.Update(userID, inspect)
}

// cardCounter reads the quantity from the middle button of the card's
// counter row.
func cardCounter(t *testing.T, content screen.Content) string {
	t.Helper()

	markup, ok := content.Markup.(*telebot.ReplyMarkup)
	require.True(t, ok, "card content carries inline markup")
	require.NotEmpty(t, markup.InlineKeyboard)
	require.Len(t, markup.InlineKeyboard[0], 3)
	return markup.InlineKeyboard[0][1].Text
}

func (f *fakeTransport) last() screen.Content {
	if len(f.sent) == 0 {
		return screen.Content{}
	}
	return f.sent[len(f.sent)-1]
}

func TestCategoryShowsProductList(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	require.NoError(t, h.Category(callbackContext(1, "category:cakes")))

	last := fx.transport.last()
	assert.Equal(t, "catalog.category_products[Торты]", last.Text)

	markup, ok := last.Markup.(*telebot.ReplyMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "product:7", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "catalog", markup.InlineKeyboard[1][0].Data)
}

func TestProductCardShowsCartQuantity(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Increment(7)
		s.Cart.Increment(7)
	})

	require.NoError(t, h.Product(callbackContext(1, "product:7")))

	last := fx.transport.last()
	assert.Equal(t, "catalog.product_caption[Медовик 900]", last.Text)
	assert.Equal(t, "2", cardCounter(t, last))
}

func TestCardIncrementUpdatesCounterInPlace(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	require.NoError(t, h.CardIncrement(callbackContext(1, "card_inc:7")))
	assert.Equal(t, "1", cardCounter(t, fx.transport.last()))

	require.NoError(t, h.CardIncrement(callbackContext(1, "card_inc:7")))
	assert.Equal(t, "2", cardCounter(t, fx.transport.last()))

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, 2, s.Cart.Quantity(7))
	})
}

func TestCardDecrementDropsProductAtZero(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Add(7)
	})

	require.NoError(t, h.CardDecrement(callbackContext(1, "card_dec:7")))

	assert.Equal(t, "0", cardCounter(t, fx.transport.last()))
	fx.session(1, func(s *session.Session) {
		assert.True(t, s.Cart.Empty())
	})
}

func TestAddToCartRefreshesCardCounter(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	c := callbackContext(1, "add:7")
	require.NoError(t, h.AddToCart(c))

	require.Len(t, c.answers, 1)
	assert.Equal(t, "catalog.added_to_cart[1]", c.answers[0])
	assert.Equal(t, "1", cardCounter(t, fx.transport.last()))
}

func TestAddToCartKeepsExistingQuantity(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	require.NoError(t, h.AddToCart(callbackContext(1, "add:7")))

	fx.session(1, func(s *session.Session) {
		s.Cart.Increment(7)
	})

	require.NoError(t, h.AddToCart(callbackContext(1, "add:7")))

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, 2, s.Cart.Quantity(7))
	})
}

func TestAddToCartMissingProductAnswersCallback(t *testing.T) {
	fx := newFixture(t)
	h := NewCatalogHandler(fx.deps)

	c := callbackContext(1, "add:999")
	require.NoError(t, h.AddToCart(c))

	require.Len(t, c.answers, 1)
	assert.Equal(t, "catalog.product_missing", c.answers[0])

	fx.session(1, func(s *session.Session) {
		assert.True(t, s.Cart.Empty())
	})
}

func TestCartShowEmpty(t *testing.T) {
	fx := newFixture(t)
	h := NewCartHandler(fx.deps)

	require.NoError(t, h.Show(textContext(1, "menu.cart")))
	assert.Equal(t, "cart.empty", fx.transport.lastText())
}

func TestCartEditorRemovesLineAtZero(t *testing.T) {
	fx := newFixture(t)
	h := NewCartHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Add(7)
	})

	require.NoError(t, h.Decrement(callbackContext(1, "cart_dec:7")))

	fx.session(1, func(s *session.Session) {
		assert.True(t, s.Cart.Empty())
	})
	assert.Equal(t, "cart.empty", fx.transport.lastText())
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	fx := newFixture(t)
	h := NewCheckoutHandler(fx.deps)

	require.NoError(t, h.Begin(callbackContext(1, "checkout")))

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateIdle, s.Checkout)
	})
	assert.Contains(t, fx.transport.texts(), "checkout.empty_cart")
}

func TestCheckoutFlowWithSharedContact(t *testing.T) {
	fx := newFixture(t)
	h := NewCheckoutHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Add(7)
	})

	require.NoError(t, h.Begin(callbackContext(1, "checkout")))
	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateAwaitingPhoneChoice, s.Checkout)
	})

	require.NoError(t, h.Contact(contactContext(1, "+79991234567")))
	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateAwaitingAddress, s.Checkout)
		assert.Equal(t, "+79991234567", s.Phone)
	})
	assert.Contains(t, fx.transport.texts(), "checkout.ask_address")

	require.NoError(t, h.Text(textContext(1, "Москва, Тверская 1")))
	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateIdle, s.Checkout)
		assert.True(t, s.Cart.Empty())
		assert.Empty(t, s.Phone)
	})
}

func TestCheckoutConfirmationListsOrder(t *testing.T) {
	fx := newFixture(t)
	h := NewCheckoutHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Increment(7)
		s.Cart.Increment(7)
	})

	require.NoError(t, h.Begin(callbackContext(1, "checkout")))
	require.NoError(t, h.Contact(contactContext(1, "+79991234567")))
	require.NoError(t, h.Text(textContext(1, "Москва, Тверская 1")))

	var confirmation string
	for _, text := range fx.transport.texts() {
		if strings.HasPrefix(text, "checkout.confirmed_header") {
			confirmation = text
		}
	}

	require.NotEmpty(t, confirmation, "confirmation message sent")
	assert.Contains(t, confirmation, "checkout.summary_line[Медовик 2 900 1800]")
	assert.Contains(t, confirmation, "checkout.summary_total[1800]")
	assert.Contains(t, confirmation, "checkout.confirmed_phone[+79991234567]")
	assert.Contains(t, confirmation, "checkout.confirmed_address[Москва, Тверская 1]")
}

func TestCheckoutManualPhoneValidation(t *testing.T) {
	fx := newFixture(t)
	h := NewCheckoutHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Add(7)
	})

	require.NoError(t, h.Begin(callbackContext(1, "checkout")))
	require.NoError(t, h.Text(textContext(1, "checkout.enter_manually")))

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateAwaitingPhoneManualEntry, s.Checkout)
	})

	require.NoError(t, h.Text(textContext(1, "not a phone")))
	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateAwaitingPhoneManualEntry, s.Checkout)
	})
	assert.Contains(t, fx.transport.texts(), "checkout.invalid_phone")

	require.NoError(t, h.Text(textContext(1, "+79991234567")))
	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateAwaitingAddress, s.Checkout)
		assert.Equal(t, "+79991234567", s.Phone)
	})
}

func TestCheckoutMainMenuAbandonsDialogue(t *testing.T) {
	fx := newFixture(t)
	h := NewCheckoutHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Cart.Add(7)
	})

	require.NoError(t, h.Begin(callbackContext(1, "checkout")))
	require.NoError(t, h.Text(textContext(1, "menu.back_to_main")))

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateIdle, s.Checkout)
		assert.False(t, s.Cart.Empty(), "abandoning checkout keeps the cart")
	})
}

func TestMenuStartResetsDialogues(t *testing.T) {
	fx := newFixture(t)
	h := NewMenuHandler(fx.deps)

	fx.session(1, func(s *session.Session) {
		s.Checkout = checkout.StateAwaitingAddress
		s.AdminState = "category_key"
	})

	require.NoError(t, h.Start(textContext(1, "/start")))

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, checkout.StateIdle, s.Checkout)
		assert.Empty(t, s.AdminState)
	})
	assert.Equal(t, "menu.welcome", fx.transport.lastText())
}

func TestAdminPanelDeniedForNonAdmin(t *testing.T) {
	fx := newFixture(t)
	fx.deps.Admins = config.AdminConfig{IDs: []int64{99}}
	h := NewAdminHandler(fx.deps)

	c := callbackContext(1, "adm")
	require.NoError(t, h.Menu(c))

	require.Len(t, c.answers, 1)
	assert.Equal(t, "admin.denied", c.answers[0])
}

func TestAdminCategoryDialogue(t *testing.T) {
	fx := newFixture(t)
	fx.deps.Admins = config.AdminConfig{IDs: []int64{1}}
	h := NewAdminHandler(fx.deps)

	require.NoError(t, h.CategoryAdd(callbackContext(1, "adm_cat_add")))

	handled, err := h.Dialogue(textContext(1, "pies"))
	require.NoError(t, err)
	assert.True(t, handled)

	handled, err = h.Dialogue(textContext(1, "Пироги"))
	require.NoError(t, err)
	assert.True(t, handled)

	fx.session(1, func(s *session.Session) {
		assert.Empty(t, s.AdminState)
	})

	categories, err := fx.deps.Catalog.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "pies", categories[1].Key)
	assert.Equal(t, "Пироги", categories[1].Name)
}

func TestAdminDialogueRejectsBadCategoryKey(t *testing.T) {
	fx := newFixture(t)
	fx.deps.Admins = config.AdminConfig{IDs: []int64{1}}
	h := NewAdminHandler(fx.deps)

	require.NoError(t, h.CategoryAdd(callbackContext(1, "adm_cat_add")))

	handled, err := h.Dialogue(textContext(1, "плохой ключ"))
	require.NoError(t, err)
	assert.True(t, handled)

	fx.session(1, func(s *session.Session) {
		assert.Equal(t, "category_key", s.AdminState)
	})
	assert.Equal(t, "admin.ask_category_key", fx.transport.lastText())
}

func TestAdminDialogueIgnoredForIdleUser(t *testing.T) {
	fx := newFixture(t)
	fx.deps.Admins = config.AdminConfig{IDs: []int64{1}}
	h := NewAdminHandler(fx.deps)

	handled, err := h.Dialogue(textContext(1, "anything"))
	require.NoError(t, err)
	assert.False(t, handled)
}
