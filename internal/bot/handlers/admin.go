package handlers

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/domain"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
)

// Admin dialogue positions stored in Session.AdminState.
const (
	adminStateCategoryKey      = "category_key"
	adminStateCategoryName     = "category_name"
	adminStateCategoryRename   = "category_rename"
	adminStateProductName      = "product_name"
	adminStateProductPrice     = "product_price"
	adminStateProductPhoto     = "product_photo"
	adminStateProductEditName  = "product_edit_name"
	adminStateProductEditPrice = "product_edit_price"
)

// Draft keys for the multi-step admin dialogues.
const (
	draftCategoryKey = "category_key"
	draftCategory    = "category"
	draftName        = "name"
	draftPrice       = "price"
	draftProductID   = "product_id"
)

var categoryKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// AdminHandler owns the catalog management panel and its dialogues.
type AdminHandler struct {
	deps Deps
}

// NewAdminHandler builds the admin handler.
func NewAdminHandler(deps Deps) *AdminHandler {
	return &AdminHandler{deps: deps}
}

func (h *AdminHandler) pageSize() int {
	if h.deps.PageSize > 0 {
		return h.deps.PageSize
	}
	return 5
}

func (h *AdminHandler) allowed(c telebot.Context) bool {
	sender := c.Sender()
	return sender != nil && h.deps.Admins.IsAdmin(sender.ID)
}

// Panel handles /admin and opens the management menu.
func (h *AdminHandler) Panel(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if !h.deps.Admins.IsAdmin(sender.ID) {
		return c.Send(h.deps.Translator.T("admin.denied"))
	}

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID
		s.ResetAdmin()
		h.deps.Screen.ClearTransient(s)
		_, opErr = h.deps.Screen.SendTransient(s, screen.Content{
			Text:   h.deps.Translator.T("admin.menu"),
			Markup: h.deps.Keyboard.AdminMenu(),
		})
	})

	return opErr
}

// Menu redraws the management menu in place.
func (h *AdminHandler) Menu(c telebot.Context) error {
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		s.ResetAdmin()
		return screen.Content{
			Text:   h.deps.Translator.T("admin.menu"),
			Markup: h.deps.Keyboard.AdminMenu(),
		}, nil
	})
}

// Categories shows one page of the category list.
func (h *AdminHandler) Categories(c telebot.Context) error {
	page := keyboard.ParsePageData(callbackPayload(c))
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		return h.categoriesPage(ctx, page)
	})
}

func (h *AdminHandler) categoriesPage(ctx context.Context, page int) (screen.Content, error) {
	categories, err := h.deps.Catalog.Categories(ctx)
	if err != nil {
		return screen.Content{}, err
	}

	totalPages := keyboard.TotalPages(len(categories), h.pageSize())
	if page > totalPages {
		page = totalPages
	}
	lo, hi := keyboard.PageBounds(len(categories), page, h.pageSize())

	return screen.Content{
		Text:   h.deps.Translator.T("admin.categories"),
		Markup: h.deps.Keyboard.AdminCategories(categories[lo:hi], page, totalPages),
	}, nil
}

// Category shows the actions for one category.
func (h *AdminHandler) Category(c telebot.Context) error {
	key := callbackPayload(c)
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		category, err := h.deps.Catalog.CategoryByKey(ctx, key)
		if err != nil {
			return h.categoriesPage(ctx, 1)
		}
		return screen.Content{
			Text:   category.Name,
			Markup: h.deps.Keyboard.AdminCategoryActions(category.Key),
		}, nil
	})
}

// CategoryAdd starts the add-category dialogue.
func (h *AdminHandler) CategoryAdd(c telebot.Context) error {
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		s.ResetAdmin()
		s.AdminState = adminStateCategoryKey
		return screen.Content{
			Text:   h.deps.Translator.T("admin.ask_category_key"),
			Markup: h.deps.Keyboard.AdminCancel(),
		}, nil
	})
}

// CategoryRename starts the rename dialogue for one category.
func (h *AdminHandler) CategoryRename(c telebot.Context) error {
	key := callbackPayload(c)
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		s.ResetAdmin()
		s.AdminState = adminStateCategoryRename
		s.Draft[draftCategoryKey] = key
		return screen.Content{
			Text:   h.deps.Translator.T("admin.ask_new_name"),
			Markup: h.deps.Keyboard.AdminCancel(),
		}, nil
	})
}

// CategoryDelete removes a category together with its products.
func (h *AdminHandler) CategoryDelete(c telebot.Context) error {
	key := callbackPayload(c)

	if err := h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		if err := h.deps.Catalog.DeleteCategory(ctx, key); err != nil {
			return screen.Content{}, err
		}
		return h.categoriesPage(ctx, 1)
	}); err != nil {
		return err
	}

	return respond(c, h.deps.Translator.T("admin.category_deleted"))
}

// Products shows one page of the product list.
func (h *AdminHandler) Products(c telebot.Context) error {
	page := keyboard.ParsePageData(callbackPayload(c))
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		return h.productsPage(ctx, page)
	})
}

func (h *AdminHandler) productsPage(ctx context.Context, page int) (screen.Content, error) {
	products, err := h.deps.Catalog.AllProducts(ctx)
	if err != nil {
		return screen.Content{}, err
	}

	totalPages := keyboard.TotalPages(len(products), h.pageSize())
	if page > totalPages {
		page = totalPages
	}
	lo, hi := keyboard.PageBounds(len(products), page, h.pageSize())

	return screen.Content{
		Text:   h.deps.Translator.T("admin.products"),
		Markup: h.deps.Keyboard.AdminProducts(products[lo:hi], page, totalPages),
	}, nil
}

// Product shows the actions for one product.
func (h *AdminHandler) Product(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		product, err := h.deps.Catalog.ProductByID(ctx, productID)
		if err != nil {
			return h.productsPage(ctx, 1)
		}
		return screen.Content{
			Text:   h.deps.Translator.Tf("catalog.product_caption", product.Name, product.Price),
			Markup: h.deps.Keyboard.AdminProductActions(product.ID),
		}, nil
	})
}

// ProductAdd asks which category the new product belongs to.
func (h *AdminHandler) ProductAdd(c telebot.Context) error {
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		categories, err := h.deps.Catalog.Categories(ctx)
		if err != nil {
			return screen.Content{}, err
		}
		s.ResetAdmin()
		return screen.Content{
			Text:   h.deps.Translator.T("admin.choose_category"),
			Markup: h.deps.Keyboard.AdminProductCategories(categories),
		}, nil
	})
}

// ProductCategory records the chosen category and asks for the name.
func (h *AdminHandler) ProductCategory(c telebot.Context) error {
	key := callbackPayload(c)
	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		s.ResetAdmin()
		s.AdminState = adminStateProductName
		s.Draft[draftCategory] = key
		return screen.Content{
			Text:   h.deps.Translator.T("admin.ask_product_name"),
			Markup: h.deps.Keyboard.AdminCancel(),
		}, nil
	})
}

// ProductEdit starts the name-then-price redialogue for one product.
func (h *AdminHandler) ProductEdit(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	return h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		s.ResetAdmin()
		s.AdminState = adminStateProductEditName
		s.Draft[draftProductID] = keyboard.ItemData(productID)
		return screen.Content{
			Text:   h.deps.Translator.T("admin.ask_product_name"),
			Markup: h.deps.Keyboard.AdminCancel(),
		}, nil
	})
}

// ProductDelete removes a product and its stored image.
func (h *AdminHandler) ProductDelete(c telebot.Context) error {
	productID, err := keyboard.ParseItemData(callbackPayload(c))
	if err != nil {
		return respond(c, h.deps.Translator.T("catalog.product_missing"))
	}

	if err := h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		product, err := h.deps.Catalog.ProductByID(ctx, productID)
		if err == nil && product.HasImage() {
			h.removeImage(product.ImageURL)
		}
		if err := h.deps.Catalog.DeleteProduct(ctx, productID); err != nil {
			return screen.Content{}, err
		}
		return h.productsPage(ctx, 1)
	}); err != nil {
		return err
	}

	return respond(c, h.deps.Translator.T("admin.product_deleted"))
}

// SkipPhoto finishes product creation without an image.
func (h *AdminHandler) SkipPhoto(c telebot.Context) error {
	if err := h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		if s.AdminState != adminStateProductPhoto {
			return h.productsPage(ctx, 1)
		}
		if err := h.createProduct(ctx, s, ""); err != nil {
			return screen.Content{}, err
		}
		s.ResetAdmin()
		return h.productsPage(ctx, 1)
	}); err != nil {
		return err
	}

	return respond(c, h.deps.Translator.T("admin.product_added"))
}

// Cancel aborts whatever dialogue is in flight.
func (h *AdminHandler) Cancel(c telebot.Context) error {
	if err := h.editInPlace(c, func(ctx context.Context, s *session.Session) (screen.Content, error) {
		s.ResetAdmin()
		return screen.Content{
			Text:   h.deps.Translator.T("admin.menu"),
			Markup: h.deps.Keyboard.AdminMenu(),
		}, nil
	}); err != nil {
		return err
	}

	return respond(c, h.deps.Translator.T("admin.cancelled"))
}

// Dialogue consumes a text message while an admin dialogue is active.
// Returns true when the message was part of a dialogue.
func (h *AdminHandler) Dialogue(c telebot.Context) (bool, error) {
	sender := c.Sender()
	if sender == nil || !h.deps.Admins.IsAdmin(sender.ID) {
		return false, nil
	}

	ctx := context.Background()
	text := c.Text()

	var handled bool
	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		if s.AdminState == "" {
			return
		}
		handled = true
		s.ChatID = c.Chat().ID
		opErr = h.dialogueStep(ctx, s, text)
	})

	return handled, opErr
}

func (h *AdminHandler) dialogueStep(ctx context.Context, s *session.Session, text string) error {
	t := h.deps.Translator

	switch s.AdminState {
	case adminStateCategoryKey:
		if !categoryKeyPattern.MatchString(text) {
			return h.prompt(s, t.T("admin.ask_category_key"))
		}
		s.Draft[draftCategoryKey] = text
		s.AdminState = adminStateCategoryName
		return h.prompt(s, t.T("admin.ask_category_name"))

	case adminStateCategoryName:
		category := domain.Category{Key: s.Draft[draftCategoryKey], Name: text}
		if err := h.deps.Catalog.AddCategory(ctx, category); err != nil {
			return err
		}
		s.ResetAdmin()
		return h.finishDialogue(ctx, s, t.T("admin.category_added"), h.categoriesPage)

	case adminStateCategoryRename:
		if err := h.deps.Catalog.RenameCategory(ctx, s.Draft[draftCategoryKey], text); err != nil {
			return err
		}
		s.ResetAdmin()
		return h.finishDialogue(ctx, s, t.T("admin.category_renamed"), h.categoriesPage)

	case adminStateProductName:
		s.Draft[draftName] = text
		s.AdminState = adminStateProductPrice
		return h.prompt(s, t.T("admin.ask_product_price"))

	case adminStateProductPrice:
		price, ok := parsePrice(text)
		if !ok {
			return h.prompt(s, t.T("admin.invalid_price"))
		}
		s.Draft[draftPrice] = strconv.FormatInt(price, 10)
		s.AdminState = adminStateProductPhoto
		_, err := h.deps.Screen.SendTransient(s, screen.Content{
			Text:   t.T("admin.ask_product_photo"),
			Markup: h.deps.Keyboard.AdminSkipPhoto(),
		})
		return err

	case adminStateProductEditName:
		s.Draft[draftName] = text
		s.AdminState = adminStateProductEditPrice
		return h.prompt(s, t.T("admin.ask_product_price"))

	case adminStateProductEditPrice:
		price, ok := parsePrice(text)
		if !ok {
			return h.prompt(s, t.T("admin.invalid_price"))
		}
		if err := h.updateProduct(ctx, s, price); err != nil {
			return err
		}
		s.ResetAdmin()
		return h.finishDialogue(ctx, s, t.T("admin.product_updated"), h.productsPage)

	default:
		// Unknown stored state, drop the dialogue.
		s.ResetAdmin()
		return nil
	}
}

// Photo consumes a photo message at the photo step of product creation.
// Returns true when the photo belonged to a dialogue.
func (h *AdminHandler) Photo(c telebot.Context) (bool, error) {
	sender := c.Sender()
	if sender == nil || !h.deps.Admins.IsAdmin(sender.ID) {
		return false, nil
	}

	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return false, nil
	}

	ctx := context.Background()

	var handled bool
	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		if s.AdminState != adminStateProductPhoto {
			return
		}
		handled = true
		s.ChatID = c.Chat().ID

		imagePath, err := h.saveImage(c, msg.Photo)
		if err != nil {
			opErr = err
			return
		}
		if err := h.createProduct(ctx, s, imagePath); err != nil {
			opErr = err
			return
		}
		s.ResetAdmin()
		opErr = h.finishDialogue(ctx, s, h.deps.Translator.T("admin.product_added"), h.productsPage)
	})

	return handled, opErr
}

func (h *AdminHandler) saveImage(c telebot.Context, photo *telebot.Photo) (string, error) {
	rc, err := c.Bot().File(&photo.File)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return h.deps.Images.Save(rc)
}

func (h *AdminHandler) createProduct(ctx context.Context, s *session.Session, imagePath string) error {
	price, err := strconv.ParseInt(s.Draft[draftPrice], 10, 64)
	if err != nil {
		return err
	}

	product := domain.Product{
		Name:        s.Draft[draftName],
		Price:       price,
		ImageURL:    imagePath,
		CategoryKey: s.Draft[draftCategory],
	}

	_, err = h.deps.Catalog.AddProduct(ctx, product)
	return err
}

func (h *AdminHandler) updateProduct(ctx context.Context, s *session.Session, price int64) error {
	productID, err := strconv.ParseInt(s.Draft[draftProductID], 10, 64)
	if err != nil {
		return err
	}

	existing, err := h.deps.Catalog.ProductByID(ctx, productID)
	if err != nil {
		return err
	}

	updated := *existing
	updated.Name = s.Draft[draftName]
	updated.Price = price

	return h.deps.Catalog.UpdateProduct(ctx, updated)
}

// finishDialogue confirms the completed step and redraws the relevant
// management list below it.
func (h *AdminHandler) finishDialogue(ctx context.Context, s *session.Session, confirmation string, list func(context.Context, int) (screen.Content, error)) error {
	if _, err := h.deps.Screen.SendTransient(s, screen.Content{Text: confirmation}); err != nil {
		return err
	}

	content, err := list(ctx, 1)
	if err != nil {
		return err
	}
	_, err = h.deps.Screen.SendTransient(s, content)
	return err
}

func (h *AdminHandler) prompt(s *session.Session, text string) error {
	_, err := h.deps.Screen.SendTransient(s, screen.Content{
		Text:   text,
		Markup: h.deps.Keyboard.AdminCancel(),
	})
	return err
}

func (h *AdminHandler) removeImage(path string) {
	if err := h.deps.Images.Remove(path); err != nil {
		h.deps.logger().Warn("product image removal failed",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}

// editInPlace rewrites the pressed admin message under the session lock.
// Non-admin senders get the denial as a callback answer.
func (h *AdminHandler) editInPlace(c telebot.Context, build func(context.Context, *session.Session) (screen.Content, error)) error {
	sender := c.Sender()
	cb := c.Callback()
	if sender == nil || cb == nil || cb.Message == nil {
		return nil
	}
	if !h.deps.Admins.IsAdmin(sender.ID) {
		return respond(c, h.deps.Translator.T("admin.denied"))
	}

	ctx := context.Background()
	messageID := cb.Message.ID

	var opErr error
	h.deps.Registry.Update(sender.ID, func(s *session.Session) {
		s.ChatID = c.Chat().ID

		content, err := build(ctx, s)
		if err != nil {
			opErr = err
			return
		}
		_, opErr = h.deps.Screen.EditOrReplace(s, messageID, content)
	})

	return opErr
}

func parsePrice(text string) (int64, bool) {
	price, err := strconv.ParseInt(text, 10, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
