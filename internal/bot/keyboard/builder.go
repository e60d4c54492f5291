package keyboard

import (
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/domain"
	"github.com/avrorra/storebot/internal/i18n"
)

// Builder renders the storefront inline keyboards.
type Builder struct {
	t   i18n.Translator
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(t i18n.Translator, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{t: t, log: log}
}

func (b *Builder) text(key string) string {
	if b.t == nil {
		return key
	}
	return b.t.T(key)
}

func (b *Builder) inline() *InlineKeyboardBuilder {
	return NewInlineKeyboard(b.log)
}

// Categories builds the category picker, one category per row.
func (b *Builder) Categories(categories []domain.Category) *telebot.ReplyMarkup {
	kb := b.inline()
	for _, category := range categories {
		kb.AddRow(InlineButton{
			Text:   category.Name,
			Unique: ActionCategory,
			Data:   category.Key,
		})
	}
	return kb.Build()
}

// CategoryProducts builds the product list of one category, one product
// per row, with a return button at the bottom.
func (b *Builder) CategoryProducts(products []domain.Product) *telebot.ReplyMarkup {
	kb := b.inline()
	for _, product := range products {
		kb.AddRow(InlineButton{
			Text:   fmt.Sprintf("%s - %d₽", product.Name, product.Price),
			Unique: ActionProduct,
			Data:   ItemData(product.ID),
		})
	}
	kb.AddRow(InlineButton{Text: b.text("catalog.back_to_categories"), Unique: ActionBackToCatalog})
	return kb.Build()
}

// ProductCard builds the controls under a product card: the live
// quantity row, add-to-cart, and navigation back to the product list.
// The counter button itself does nothing.
func (b *Builder) ProductCard(product domain.Product, quantity int) *telebot.ReplyMarkup {
	data := ItemData(product.ID)
	return b.inline().
		AddRow(
			InlineButton{Text: "-", Unique: ActionCardDec, Data: data},
			InlineButton{Text: strconv.Itoa(quantity), Unique: ActionNoop},
			InlineButton{Text: "+", Unique: ActionCardInc, Data: data},
		).
		AddRow(InlineButton{Text: b.text("catalog.add_to_cart"), Unique: ActionAddToCart, Data: data}).
		AddRow(InlineButton{Text: b.text("catalog.go_checkout"), Unique: ActionCheckout}).
		AddRow(InlineButton{Text: b.text("catalog.continue_shopping"), Unique: ActionContinue}).
		AddRow(InlineButton{Text: b.text("catalog.back"), Unique: ActionCategory, Data: product.CategoryKey}).
		Build()
}

// BackToCategories builds the single return button under an empty category.
func (b *Builder) BackToCategories() *telebot.ReplyMarkup {
	return b.inline().
		AddRow(InlineButton{Text: b.text("catalog.back_to_categories"), Unique: ActionBackToCatalog}).
		Build()
}

// CartView builds the action row under the cart summary.
func (b *Builder) CartView() *telebot.ReplyMarkup {
	return b.inline().
		AddRow(InlineButton{Text: b.text("cart.edit"), Unique: ActionCartEdit}).
		AddRow(InlineButton{Text: b.text("cart.clear"), Unique: ActionCartClear}).
		AddRow(InlineButton{Text: b.text("cart.checkout"), Unique: ActionCheckout}).
		Build()
}

// CartItems builds the item picker for cart editing, one product per row.
func (b *Builder) CartItems(lines []domain.OrderLine) *telebot.ReplyMarkup {
	kb := b.inline()
	for _, line := range lines {
		kb.AddRow(InlineButton{
			Text:   fmt.Sprintf("%s × %d", line.Name, line.Quantity),
			Unique: ActionCartItem,
			Data:   ItemData(line.ProductID),
		})
	}
	kb.AddRow(InlineButton{Text: b.text("cart.save_and_back"), Unique: ActionCartSave})
	return kb.Build()
}

// CartItemEdit builds the quantity controls for one cart line.
func (b *Builder) CartItemEdit(productID int64) *telebot.ReplyMarkup {
	data := ItemData(productID)
	return b.inline().
		AddRow(
			InlineButton{Text: "➖", Unique: ActionCartDec, Data: data},
			InlineButton{Text: b.text("cart.delete_item"), Unique: ActionCartDelete, Data: data},
			InlineButton{Text: "➕", Unique: ActionCartInc, Data: data},
		).
		AddRow(InlineButton{Text: b.text("cart.save_and_back"), Unique: ActionCartSave}).
		Build()
}

// AdminMenu builds the admin panel entry keyboard.
func (b *Builder) AdminMenu() *telebot.ReplyMarkup {
	return b.inline().
		AddRow(InlineButton{Text: b.text("admin.categories"), Unique: ActionAdminCategories, Data: "1"}).
		AddRow(InlineButton{Text: b.text("admin.products"), Unique: ActionAdminProducts, Data: "1"}).
		Build()
}

// AdminCategories builds one page of the category management list.
func (b *Builder) AdminCategories(categories []domain.Category, page, totalPages int) *telebot.ReplyMarkup {
	kb := b.inline()
	for _, category := range categories {
		kb.AddRow(InlineButton{
			Text:   category.Name,
			Unique: ActionAdminCategory,
			Data:   category.Key,
		})
	}
	kb.AddRow(InlineButton{Text: b.text("admin.add_category"), Unique: ActionAdminCatAdd})
	if totalPages > 1 {
		kb.AddRow(PaginationButtons(b.t, ActionAdminCategories, page, totalPages)...)
	}
	kb.AddRow(InlineButton{Text: b.text("admin.back"), Unique: ActionAdminMenu})
	return kb.Build()
}

// AdminCategoryActions builds the per-category management row.
func (b *Builder) AdminCategoryActions(key string) *telebot.ReplyMarkup {
	return b.inline().
		AddRow(
			InlineButton{Text: b.text("admin.rename_category"), Unique: ActionAdminCatRename, Data: key},
			InlineButton{Text: b.text("admin.delete_category"), Unique: ActionAdminCatDelete, Data: key},
		).
		AddRow(InlineButton{Text: b.text("admin.back"), Unique: ActionAdminCategories, Data: "1"}).
		Build()
}

// AdminProducts builds one page of the product management list.
func (b *Builder) AdminProducts(products []domain.Product, page, totalPages int) *telebot.ReplyMarkup {
	kb := b.inline()
	for _, product := range products {
		kb.AddRow(InlineButton{
			Text:   fmt.Sprintf("%s (%d₽)", product.Name, product.Price),
			Unique: ActionAdminProduct,
			Data:   ItemData(product.ID),
		})
	}
	kb.AddRow(InlineButton{Text: b.text("admin.add_product"), Unique: ActionAdminProdAdd})
	if totalPages > 1 {
		kb.AddRow(PaginationButtons(b.t, ActionAdminProducts, page, totalPages)...)
	}
	kb.AddRow(InlineButton{Text: b.text("admin.back"), Unique: ActionAdminMenu})
	return kb.Build()
}

// AdminProductCategories builds the category picker shown when a new
// product is created.
func (b *Builder) AdminProductCategories(categories []domain.Category) *telebot.ReplyMarkup {
	kb := b.inline()
	for _, category := range categories {
		kb.AddRow(InlineButton{
			Text:   category.Name,
			Unique: ActionAdminProdCat,
			Data:   category.Key,
		})
	}
	kb.AddRow(InlineButton{Text: b.text("admin.cancel"), Unique: ActionAdminCancel})
	return kb.Build()
}

// AdminProductActions builds the per-product management row.
func (b *Builder) AdminProductActions(productID int64) *telebot.ReplyMarkup {
	data := ItemData(productID)
	return b.inline().
		AddRow(
			InlineButton{Text: b.text("admin.edit_product"), Unique: ActionAdminProdEdit, Data: data},
			InlineButton{Text: b.text("admin.delete_product"), Unique: ActionAdminProdDelete, Data: data},
		).
		AddRow(InlineButton{Text: b.text("admin.back"), Unique: ActionAdminProducts, Data: "1"}).
		Build()
}

// AdminSkipPhoto builds the skip button shown at the photo step of the
// product dialogue.
func (b *Builder) AdminSkipPhoto() *telebot.ReplyMarkup {
	return b.inline().
		AddRow(InlineButton{Text: b.text("admin.skip_photo"), Unique: ActionAdminSkipPhoto}).
		Build()
}

// AdminCancel builds a lone cancel button for admin dialogues.
func (b *Builder) AdminCancel() *telebot.ReplyMarkup {
	return b.inline().
		AddRow(InlineButton{Text: b.text("admin.cancel"), Unique: ActionAdminCancel}).
		Build()
}
