package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/domain"
)

func TestBuilderCategories(t *testing.T) {
	b := keyboard.NewBuilder(storeTranslator(), quietLogger())

	markup := b.Categories([]domain.Category{
		{Key: "cakes", Name: "Торты"},
		{Key: "drinks", Name: "Напитки"},
	})

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "Торты", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "category:cakes", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "category:drinks", markup.InlineKeyboard[1][0].Data)
}

func TestBuilderProductCard(t *testing.T) {
	b := keyboard.NewBuilder(storeTranslator(), quietLogger())

	product := domain.Product{ID: 7, Name: "Медовик", Price: 900, CategoryKey: "cakes"}
	markup := b.ProductCard(product, 3)

	// Counter row, add button, checkout, continue shopping, back.
	require.Len(t, markup.InlineKeyboard, 5)

	counter := markup.InlineKeyboard[0]
	require.Len(t, counter, 3)
	assert.Equal(t, "card_dec:7", counter[0].Data)
	assert.Equal(t, "3", counter[1].Text)
	assert.Equal(t, "noop", counter[1].Data)
	assert.Equal(t, "card_inc:7", counter[2].Data)

	assert.Equal(t, "add:7", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "checkout", markup.InlineKeyboard[2][0].Data)
	assert.Equal(t, "continue", markup.InlineKeyboard[3][0].Data)
	assert.Equal(t, "category:cakes", markup.InlineKeyboard[4][0].Data)
}

func TestBuilderCategoryProducts(t *testing.T) {
	b := keyboard.NewBuilder(storeTranslator(), quietLogger())

	markup := b.CategoryProducts([]domain.Product{
		{ID: 1, Name: "Медовик", Price: 500},
		{ID: 2, Name: "Наполеон", Price: 450},
	})

	require.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, "Медовик - 500₽", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "product:1", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "product:2", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "catalog", markup.InlineKeyboard[2][0].Data)
}

func TestBuilderCartItemEdit(t *testing.T) {
	b := keyboard.NewBuilder(storeTranslator(), quietLogger())

	markup := b.CartItemEdit(12)

	require.Len(t, markup.InlineKeyboard, 2)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 3)
	assert.Equal(t, "cart_dec:12", row[0].Data)
	assert.Equal(t, "cart_del:12", row[1].Data)
	assert.Equal(t, "cart_inc:12", row[2].Data)
	assert.Equal(t, "cart_save", markup.InlineKeyboard[1][0].Data)
}

func TestBuilderAdminProductsPagination(t *testing.T) {
	b := keyboard.NewBuilder(storeTranslator(), quietLogger())

	products := []domain.Product{
		{ID: 1, Name: "Медовик", Price: 500},
		{ID: 2, Name: "Наполеон", Price: 450},
	}

	markup := b.AdminProducts(products, 2, 3)

	// Two product rows, add button, pagination row, back button.
	require.Len(t, markup.InlineKeyboard, 5)
	assert.Equal(t, "adm_prod:1", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "adm_prod:2", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "adm_prod_add", markup.InlineKeyboard[2][0].Data)

	pagination := markup.InlineKeyboard[3]
	require.Len(t, pagination, 3)
	assert.Equal(t, "adm_prods:1", pagination[0].Data)
	assert.Equal(t, "adm_prods:3", pagination[2].Data)

	assert.Equal(t, "adm", markup.InlineKeyboard[4][0].Data)
}

func TestBuilderAdminCategoriesSinglePage(t *testing.T) {
	b := keyboard.NewBuilder(storeTranslator(), quietLogger())

	markup := b.AdminCategories([]domain.Category{{Key: "cakes", Name: "Торты"}}, 1, 1)

	// Category row, add button, back button. No pagination on one page.
	require.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, "adm_cat:cakes", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "adm_cat_add", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, "adm", markup.InlineKeyboard[2][0].Data)
}
