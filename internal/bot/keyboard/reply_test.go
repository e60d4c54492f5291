package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorra/storebot/internal/bot/keyboard"
)

func storeTranslator() *mockTranslator {
	return &mockTranslator{
		translations: map[string]string{
			"menu.catalog":            "Каталог",
			"menu.cart":               "Корзина",
			"menu.delivery":           "Доставка",
			"menu.chat":               "Онлайн-чат",
			"menu.call":               "Позвонить",
			"menu.back_to_main":       "Вернуться в главное меню",
			"checkout.share_contact":  "Отправить контакт",
			"checkout.enter_manually": "Ввести вручную",
		},
	}
}

func TestMainMenu(t *testing.T) {
	markup := keyboard.MainMenu(storeTranslator())

	require.True(t, markup.ResizeKeyboard)

	expectedRows := [][]string{
		{"Каталог", "Корзина"},
		{"Доставка"},
		{"Онлайн-чат", "Позвонить"},
	}

	require.Len(t, markup.ReplyKeyboard, len(expectedRows))

	for i, row := range expectedRows {
		require.Len(t, markup.ReplyKeyboard[i], len(row))
		for j, text := range row {
			assert.Equal(t, text, markup.ReplyKeyboard[i][j].Text)
		}
	}
}

func TestPhoneChoice(t *testing.T) {
	markup := keyboard.PhoneChoice(storeTranslator())

	require.Len(t, markup.ReplyKeyboard, 3)
	assert.Equal(t, "Отправить контакт", markup.ReplyKeyboard[0][0].Text)
	assert.True(t, markup.ReplyKeyboard[0][0].Contact, "first button must request the contact")
	assert.Equal(t, "Ввести вручную", markup.ReplyKeyboard[1][0].Text)
	assert.Equal(t, "Вернуться в главное меню", markup.ReplyKeyboard[2][0].Text)
}

func TestBackToMain(t *testing.T) {
	markup := keyboard.BackToMain(storeTranslator())

	require.Len(t, markup.ReplyKeyboard, 1)
	assert.Equal(t, "Вернуться в главное меню", markup.ReplyKeyboard[0][0].Text)
}
