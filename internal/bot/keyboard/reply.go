package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/i18n"
)

// MainMenu builds the persistent storefront reply keyboard.
func MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	catalogBtn := markup.Text(lookup("menu.catalog"))
	cartBtn := markup.Text(lookup("menu.cart"))
	deliveryBtn := markup.Text(lookup("menu.delivery"))
	chatBtn := markup.Text(lookup("menu.chat"))
	callBtn := markup.Text(lookup("menu.call"))

	markup.Reply(
		markup.Row(catalogBtn, cartBtn),
		markup.Row(deliveryBtn),
		markup.Row(chatBtn, callBtn),
	)

	return markup
}

// PhoneChoice builds the reply keyboard offered when checkout starts:
// share the Telegram contact, type the number in, or bail out.
func PhoneChoice(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	contactBtn := markup.Contact(lookup("checkout.share_contact"))
	manualBtn := markup.Text(lookup("checkout.enter_manually"))
	backBtn := markup.Text(lookup("menu.back_to_main"))

	markup.Reply(
		markup.Row(contactBtn),
		markup.Row(manualBtn),
		markup.Row(backBtn),
	)

	return markup
}

// BackToMain builds the single-button reply keyboard shown while the
// user types a phone number or delivery address.
func BackToMain(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	label := "menu.back_to_main"
	if t != nil {
		label = t.T(label)
	}

	markup.Reply(markup.Row(markup.Text(label)))

	return markup
}
