package bot

import (
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/screen"
)

// telegramTransport adapts telebot to the screen.Transport interface.
type telegramTransport struct {
	bot *telebot.Bot
}

func newTelegramTransport(tb *telebot.Bot) *telegramTransport {
	return &telegramTransport{bot: tb}
}

func (t *telegramTransport) Send(chatID int64, content screen.Content) (int, error) {
	var what interface{} = content.Text
	if content.PhotoPath != "" {
		what = &telebot.Photo{
			File:    telebot.FromDisk(content.PhotoPath),
			Caption: content.Text,
		}
	}

	msg, err := t.bot.Send(telebot.ChatID(chatID), what, sendOptions(content.Markup)...)
	if err != nil {
		return 0, err
	}

	return msg.ID, nil
}

func (t *telegramTransport) Edit(chatID int64, messageID int, content screen.Content) error {
	var what interface{} = content.Text
	if content.PhotoPath != "" {
		what = &telebot.Photo{
			File:    telebot.FromDisk(content.PhotoPath),
			Caption: content.Text,
		}
	}

	_, err := t.bot.Edit(storedMessage(chatID, messageID), what, sendOptions(content.Markup)...)
	return err
}

func (t *telegramTransport) Delete(chatID int64, messageID int) error {
	return t.bot.Delete(storedMessage(chatID, messageID))
}

func storedMessage(chatID int64, messageID int) *telebot.StoredMessage {
	return &telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}

func sendOptions(markup any) []interface{} {
	opts := []interface{}{telebot.ModeHTML}
	if rm, ok := markup.(*telebot.ReplyMarkup); ok && rm != nil {
		opts = append(opts, rm)
	}
	return opts
}
