// Package screen manages what the user currently sees in the chat: the
// single anchored menu message and the transient messages below it that
// get cleaned up on every navigation.
package screen

import (
	"log/slog"

	"github.com/avrorra/storebot/internal/session"
)

// Content is one renderable message. Markup carries the
// transport-specific reply markup and is passed through untouched.
type Content struct {
	Text      string
	PhotoPath string
	Markup    any
}

// Transport sends, edits and deletes chat messages. The Telegram
// implementation lives next to the bot wiring; tests use a fake.
type Transport interface {
	Send(chatID int64, content Content) (messageID int, err error)
	Edit(chatID int64, messageID int, content Content) error
	Delete(chatID int64, messageID int) error
}

// Manager applies screen updates to a session. Callers invoke it from
// inside Registry.Update so all message bookkeeping happens under the
// user's lock.
type Manager struct {
	transport Transport
	log       *slog.Logger
}

// NewManager builds a Manager over the given transport.
func NewManager(transport Transport, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{transport: transport, log: log}
}

// ShowMain replaces the menu message: the previous one is deleted best
// effort, the new one is sent and its ID recorded. Returns the send
// error, a failed delete only logs.
func (m *Manager) ShowMain(s *session.Session, content Content) error {
	if s.MainMessageID != 0 {
		m.deleteQuietly(s.ChatID, s.MainMessageID)
		s.MainMessageID = 0
	}

	id, err := m.transport.Send(s.ChatID, content)
	if err != nil {
		return err
	}
	s.MainMessageID = id

	return nil
}

// ClearTransient deletes every tracked transient message best effort
// and empties the list. The list is emptied even when deletes fail so
// a dead message ID is never retried forever.
func (m *Manager) ClearTransient(s *session.Session) {
	for _, id := range s.TakeTransient() {
		m.deleteQuietly(s.ChatID, id)
	}
}

// SendTransient sends content and tracks the resulting message for
// cleanup on the next navigation.
func (m *Manager) SendTransient(s *session.Session, content Content) (int, error) {
	id, err := m.transport.Send(s.ChatID, content)
	if err != nil {
		return 0, err
	}
	s.TrackTransient(id)

	return id, nil
}

// EditOrReplace updates a tracked message in place. When the edit
// fails, the message is deleted and a replacement is sent and tracked.
// Returns the ID now showing the content.
func (m *Manager) EditOrReplace(s *session.Session, messageID int, content Content) (int, error) {
	err := m.transport.Edit(s.ChatID, messageID, content)
	if err == nil {
		return messageID, nil
	}
	m.log.Debug("edit failed, replacing message",
		slog.Int64("chat_id", s.ChatID),
		slog.Int("message_id", messageID),
		slog.Any("error", err))

	return m.Replace(s, messageID, content)
}

// Replace deletes a tracked message and sends new content in its place.
// Used when the new content cannot be edited into the old message, e.g.
// a text message turning into a photo.
func (m *Manager) Replace(s *session.Session, messageID int, content Content) (int, error) {
	m.deleteQuietly(s.ChatID, messageID)
	s.Transient = removeID(s.Transient, messageID)

	return m.SendTransient(s, content)
}

func (m *Manager) deleteQuietly(chatID int64, messageID int) {
	if err := m.transport.Delete(chatID, messageID); err != nil {
		m.log.Debug("message delete failed",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", messageID),
			slog.Any("error", err))
	}
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
