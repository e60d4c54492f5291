// Package session keeps per-user conversational state for the lifetime
// of the process: the cart, the checkout dialogue position, tracked
// message IDs, and scratch data for multi-step admin dialogues.
package session

import (
	"time"

	"github.com/avrorra/storebot/internal/checkout"
)

// Session is the per-user record. It is only ever accessed through
// Registry.Update, which serializes access per user.
type Session struct {
	UserID int64
	ChatID int64

	// MainMessageID is the current menu anchor message, zero when no
	// menu has been sent yet.
	MainMessageID int

	// Transient lists message IDs sent below the menu that should be
	// deleted on the next navigation.
	Transient []int

	Cart     Cart
	Checkout checkout.State
	Phone    string
	Address  string

	// AdminState and Draft carry multi-step admin dialogues. Draft is
	// keyed by field name (category key, product name, price and so on).
	AdminState string
	Draft      map[string]string

	LastSeen time.Time
}

func newSession(userID int64) *Session {
	return &Session{
		UserID:   userID,
		Cart:     NewCart(),
		Checkout: checkout.StateIdle,
		Draft:    make(map[string]string),
		LastSeen: time.Now(),
	}
}

// TrackTransient records a message ID for cleanup on the next navigation.
func (s *Session) TrackTransient(messageID int) {
	s.Transient = append(s.Transient, messageID)
}

// TakeTransient empties the transient list and returns the previous IDs.
func (s *Session) TakeTransient() []int {
	ids := s.Transient
	s.Transient = nil
	return ids
}

// ResetCheckout discards partial checkout data and returns to idle.
func (s *Session) ResetCheckout() {
	s.Checkout = checkout.StateIdle
	s.Phone = ""
	s.Address = ""
}

// ResetAdmin discards an in-progress admin dialogue.
func (s *Session) ResetAdmin() {
	s.AdminState = ""
	s.Draft = make(map[string]string)
}

// InCheckout reports whether the user is mid-dialogue.
func (s *Session) InCheckout() bool {
	return s.Checkout != checkout.StateIdle
}
