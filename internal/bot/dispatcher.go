package bot

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/avrorra/storebot/internal/bot/handlers"
	"github.com/avrorra/storebot/internal/session"
)

// Dispatcher routes text updates to whichever dialogue currently owns
// the user: an admin dialogue step or the checkout machine.
type Dispatcher struct {
	registry session.Registry
	checkout *handlers.CheckoutHandler
	admin    *handlers.AdminHandler
	log      *slog.Logger
}

// NewDispatcher builds a Dispatcher over the session registry.
func NewDispatcher(registry session.Registry, checkout *handlers.CheckoutHandler, admin *handlers.AdminHandler, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		registry: registry,
		checkout: checkout,
		admin:    admin,
		log:      log,
	}
}

// Dispatch offers the update to the active dialogue, if any. Returns
// true when a dialogue consumed it.
func (d *Dispatcher) Dispatch(c telebot.Context) (bool, error) {
	if c == nil || c.Sender() == nil {
		return false, nil
	}

	inAdmin, inCheckout := d.snapshot(c.Sender().ID)

	if inAdmin && d.admin != nil {
		return d.admin.Dialogue(c)
	}

	if inCheckout && d.checkout != nil {
		return true, d.checkout.Text(c)
	}

	return false, nil
}

// snapshot reads the dialogue flags outside the handler's own Update
// call. The handlers re-check state under the lock, so a stale snapshot
// at worst routes to a dialogue that ignores the update.
func (d *Dispatcher) snapshot(userID int64) (inAdmin, inCheckout bool) {
	d.registry.Update(userID, func(s *session.Session) {
		inAdmin = s.AdminState != ""
		inCheckout = s.InCheckout()
	})
	return inAdmin, inCheckout
}
