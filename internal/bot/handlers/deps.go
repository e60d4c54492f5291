package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/avrorra/storebot/internal/bot/keyboard"
	"github.com/avrorra/storebot/internal/catalog"
	"github.com/avrorra/storebot/internal/domain"
	"github.com/avrorra/storebot/internal/i18n"
	"github.com/avrorra/storebot/internal/imagestore"
	"github.com/avrorra/storebot/internal/screen"
	"github.com/avrorra/storebot/internal/session"
	"github.com/avrorra/storebot/pkg/config"
)

// Deps bundles the services every handler constructor receives.
type Deps struct {
	Registry   session.Registry
	Catalog    *catalog.Service
	Screen     *screen.Manager
	Translator i18n.Translator
	Keyboard   *keyboard.Builder
	Images     *imagestore.Store
	Admins     config.AdminConfig
	Contacts   config.ContactsConfig
	PageSize   int
	Log        *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

// cartLines resolves the cart against the catalog. Products that no
// longer exist are skipped so a stale cart never blocks the user.
func cartLines(ctx context.Context, svc *catalog.Service, cart session.Cart) ([]domain.OrderLine, int64) {
	lines := make([]domain.OrderLine, 0, cart.Len())
	var total int64

	for _, productID := range cart.ProductIDs() {
		product, err := svc.ProductByID(ctx, productID)
		if err != nil {
			continue
		}

		line := domain.OrderLine{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  cart.Quantity(productID),
		}
		lines = append(lines, line)
		total += line.Subtotal()
	}

	return lines, total
}

// renderCart builds the cart summary text shown by the cart button.
func renderCart(t i18n.Translator, lines []domain.OrderLine, total int64) string {
	var b strings.Builder
	b.WriteString(t.T("cart.header"))
	for _, line := range lines {
		b.WriteString(t.Tf("cart.line", line.Name, line.Price, line.Quantity))
	}
	b.WriteString(t.Tf("cart.total", total))
	return b.String()
}

// renderOrderSummary builds the order recap shown at checkout start.
func renderOrderSummary(t i18n.Translator, lines []domain.OrderLine, total int64) string {
	return t.T("checkout.summary_header") + renderOrderLines(t, lines, total)
}

// renderOrderLines renders the itemized lines and the total without a
// heading, so confirmations can supply their own.
func renderOrderLines(t i18n.Translator, lines []domain.OrderLine, total int64) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(t.Tf("checkout.summary_line", line.Name, line.Quantity, line.Price, line.Subtotal()))
	}
	b.WriteString(t.Tf("checkout.summary_total", total))
	return b.String()
}
