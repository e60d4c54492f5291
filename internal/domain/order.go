package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine is one cart position resolved against the catalog at the
// moment the order is built.
type OrderLine struct {
	ProductID int64
	Name      string
	Price     int64
	Quantity  int
}

// Subtotal returns price times quantity for the line.
func (l OrderLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Order is the finalized result of a checkout dialogue.
type Order struct {
	Reference string
	UserID    int64
	Lines     []OrderLine
	Phone     string
	Address   string
	CreatedAt time.Time
}

// NewOrder assembles an order with a fresh reference number.
func NewOrder(userID int64, lines []OrderLine, phone, address string) Order {
	return Order{
		Reference: uuid.NewString(),
		UserID:    userID,
		Lines:     lines,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
}

// Total sums the subtotals of all lines.
func (o Order) Total() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.Subtotal()
	}
	return total
}
