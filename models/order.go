package models

import (
	"strconv"
	"time"
)

// Order is the receipt produced by a completed checkout. Orders are not
// persisted anywhere.
type Order struct {
	ID               string      `json:"id"`
	Lines            []OrderLine `json:"lines"`
	Subtotal         int64       `json:"subtotal"`
	Shipping         int64       `json:"shipping"`
	Total            int64       `json:"total"`
	Customer         Customer    `json:"customer"`
	PaymentMethod    string      `json:"payment_method"`
	PaymentReference string      `json:"payment_reference"`
	PlacedAt         time.Time   `json:"placed_at"`
}

// OrderLine is a snapshot of a cart line at checkout time.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	County    string `json:"county,omitempty"`
}

// SnapshotLines copies cart lines into order lines.
func SnapshotLines(items []LineItem) []OrderLine {
	lines := make([]OrderLine, len(items))
	for i, li := range items {
		lines[i] = OrderLine{
			ProductID: li.Product.ID,
			Name:      li.Product.Name,
			UnitPrice: li.Product.Price,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		}
	}
	return lines
}

// NewOrderID derives an order number from the clock: "DK" followed by the
// last eight digits of the Unix time in milliseconds. Unique enough within
// one process, not across processes.
func NewOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "DK" + ms
}
