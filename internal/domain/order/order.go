package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Statuses returns every status in the order the dropdown lists them.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusDelivered, StatusCancelled}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Order struct {
	ID              string
	FullName        string
	Email           string
	Phone           string
	Address         string
	City            string
	ZipCode         string
	TotalPrice      decimal.Decimal
	DiscountedPrice decimal.Decimal
	OrderDate       string
	Status          Status
	CartItems       []CartItem
}

// CartItem is a line item resolved from its product reference.
type CartItem struct {
	ProductName string
	Image       string
	ImageURL    string
}

// Clone returns a copy that shares nothing mutable with o.
func (o Order) Clone() Order {
	if o.CartItems != nil {
		items := make([]CartItem, len(o.CartItems))
		copy(items, o.CartItems)
		o.CartItems = items
	}
	return o
}

// OrderDateLayout is the locale layout used when rendering order dates.
const OrderDateLayout = "02/01/2006"

// FormatOrderDate renders the stored timestamp string with layout. Values
// that are not RFC 3339 are returned unchanged.
func FormatOrderDate(raw, layout string) string {
	if raw == "" {
		return ""
	}
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(l, raw); err == nil {
			return t.Format(layout)
		}
	}
	return raw
}
