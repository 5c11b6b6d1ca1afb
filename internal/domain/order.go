package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single priced entry of an order.
type LineItem struct {
	Price    float64 `json:"price" yaml:"price"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
}

// Order groups the line items placed by a customer.
type Order struct {
	ID         string
	CustomerID string
	Items      []LineItem
	PlacedAt   time.Time
}

// OrderTotal is the computed total of an order.
type OrderTotal struct {
	OrderID    string
	CustomerID string
	Total      decimal.Decimal
	ItemCount  int
	ComputedAt time.Time
}
