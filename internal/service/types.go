package service

import (
	"time"

	"github.com/vanshika/tallyline/internal/billing"
	"github.com/vanshika/tallyline/internal/domain"
)

// LineItemInput is a line item as it arrives from a payload or dataset file.
// Pointers distinguish an absent field from a zero value.
type LineItemInput struct {
	Price    *float64 `json:"price" yaml:"price"`
	Quantity *float64 `json:"quantity" yaml:"quantity"`
}

// OrderInput is the inbound order payload.
type OrderInput struct {
	ID         string          `json:"id" yaml:"id"`
	CustomerID string          `json:"customerId" yaml:"customerId"`
	Items      []LineItemInput `json:"items" yaml:"items"`
	PlacedAt   *time.Time      `json:"placedAt,omitempty" yaml:"placedAt,omitempty"`
}

// UserInput is the inbound user payload. Fields other than name and email
// are kept as attributes and never projected.
type UserInput struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Email      *string        `json:"email" yaml:"email"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ToDomainItems converts payload line items, rejecting any with a missing
// price or quantity.
func ToDomainItems(items []LineItemInput) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, 0, len(items))
	for idx, item := range items {
		if item.Price == nil {
			return nil, &billing.InvalidElementError{Index: idx, Field: "price", Reason: "is missing"}
		}
		if item.Quantity == nil {
			return nil, &billing.InvalidElementError{Index: idx, Field: "quantity", Reason: "is missing"}
		}
		converted := domain.LineItem{Price: *item.Price, Quantity: *item.Quantity}
		if err := billing.ValidateItem(idx, converted); err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// ToDomain converts the payload into a domain.Order.
func (in OrderInput) ToDomain() (domain.Order, error) {
	items, err := ToDomainItems(in.Items)
	if err != nil {
		return domain.Order{}, err
	}
	order := domain.Order{
		ID:         in.ID,
		CustomerID: in.CustomerID,
		Items:      items,
	}
	if in.PlacedAt != nil {
		order.PlacedAt = in.PlacedAt.UTC()
	}
	return order, nil
}

// ToDomain converts the payload into a domain.UserRecord. An absent email
// becomes an empty string.
func (in UserInput) ToDomain() domain.UserRecord {
	record := domain.UserRecord{
		ID:         in.ID,
		Name:       in.Name,
		Attributes: in.Attributes,
	}
	if in.Email != nil {
		record.Email = *in.Email
	}
	return record
}
