// Package billing holds the order total and user projection operations.
package billing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vanshika/tallyline/internal/domain"
)

// ErrInvalidElement is wrapped by every InvalidElementError.
var ErrInvalidElement = errors.New("invalid line item")

// InvalidElementError reports the offending line item of a sequence.
type InvalidElementError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidElementError) Error() string {
	return fmt.Sprintf("item %d: %s %s", e.Index, e.Field, e.Reason)
}

func (e *InvalidElementError) Unwrap() error {
	return ErrInvalidElement
}

// CalculateTotal returns the sum of price × quantity over items. An empty or
// nil sequence totals to zero. Float64 arithmetic overflows: finite lines such
// as 1e308×10 and -1e308×10 yield NaN. Use Total when exactness matters.
func CalculateTotal(items []domain.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * item.Quantity
	}
	return total
}

// Total is the exact variant of CalculateTotal. Non-finite prices or
// quantities are rejected with an *InvalidElementError.
func Total(items []domain.LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for idx, item := range items {
		if err := ValidateItem(idx, item); err != nil {
			return decimal.Zero, err
		}
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromFloat(item.Quantity))
		total = total.Add(line)
	}
	return total, nil
}

// ValidateItem checks that the item at idx carries finite numbers.
func ValidateItem(idx int, item domain.LineItem) error {
	if !isFinite(item.Price) {
		return &InvalidElementError{Index: idx, Field: "price", Reason: "is not a finite number"}
	}
	if !isFinite(item.Quantity) {
		return &InvalidElementError{Index: idx, Field: "quantity", Reason: "is not a finite number"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
