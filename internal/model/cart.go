package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// CartItem is a pending, not yet submitted request line owned by one user.
type CartItem struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	ItemName     string    `json:"itemName" db:"item_name"`
	PurchaseLink string    `json:"purchaseLink" db:"purchase_link"`
	OptionName   *string   `json:"optionName,omitempty" db:"option_name"`
	Quantity     int64     `json:"quantity" db:"quantity"`
	UnitPrice    int64     `json:"unitPrice" db:"unit_price"`
	TotalPrice   int64     `json:"totalPrice" db:"total_price"`
	AddedAt      time.Time `json:"addedAt" db:"added_date"`
}

// Option returns the option name, or "" when none was given.
func (c CartItem) Option() string {
	if c.OptionName == nil {
		return ""
	}
	return *c.OptionName
}

// CartItemInput is the raw form input for adding an item. Quantity and
// UnitPrice stay textual until validated so "15,000" is accepted.
type CartItemInput struct {
	ItemName     string      `json:"itemName"`
	PurchaseLink string      `json:"purchaseLink"`
	OptionName   string      `json:"optionName"`
	Quantity     NumericText `json:"quantity"`
	UnitPrice    NumericText `json:"unitPrice"`
}

// NumericText holds a number typed by a user. It unmarshals from either a
// JSON string or a JSON number.
type NumericText string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric field must be a number or string: %w", err)
	}
	*n = NumericText(num.String())
	return nil
}

// CartResponse is the rendered pending cart.
type CartResponse struct {
	Items       []CartItem `json:"items"`
	ItemCount   int        `json:"itemCount"`
	TotalAmount int64      `json:"totalAmount"`
	Warning     string     `json:"warning,omitempty"`
}

// NewCartResponse builds the cart view with its footer totals.
func NewCartResponse(items []CartItem) CartResponse {
	if items == nil {
		items = []CartItem{}
	}
	total, _ := SumTotals(items)
	return CartResponse{
		Items:       items,
		ItemCount:   len(items),
		TotalAmount: total,
	}
}

// MaxItemTotal caps one line's total price so that no realistic cart sum
// can overflow.
const MaxItemTotal int64 = 1_000_000_000_000

// SumTotals returns the sum of TotalPrice over items. ok is false when the
// sum does not fit in an int64; total is then math.MaxInt64.
func SumTotals(items []CartItem) (total int64, ok bool) {
	for _, item := range items {
		if item.TotalPrice > 0 && total > math.MaxInt64-item.TotalPrice {
			return math.MaxInt64, false
		}
		total += item.TotalPrice
	}
	return total, true
}
