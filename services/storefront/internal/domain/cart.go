package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartErrorMarketMismatch is the only kind of rejected cart mutation.
const CartErrorMarketMismatch = "MARKET_MISMATCH"

// LineItem is a listing placed in the cart. Quantity is expressed in base
// units; NumberOfPacks is only meaningful for pack-priced listings.
type LineItem struct {
	Listing
	Quantity      int `json:"quantity"`
	NumberOfPacks int `json:"number_of_packs,omitempty"`
}

// CartError describes why the last cart mutation was rejected.
type CartError struct {
	Kind         string `json:"kind"`
	Message      string `json:"message"`
	CartMarketID string `json:"cart_market_id"`
	ItemMarketID string `json:"item_market_id"`
}

func (e *CartError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// CartState is the full cart snapshot. Total and ItemCount are derived from
// Items and are never written independently.
type CartState struct {
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	MarketID   string          `json:"market_id,omitempty"`
	MarketName string          `json:"market_name,omitempty"`
	LastError  *CartError      `json:"last_error,omitempty"`
	IsOpen     bool            `json:"is_open"`
}

// FindItemIndex returns the index of the line item with the given id, or -1.
func (s CartState) FindItemIndex(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart holds no line items.
func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}
