// Package cart holds the cart transitions. Every function takes the current
// state by value and returns the next one; inputs are never mutated.
package cart

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/pricing"
)

// QuantityUpdate sets the quantity of one line item.
type QuantityUpdate struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity"`
}

// Empty returns the state of a cart that has never held an item.
func Empty() domain.CartState {
	return domain.CartState{
		Items: []domain.LineItem{},
		Total: decimal.Zero,
	}
}

// AddItem merges item into the cart. A positive requested quantity takes
// precedence over the item's own quantity; when neither is set one unit is
// added. An item whose market differs from the cart's market is rejected and
// only LastError changes. Items without a market never conflict.
func AddItem(s domain.CartState, item domain.LineItem, requested int) domain.CartState {
	if conflicts(s, item.MarketID) {
		return reject(s, item.MarketID, item.MarketName)
	}

	wasEmpty := s.IsEmpty()
	next := commit(s, merge(slices.Clone(s.Items), item, requested))
	return adoptMarket(next, wasEmpty, item.MarketID, item.MarketName)
}

// AddBulk merges all items or none. The batch is rejected when it spans two
// markets or when its market conflicts with the cart's.
func AddBulk(s domain.CartState, items []domain.LineItem) domain.CartState {
	marketID, marketName := "", ""
	for _, item := range items {
		if item.MarketID == "" {
			continue
		}
		if marketID == "" {
			marketID, marketName = item.MarketID, item.MarketName
			continue
		}
		if item.MarketID != marketID {
			s.LastError = &domain.CartError{
				Kind:         domain.CartErrorMarketMismatch,
				Message:      fmt.Sprintf("Items from %s and %s cannot be ordered together.", marketLabel(marketName, marketID), marketLabel(item.MarketName, item.MarketID)),
				CartMarketID: marketID,
				ItemMarketID: item.MarketID,
			}
			return s
		}
		if marketName == "" {
			marketName = item.MarketName
		}
	}

	if conflicts(s, marketID) {
		return reject(s, marketID, marketName)
	}

	wasEmpty := s.IsEmpty()
	merged := slices.Clone(s.Items)
	for _, item := range items {
		merged = merge(merged, item, 0)
	}
	return adoptMarket(commit(s, merged), wasEmpty, marketID, marketName)
}

// UpdateQuantity sets the quantity of the line with the given id. A quantity
// of zero or less removes the line. Unknown ids leave the items unchanged.
// On a pack-priced line only the base-unit quantity changes: NumberOfPacks,
// and with it the line total, stays as it was, while ItemCount follows the
// new quantity. Packs change through AddItem.
func UpdateQuantity(s domain.CartState, id string, quantity int) domain.CartState {
	return commit(s, setQuantity(slices.Clone(s.Items), id, quantity))
}

// BulkUpdateQuantities applies each update in order and recomputes once.
func BulkUpdateQuantities(s domain.CartState, updates []QuantityUpdate) domain.CartState {
	items := slices.Clone(s.Items)
	for _, u := range updates {
		items = setQuantity(items, u.ID, u.Quantity)
	}
	return commit(s, items)
}

// RemoveItem drops the line with the given id.
func RemoveItem(s domain.CartState, id string) domain.CartState {
	return RemoveBulk(s, []string{id})
}

// RemoveBulk drops every line whose id is listed.
func RemoveBulk(s domain.CartState, ids []string) domain.CartState {
	items := slices.DeleteFunc(slices.Clone(s.Items), func(item domain.LineItem) bool {
		return slices.Contains(ids, item.ID)
	})
	return commit(s, items)
}

// Clear resets the cart to its empty state. Only the open flag survives.
func Clear(s domain.CartState) domain.CartState {
	next := Empty()
	next.IsOpen = s.IsOpen
	return next
}

// SetOpen sets the visibility flag. Totals, market and LastError are kept.
func SetOpen(s domain.CartState, open bool) domain.CartState {
	s.IsOpen = open
	return s
}

// ToggleOpen flips the visibility flag.
func ToggleOpen(s domain.CartState) domain.CartState {
	return SetOpen(s, !s.IsOpen)
}

// FromItems rebuilds a cart from a persisted item list by replaying each
// item as an addition. The cart market is taken from the first valid item
// that carries one, so items saved ahead of it without a market do not lock
// the cart out of its own market. Items without an id or with a
// non-positive quantity are skipped, as are items from any other market.
func FromItems(items []domain.LineItem) domain.CartState {
	s := Empty()
	for _, item := range items {
		if restorable(item) && item.MarketID != "" {
			s.MarketID, s.MarketName = item.MarketID, item.MarketName
			break
		}
	}

	for _, item := range items {
		if !restorable(item) {
			continue
		}
		if item.MarketID != "" && item.MarketID != s.MarketID {
			continue
		}
		s = AddItem(s, item, item.Quantity)
	}
	if s.IsEmpty() {
		return Empty()
	}
	return s
}

func restorable(item domain.LineItem) bool {
	return item.ID != "" && item.Quantity > 0
}

func conflicts(s domain.CartState, marketID string) bool {
	return !s.IsEmpty() && marketID != "" && marketID != s.MarketID
}

func reject(s domain.CartState, marketID, marketName string) domain.CartState {
	s.LastError = &domain.CartError{
		Kind: domain.CartErrorMarketMismatch,
		Message: fmt.Sprintf("Your cart already contains items from %s. Clear the cart to add items from %s.",
			marketLabel(s.MarketName, s.MarketID), marketLabel(marketName, marketID)),
		CartMarketID: s.MarketID,
		ItemMarketID: marketID,
	}
	return s
}

func marketLabel(name, id string) string {
	switch {
	case name != "":
		return name
	case id != "":
		return "market " + id
	default:
		return "another market"
	}
}

// merge adds item to items, which must already be a private copy.
func merge(items []domain.LineItem, item domain.LineItem, requested int) []domain.LineItem {
	qty := requested
	if qty <= 0 {
		qty = item.Quantity
	}
	if qty <= 0 {
		qty = 1
	}
	packs := max(item.NumberOfPacks, 1)

	for i := range items {
		if items[i].ID != item.ID {
			continue
		}
		items[i].Quantity += qty
		if items[i].IsPack() && item.IsPack() {
			items[i].NumberOfPacks += packs
		}
		return items
	}

	item.Quantity = qty
	item.NumberOfPacks = 0
	if item.IsPack() {
		item.NumberOfPacks = packs
	}
	return append(items, item)
}

func setQuantity(items []domain.LineItem, id string, quantity int) []domain.LineItem {
	i := slices.IndexFunc(items, func(item domain.LineItem) bool { return item.ID == id })
	if i < 0 {
		return items
	}
	if quantity <= 0 {
		return slices.Delete(items, i, i+1)
	}
	items[i].Quantity = quantity
	return items
}

// commit installs items, re-derives totals and clears LastError. The market
// is released once the cart is empty.
func commit(s domain.CartState, items []domain.LineItem) domain.CartState {
	s.Items = items
	s.Total, s.ItemCount = pricing.Totals(items)
	s.LastError = nil
	if len(items) == 0 {
		s.Items = []domain.LineItem{}
		s.MarketID, s.MarketName = "", ""
	}
	return s
}

func adoptMarket(s domain.CartState, wasEmpty bool, marketID, marketName string) domain.CartState {
	switch {
	case marketID == "" || s.IsEmpty():
	case wasEmpty:
		s.MarketID, s.MarketName = marketID, marketName
	case s.MarketID == marketID && s.MarketName == "":
		s.MarketName = marketName
	}
	return s
}
