// Package pricing totals cart line items under unit and pack pricing.
// All functions are pure; missing numeric fields count as zero.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

// Places is the number of decimal places totals are rounded to.
const Places = 2

// PricePerPack returns the explicit pack price, or unit price times pack size
// when the listing does not carry one.
func PricePerPack(l domain.Listing) decimal.Decimal {
	if l.PricePerPack != nil {
		return *l.PricePerPack
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.PackSize)))
}

// LineTotal returns the unrounded total of a single line item.
func LineTotal(item domain.LineItem) decimal.Decimal {
	if item.IsPack() {
		return PricePerPack(item.Listing).Mul(decimal.NewFromInt(int64(item.NumberOfPacks)))
	}
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Totals returns the grand total rounded half-up to two places and the
// number of base units across items. Rounding is applied once, never per line.
func Totals(items []domain.LineItem) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(LineTotal(item))
		count += item.Quantity
	}
	return total.Round(Places), count
}

// VendorGroup is the share of a set of items sold by one vendor.
type VendorGroup struct {
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name,omitempty"`
	ItemIDs    []string        `json:"item_ids"`
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Summary is the aggregate of a candidate set of line items.
type Summary struct {
	TotalItems     int             `json:"total_items"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	GroupsByVendor []VendorGroup   `json:"groups_by_vendor"`
}

// MultiVendor reports whether the items span more than one vendor.
func (s Summary) MultiVendor() bool {
	return len(s.GroupsByVendor) > 1
}

// Aggregate totals items and partitions them by vendor. Groups appear in the
// order their vendor is first seen.
func Aggregate(items []domain.LineItem) Summary {
	groups := make([]VendorGroup, 0)
	index := make(map[string]int)

	for _, item := range items {
		i, ok := index[item.VendorID]
		if !ok {
			i = len(groups)
			index[item.VendorID] = i
			groups = append(groups, VendorGroup{
				VendorID:   item.VendorID,
				VendorName: item.VendorName,
				ItemIDs:    []string{},
				Subtotal:   decimal.Zero,
			})
		}
		g := &groups[i]
		if g.VendorName == "" {
			g.VendorName = item.VendorName
		}
		g.ItemIDs = append(g.ItemIDs, item.ID)
		g.ItemCount += item.Quantity
		g.Subtotal = g.Subtotal.Add(LineTotal(item))
	}

	for i := range groups {
		groups[i].Subtotal = groups[i].Subtotal.Round(Places)
	}

	total, count := Totals(items)
	return Summary{
		TotalItems:     count,
		TotalPrice:     total,
		GroupsByVendor: groups,
	}
}
