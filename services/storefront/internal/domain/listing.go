package domain

import "github.com/shopspring/decimal"

// Pricing mode constants.
const (
	PricingModeUnit = "unit"
	PricingModePack = "pack"
)

// Listing is a catalog entry offered by a vendor in a market.
type Listing struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	VendorID     string           `json:"vendor_id"`
	VendorName   string           `json:"vendor_name,omitempty"`
	MarketID     string           `json:"market_id,omitempty"`
	MarketName   string           `json:"market_name,omitempty"`
	Unit         string           `json:"unit,omitempty"`
	Availability string           `json:"availability,omitempty"`
	PricingMode  string           `json:"pricing_mode,omitempty"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	PricePerPack *decimal.Decimal `json:"price_per_pack,omitempty"`
	PackSize     int              `json:"pack_size,omitempty"`
}

// IsPack reports whether the listing is sold in packs.
func (l Listing) IsPack() bool {
	return l.PricingMode == PricingModePack
}

// IsValidPricingMode checks whether mode is a known pricing mode. The empty
// string is accepted and treated as unit pricing.
func IsValidPricingMode(mode string) bool {
	return mode == "" || mode == PricingModeUnit || mode == PricingModePack
}
