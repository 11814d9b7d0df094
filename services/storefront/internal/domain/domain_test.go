package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_IsPack(t *testing.T) {
	assert.True(t, Listing{PricingMode: PricingModePack}.IsPack())
	assert.False(t, Listing{PricingMode: PricingModeUnit}.IsPack())
	assert.False(t, Listing{}.IsPack())
}

func TestIsValidPricingMode(t *testing.T) {
	assert.True(t, IsValidPricingMode(""))
	assert.True(t, IsValidPricingMode(PricingModeUnit))
	assert.True(t, IsValidPricingMode(PricingModePack))
	assert.False(t, IsValidPricingMode("crate"))
}

func TestCartState_FindItemIndex(t *testing.T) {
	s := CartState{Items: []LineItem{
		{Listing: Listing{ID: "a"}},
		{Listing: Listing{ID: "b"}},
	}}

	assert.Equal(t, 0, s.FindItemIndex("a"))
	assert.Equal(t, 1, s.FindItemIndex("b"))
	assert.Equal(t, -1, s.FindItemIndex("c"))
	assert.False(t, s.IsEmpty())
	assert.True(t, CartState{}.IsEmpty())
}

func TestLineItem_JSONFlattensListing(t *testing.T) {
	ppp := decimal.RequireFromString("120")
	item := LineItem{
		Listing: Listing{
			ID:           "L3",
			Name:         "Carrots",
			PricingMode:  PricingModePack,
			UnitPrice:    decimal.RequireFromString("10.5"),
			PricePerPack: &ppp,
			PackSize:     12,
		},
		Quantity:      24,
		NumberOfPacks: 2,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "L3", raw["id"])
	assert.Equal(t, "pack", raw["pricing_mode"])
	assert.Equal(t, float64(2), raw["number_of_packs"])

	var back LineItem
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.UnitPrice.Equal(item.UnitPrice))
	require.NotNil(t, back.PricePerPack)
	assert.True(t, back.PricePerPack.Equal(ppp))
	assert.Equal(t, 12, back.PackSize)
}

func TestCartError_Error(t *testing.T) {
	err := &CartError{Kind: CartErrorMarketMismatch, Message: "different market"}
	assert.Equal(t, "MARKET_MISMATCH: different market", err.Error())
}

func TestIsValidNotificationType(t *testing.T) {
	for _, typ := range ValidNotificationTypes() {
		assert.True(t, IsValidNotificationType(typ))
	}
	assert.False(t, IsValidNotificationType("email"))
}
