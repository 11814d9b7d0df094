package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func unitItem(id, vendor, price string, qty int) domain.LineItem {
	return domain.LineItem{
		Listing: domain.Listing{
			ID:          id,
			VendorID:    vendor,
			PricingMode: domain.PricingModeUnit,
			UnitPrice:   dec(price),
		},
		Quantity: qty,
	}
}

func TestLineTotal_Unit(t *testing.T) {
	item := unitItem("p1", "v1", "25.50", 3)
	assert.True(t, dec("76.50").Equal(LineTotal(item)))
}

func TestLineTotal_PackWithExplicitPrice(t *testing.T) {
	item := domain.LineItem{
		Listing: domain.Listing{
			ID:           "L3",
			PricingMode:  domain.PricingModePack,
			PackSize:     12,
			PricePerPack: decPtr("120"),
		},
		NumberOfPacks: 2,
	}
	assert.True(t, dec("240").Equal(LineTotal(item)))
}

func TestLineTotal_PackDerivedFromUnitPrice(t *testing.T) {
	item := domain.LineItem{
		Listing: domain.Listing{
			ID:          "L4",
			PricingMode: domain.PricingModePack,
			PackSize:    6,
			UnitPrice:   dec("1.25"),
		},
		NumberOfPacks: 3,
	}
	// 1.25 * 6 * 3
	assert.True(t, dec("22.5").Equal(LineTotal(item)))
}

func TestLineTotal_MissingFieldsAreZero(t *testing.T) {
	assert.True(t, LineTotal(domain.LineItem{}).IsZero())

	pack := domain.LineItem{Listing: domain.Listing{PricingMode: domain.PricingModePack}}
	assert.True(t, LineTotal(pack).IsZero())
}

func TestLineTotal_DoesNotMutateInput(t *testing.T) {
	ppp := decPtr("10")
	item := domain.LineItem{
		Listing:       domain.Listing{PricingMode: domain.PricingModePack, PricePerPack: ppp, PackSize: 2},
		NumberOfPacks: 4,
	}
	_ = LineTotal(item)
	assert.True(t, dec("10").Equal(*item.PricePerPack))
	assert.Equal(t, 4, item.NumberOfPacks)
}

func TestTotals_RoundsGrandTotalOnly(t *testing.T) {
	items := []domain.LineItem{
		unitItem("a", "v1", "0.333", 1),
		unitItem("b", "v1", "0.333", 1),
		unitItem("c", "v1", "0.333", 1),
	}

	total, count := Totals(items)

	// Rounding each line first would give 0.99.
	assert.True(t, dec("1.00").Equal(total), total.String())
	assert.Equal(t, 3, count)

	total, _ = Totals([]domain.LineItem{
		unitItem("a", "v1", "0.0025", 1),
		unitItem("b", "v1", "0.0025", 1),
	})
	// Each line rounds to 0.00 on its own; the sum 0.005 rounds half-up to 0.01.
	assert.True(t, dec("0.01").Equal(total), total.String())
}

func TestTotals_Empty(t *testing.T) {
	total, count := Totals(nil)
	assert.True(t, total.IsZero())
	assert.Equal(t, 0, count)
}

func TestAggregate_GroupsByVendor(t *testing.T) {
	items := []domain.LineItem{
		unitItem("a", "v1", "2.50", 4),
		unitItem("b", "v2", "1.00", 3),
		unitItem("c", "v1", "5.00", 1),
	}
	items[0].VendorName = "Green Acres"

	s := Aggregate(items)

	assert.Equal(t, 8, s.TotalItems)
	assert.True(t, dec("18").Equal(s.TotalPrice))
	require.Len(t, s.GroupsByVendor, 2)
	assert.True(t, s.MultiVendor())

	v1 := s.GroupsByVendor[0]
	assert.Equal(t, "v1", v1.VendorID)
	assert.Equal(t, "Green Acres", v1.VendorName)
	assert.Equal(t, []string{"a", "c"}, v1.ItemIDs)
	assert.Equal(t, 5, v1.ItemCount)
	assert.True(t, dec("15").Equal(v1.Subtotal))

	v2 := s.GroupsByVendor[1]
	assert.Equal(t, "v2", v2.VendorID)
	assert.True(t, dec("3").Equal(v2.Subtotal))
}

func TestAggregate_SingleVendor(t *testing.T) {
	s := Aggregate([]domain.LineItem{unitItem("a", "v1", "1", 1)})
	assert.False(t, s.MultiVendor())
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)

	assert.Equal(t, 0, s.TotalItems)
	assert.True(t, s.TotalPrice.IsZero())
	assert.NotNil(t, s.GroupsByVendor)
	assert.Empty(t, s.GroupsByVendor)
	assert.False(t, s.MultiVendor())
}

func TestAggregate_NeverNegative(t *testing.T) {
	items := []domain.LineItem{
		unitItem("a", "v1", "0", 5),
		{Listing: domain.Listing{ID: "b", VendorID: "v2", PricingMode: domain.PricingModePack}},
	}

	s := Aggregate(items)

	assert.False(t, s.TotalPrice.IsNegative())
	for _, g := range s.GroupsByVendor {
		assert.False(t, g.Subtotal.IsNegative())
	}
}
