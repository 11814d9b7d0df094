package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/FreshMarket/services/storefront/internal/cart"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/pricing"
)

// --- Request DTOs ---

// ListingRequest describes a listing as sent by the client.
type ListingRequest struct {
	ID           string           `json:"id" validate:"required,max=200"`
	Name         string           `json:"name" validate:"max=500"`
	VendorID     string           `json:"vendor_id" validate:"max=200"`
	VendorName   string           `json:"vendor_name" validate:"max=500"`
	MarketID     string           `json:"market_id" validate:"max=200"`
	MarketName   string           `json:"market_name" validate:"max=500"`
	Unit         string           `json:"unit" validate:"max=50"`
	Availability string           `json:"availability" validate:"max=50"`
	PricingMode  string           `json:"pricing_mode" validate:"omitempty,oneof=unit pack"`
	UnitPrice    decimal.Decimal  `json:"unit_price" validate:"gte=0"`
	PricePerPack *decimal.Decimal `json:"price_per_pack,omitempty" validate:"omitempty,gte=0"`
	PackSize     int              `json:"pack_size" validate:"gte=0,required_if=PricingMode pack"`
}

func (l ListingRequest) toDomain() domain.Listing {
	mode := l.PricingMode
	if mode == "" {
		mode = domain.PricingModeUnit
	}
	return domain.Listing{
		ID:           l.ID,
		Name:         l.Name,
		VendorID:     l.VendorID,
		VendorName:   l.VendorName,
		MarketID:     l.MarketID,
		MarketName:   l.MarketName,
		Unit:         l.Unit,
		Availability: l.Availability,
		PricingMode:  mode,
		UnitPrice:    l.UnitPrice,
		PricePerPack: l.PricePerPack,
		PackSize:     l.PackSize,
	}
}

// LineItemRequest is a listing with the amount being ordered.
type LineItemRequest struct {
	ListingRequest
	Quantity      int `json:"quantity" validate:"gte=0,lte=100000"`
	NumberOfPacks int `json:"number_of_packs" validate:"gte=0,lte=10000"`
}

func (i LineItemRequest) toDomain() domain.LineItem {
	return domain.LineItem{
		Listing:       i.ListingRequest.toDomain(),
		Quantity:      i.Quantity,
		NumberOfPacks: i.NumberOfPacks,
	}
}

func lineItems(reqs []LineItemRequest) []domain.LineItem {
	items := make([]domain.LineItem, len(reqs))
	for i, req := range reqs {
		items[i] = req.toDomain()
	}
	return items
}

// AddItemRequest is the JSON request body for adding an item to the cart.
// RequestedQuantity takes precedence over the item's own quantity when positive.
type AddItemRequest struct {
	Item              LineItemRequest `json:"item"`
	RequestedQuantity int             `json:"requested_quantity" validate:"lte=100000"`
}

// AddBulkRequest is the JSON request body for adding several items at once.
type AddBulkRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's
// quantity. Zero or less removes the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=100000"`
}

// QuantityUpdateRequest is one entry of a bulk quantity update.
type QuantityUpdateRequest struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"lte=100000"`
}

// BulkUpdateRequest is the JSON request body for updating several quantities.
type BulkUpdateRequest struct {
	Updates []QuantityUpdateRequest `json:"updates" validate:"required,min=1,max=200,dive"`
}

// RemoveBulkRequest is the JSON request body for removing several items.
type RemoveBulkRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=200,dive,required"`
}

// AddListingRequest is the optional JSON body for adding a listing by id.
type AddListingRequest struct {
	Quantity      int `json:"quantity" validate:"gte=0,lte=100000"`
	NumberOfPacks int `json:"number_of_packs" validate:"gte=0,lte=10000"`
}

// SetOpenRequest is the JSON request body for the cart drawer flag.
type SetOpenRequest struct {
	Open *bool `json:"open" validate:"required"`
}

// QuoteRequest is the JSON request body for pricing a candidate item set.
type QuoteRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

// --- Responses ---

// SummaryResponse is a pricing summary with its multi-vendor flag.
type SummaryResponse struct {
	pricing.Summary
	MultiVendor bool `json:"multi_vendor"`
}

func summaryResponse(s pricing.Summary) SummaryResponse {
	return SummaryResponse{Summary: s, MultiVendor: s.MultiVendor()}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.GetCart(r.Context(), sessionID(r))
	h.respond(w, r, st, err)
}

// ClearCart handles DELETE /api/v1/cart
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.ClearCart(r.Context(), sessionID(r))
	h.respond(w, r, st, err)
}

// AddItem handles POST /api/v1/cart/items
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	st, err := h.service.AddItem(r.Context(), sessionID(r), req.Item.toDomain(), req.RequestedQuantity)
	h.respond(w, r, st, err)
}

// AddBulk handles POST /api/v1/cart/items/bulk
func (h *StorefrontHandler) AddBulk(w http.ResponseWriter, r *http.Request) {
	var req AddBulkRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	st, err := h.service.AddBulk(r.Context(), sessionID(r), lineItems(req.Items))
	h.respond(w, r, st, err)
}

// BulkUpdateQuantities handles PUT /api/v1/cart/items
func (h *StorefrontHandler) BulkUpdateQuantities(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	updates := make([]cart.QuantityUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = cart.QuantityUpdate{ID: u.ID, Quantity: u.Quantity}
	}

	st, err := h.service.BulkUpdateQuantities(r.Context(), sessionID(r), updates)
	h.respond(w, r, st, err)
}

// RemoveBulk handles DELETE /api/v1/cart/items
func (h *StorefrontHandler) RemoveBulk(w http.ResponseWriter, r *http.Request) {
	var req RemoveBulkRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	st, err := h.service.RemoveBulk(r.Context(), sessionID(r), req.IDs)
	h.respond(w, r, st, err)
}

// UpdateQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *StorefrontHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	st, err := h.service.UpdateQuantity(r.Context(), sessionID(r), chi.URLParam(r, "itemId"), req.Quantity)
	h.respond(w, r, st, err)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.RemoveItem(r.Context(), sessionID(r), chi.URLParam(r, "itemId"))
	h.respond(w, r, st, err)
}

// AddListing handles POST /api/v1/cart/listings/{listingId}
func (h *StorefrontHandler) AddListing(w http.ResponseWriter, r *http.Request) {
	var req AddListingRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	st, err := h.service.AddListing(r.Context(), sessionID(r), chi.URLParam(r, "listingId"), req.Quantity, req.NumberOfPacks)
	h.respond(w, r, st, err)
}

// SetOpen handles PUT /api/v1/cart/open
func (h *StorefrontHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	var req SetOpenRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	st, err := h.service.SetCartOpen(r.Context(), sessionID(r), *req.Open)
	h.respond(w, r, st, err)
}

// ToggleOpen handles POST /api/v1/cart/open/toggle
func (h *StorefrontHandler) ToggleOpen(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.ToggleCartOpen(r.Context(), sessionID(r))
	h.respond(w, r, st, err)
}

// CartSummary handles GET /api/v1/cart/summary
func (h *StorefrontHandler) CartSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CartSummary(r.Context(), sessionID(r))
	h.respond(w, r, summaryResponse(summary), err)
}

// Checkout handles POST /api/v1/cart/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Checkout(r.Context(), sessionID(r))
	h.respond(w, r, result, err)
}

// Quote handles POST /api/v1/pricing/quote
func (h *StorefrontHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	h.respond(w, r, summaryResponse(h.service.Quote(lineItems(req.Items))), nil)
}
