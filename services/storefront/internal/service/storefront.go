package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/FreshMarket/pkg/logger"
	"github.com/utafrali/FreshMarket/services/storefront/internal/apiclient"
	"github.com/utafrali/FreshMarket/services/storefront/internal/cart"
	"github.com/utafrali/FreshMarket/services/storefront/internal/classify"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/event"
	"github.com/utafrali/FreshMarket/services/storefront/internal/pricing"
	"github.com/utafrali/FreshMarket/services/storefront/internal/repository"
	"github.com/utafrali/FreshMarket/services/storefront/internal/shortlist"
	"github.com/utafrali/FreshMarket/services/storefront/internal/store"
)

// Marketplace is the subset of the remote marketplace API the service uses.
type Marketplace interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SubmitOrder(ctx context.Context, order apiclient.OrderRequest) (*apiclient.OrderConfirmation, error)
}

// EventPublisher publishes storefront domain events.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID, userID string, cart domain.CartState) error
	PublishCartCleared(ctx context.Context, sessionID, userID, reason string) error
	PublishCheckoutCompleted(ctx context.Context, sessionID, userID, orderID, marketID string, summary pricing.Summary) error
	PublishSessionExpired(ctx context.Context, sessionID, userID, operation string) error
}

var _ EventPublisher = (*event.Producer)(nil)

// Operation names, used as log attributes and metric labels.
const (
	opAddItem    = "add_item"
	opAddBulk    = "add_bulk"
	opAddListing = "add_listing"
	opUpdate     = "update_quantity"
	opBulkUpdate = "bulk_update_quantities"
	opRemoveItem = "remove_item"
	opRemoveBulk = "remove_bulk"
	opClear      = "clear"
	opCheckout   = "checkout"
	opCompare    = "add_to_comparison"
	opFavorite   = "toggle_favorite"
)

const (
	mismatchTitle = "Different market"

	defaultPersistTimeout = 2 * time.Second
	networkRetryAfter     = 5 * time.Second
)

// Config tunes the storefront service.
type Config struct {
	NotificationLimit int
	ComparisonLimit   int
	PersistTimeout    time.Duration
}

// StorefrontService owns the per-session storefront state and mediates every
// call to the marketplace API.
type StorefrontService struct {
	repo     repository.SnapshotRepository
	api      Marketplace
	producer EventPublisher
	emitter  *classify.Emitter
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStorefrontService creates a new storefront service. A nil emitter uses
// the wall clock and random notification ids.
func NewStorefrontService(
	repo repository.SnapshotRepository,
	api Marketplace,
	producer EventPublisher,
	emitter *classify.Emitter,
	logger *slog.Logger,
	cfg Config,
) *StorefrontService {
	if emitter == nil {
		emitter = classify.NewEmitter(nil, nil)
	}
	if cfg.ComparisonLimit <= 0 {
		cfg.ComparisonLimit = shortlist.DefaultComparisonLimit
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	return &StorefrontService{
		repo:     repo,
		api:      api,
		producer: producer,
		emitter:  emitter,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*Session),
	}
}

// GetCart returns the current cart of a session.
func (s *StorefrontService) GetCart(ctx context.Context, sessionID string) (domain.CartState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.CartState{}, err
	}
	return sess.cart.State(), nil
}

// AddItem adds item to the cart. A requested quantity of zero or less falls
// back to the item's own quantity, then to one.
func (s *StorefrontService) AddItem(ctx context.Context, sessionID string, item domain.LineItem, quantity int) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opAddItem, func(st domain.CartState) domain.CartState {
		return cart.AddItem(st, item, quantity)
	})
}

// AddBulk adds several items at once. The whole batch is rejected when it
// spans markets or conflicts with the cart's market.
func (s *StorefrontService) AddBulk(ctx context.Context, sessionID string, items []domain.LineItem) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opAddBulk, func(st domain.CartState) domain.CartState {
		return cart.AddBulk(st, items)
	})
}

// AddListing fetches a listing from the marketplace and adds it to the cart.
// For pack-priced listings without an explicit quantity, the quantity is
// derived from the number of packs.
func (s *StorefrontService) AddListing(ctx context.Context, sessionID, listingID string, quantity, packs int) (domain.CartState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.CartState{}, err
	}

	listing, err := s.api.GetListing(ctx, listingID)
	if err != nil {
		return domain.CartState{}, s.upstreamFailure(ctx, sess, opAddListing, "Could not add item", err)
	}

	item := domain.LineItem{Listing: *listing, Quantity: quantity, NumberOfPacks: packs}
	if item.IsPack() && quantity <= 0 && packs > 0 && listing.PackSize > 0 {
		item.Quantity = packs * listing.PackSize
	}

	return s.mutateCart(ctx, sessionID, opAddListing, func(st domain.CartState) domain.CartState {
		return cart.AddItem(st, item, item.Quantity)
	})
}

// UpdateQuantity sets the quantity of one line. Zero or less removes it.
func (s *StorefrontService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opUpdate, func(st domain.CartState) domain.CartState {
		return cart.UpdateQuantity(st, itemID, quantity)
	})
}

// BulkUpdateQuantities applies several quantity updates in order.
func (s *StorefrontService) BulkUpdateQuantities(ctx context.Context, sessionID string, updates []cart.QuantityUpdate) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opBulkUpdate, func(st domain.CartState) domain.CartState {
		return cart.BulkUpdateQuantities(st, updates)
	})
}

// RemoveItem removes one line from the cart.
func (s *StorefrontService) RemoveItem(ctx context.Context, sessionID, itemID string) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opRemoveItem, func(st domain.CartState) domain.CartState {
		return cart.RemoveItem(st, itemID)
	})
}

// RemoveBulk removes every line whose id is listed.
func (s *StorefrontService) RemoveBulk(ctx context.Context, sessionID string, ids []string) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opRemoveBulk, func(st domain.CartState) domain.CartState {
		return cart.RemoveBulk(st, ids)
	})
}

// ClearCart empties the cart.
func (s *StorefrontService) ClearCart(ctx context.Context, sessionID string) (domain.CartState, error) {
	return s.mutateCart(ctx, sessionID, opClear, cart.Clear)
}

// SetCartOpen sets the cart drawer flag.
func (s *StorefrontService) SetCartOpen(ctx context.Context, sessionID string, open bool) (domain.CartState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.CartState{}, err
	}
	return sess.cart.Dispatch(func(st domain.CartState) domain.CartState {
		return cart.SetOpen(st, open)
	}), nil
}

// ToggleCartOpen flips the cart drawer flag.
func (s *StorefrontService) ToggleCartOpen(ctx context.Context, sessionID string) (domain.CartState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.CartState{}, err
	}
	return sess.cart.Dispatch(cart.ToggleOpen), nil
}

// CartSummary aggregates the cart by vendor.
func (s *StorefrontService) CartSummary(ctx context.Context, sessionID string) (pricing.Summary, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return pricing.Summary{}, err
	}
	return pricing.Aggregate(sess.cart.State().Items), nil
}

// Quote aggregates a candidate item set without touching any cart.
func (s *StorefrontService) Quote(items []domain.LineItem) pricing.Summary {
	return pricing.Aggregate(items)
}

// mutateCart dispatches t to the session's cart. A market mismatch is not an
// error for the caller: the returned state carries LastError and the session
// receives a warning notification.
func (s *StorefrontService) mutateCart(ctx context.Context, sessionID, op string, t store.Transition[domain.CartState]) (domain.CartState, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.CartState{}, err
	}

	next := sess.cart.Dispatch(t)

	if next.LastError != nil {
		cartMutationsTotal.WithLabelValues(op, outcomeRejected).Inc()
		s.logger.WarnContext(ctx, "cart mutation rejected",
			slog.String("session_id", sessionID),
			slog.String("operation", op),
			slog.String("kind", next.LastError.Kind),
			slog.String("cart_market_id", next.LastError.CartMarketID),
			slog.String("item_market_id", next.LastError.ItemMarketID),
		)
		s.notify(sess, s.emitter.Notify(domain.NotificationTypeWarning, mismatchTitle, next.LastError.Message))
		return next, nil
	}

	cartMutationsTotal.WithLabelValues(op, outcomeApplied).Inc()
	s.logger.InfoContext(ctx, "cart updated",
		slog.String("session_id", sessionID),
		slog.String("operation", op),
		slog.Int("item_count", next.ItemCount),
		slog.String("total", next.Total.StringFixed(pricing.Places)),
	)

	userID := logger.UserIDFromContext(ctx)
	if op == opClear {
		if err := s.producer.PublishCartCleared(ctx, sessionID, userID, event.ClearReasonUser); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return next, nil
	}

	if err := s.producer.PublishCartUpdated(ctx, sessionID, userID, next); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return next, nil
}
