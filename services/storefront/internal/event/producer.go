package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	pkgkafka "github.com/utafrali/FreshMarket/pkg/kafka"
	"github.com/utafrali/FreshMarket/pkg/logger"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/pricing"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated       = pkgkafka.Topic("cart", "updated")
	TopicCartCleared       = pkgkafka.Topic("cart", "cleared")
	TopicCheckoutCompleted = pkgkafka.Topic("checkout", "completed")
	TopicSessionExpired    = pkgkafka.Topic("session", "expired")
)

// Aggregate type constants.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeSession = "session"
)

// SourceStorefront identifies events originating from the storefront service.
const SourceStorefront = "storefront-service"

// Reasons a cart is cleared.
const (
	ClearReasonUser     = "user"
	ClearReasonCheckout = "checkout"
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id,omitempty"`
	MarketID  string          `json:"market_id,omitempty"`
	Items     []CartItemData  `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ListingID     string          `json:"listing_id"`
	VendorID      string          `json:"vendor_id"`
	PricingMode   string          `json:"pricing_mode"`
	Quantity      int             `json:"quantity"`
	NumberOfPacks int             `json:"number_of_packs,omitempty"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Reason    string `json:"reason"`
}

// CheckoutCompletedData is the payload for a checkout.completed event.
type CheckoutCompletedData struct {
	SessionID   string          `json:"session_id"`
	UserID      string          `json:"user_id,omitempty"`
	OrderID     string          `json:"order_id"`
	MarketID    string          `json:"market_id,omitempty"`
	TotalItems  int             `json:"total_items"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	VendorCount int             `json:"vendor_count"`
}

// SessionExpiredData is the payload for a session.expired event.
type SessionExpiredData struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Operation string `json:"operation"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID, userID string, cart domain.CartState) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ListingID:     item.ID,
			VendorID:      item.VendorID,
			PricingMode:   item.PricingMode,
			Quantity:      item.Quantity,
			NumberOfPacks: item.NumberOfPacks,
			LineTotal:     pricing.LineTotal(item),
		}
	}

	data := CartUpdatedData{
		SessionID: sessionID,
		UserID:    userID,
		MarketID:  cart.MarketID,
		Items:     items,
		ItemCount: cart.ItemCount,
		Total:     cart.Total,
	}

	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("item_count", cart.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID, userID, reason string) error {
	data := CartClearedData{SessionID: sessionID, UserID: userID, Reason: reason}

	if err := p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
		slog.String("reason", reason),
	)
	return nil
}

// PublishCheckoutCompleted publishes a checkout.completed event.
func (p *Producer) PublishCheckoutCompleted(ctx context.Context, sessionID, userID, orderID, marketID string, summary pricing.Summary) error {
	data := CheckoutCompletedData{
		SessionID:   sessionID,
		UserID:      userID,
		OrderID:     orderID,
		MarketID:    marketID,
		TotalItems:  summary.TotalItems,
		TotalPrice:  summary.TotalPrice,
		VendorCount: len(summary.GroupsByVendor),
	}

	if err := p.publish(ctx, TopicCheckoutCompleted, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published checkout.completed event",
		slog.String("session_id", sessionID),
		slog.String("order_id", orderID),
	)
	return nil
}

// PublishSessionExpired publishes a session.expired event. Downstream
// consumers revoke the session's credentials.
func (p *Producer) PublishSessionExpired(ctx context.Context, sessionID, userID, operation string) error {
	data := SessionExpiredData{SessionID: sessionID, UserID: userID, Operation: operation}

	if err := p.publish(ctx, TopicSessionExpired, sessionID, AggregateTypeSession, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published session.expired event",
		slog.String("session_id", sessionID),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithMetadata(pkgkafka.MetaSessionID, logger.SessionIDFromContext(ctx)).
		WithMetadata(pkgkafka.MetaUserID, logger.UserIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
