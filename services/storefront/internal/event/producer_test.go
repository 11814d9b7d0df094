package event

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/utafrali/FreshMarket/pkg/kafka"
	"github.com/utafrali/FreshMarket/pkg/logger"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/pricing"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func captured(t *testing.T, pub *mockPublisher) *pkgkafka.Event {
	t.Helper()
	require.Len(t, pub.Calls, 1)
	return pub.Calls[0].Arguments.Get(2).(*pkgkafka.Event)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "freshmarket.cart.updated", TopicCartUpdated)
	assert.Equal(t, "freshmarket.cart.cleared", TopicCartCleared)
	assert.Equal(t, "freshmarket.checkout.completed", TopicCheckoutCompleted)
	assert.Equal(t, "freshmarket.session.expired", TopicSessionExpired)
}

func TestPublishCartUpdated(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCartUpdated, mock.Anything).Return(nil)
	p := NewProducer(pub, logger.Discard())

	cart := domain.CartState{
		Items: []domain.LineItem{{
			Listing:  domain.Listing{ID: "p1", VendorID: "v1", PricingMode: domain.PricingModeUnit, UnitPrice: decimal.RequireFromString("2.5")},
			Quantity: 4,
		}},
		Total:     decimal.NewFromInt(10),
		ItemCount: 4,
		MarketID:  "m1",
	}
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithSessionID(logger.WithUserID(ctx, "u1"), "s1")

	require.NoError(t, p.PublishCartUpdated(ctx, "s1", "u1", cart))

	evt := captured(t, pub)
	assert.Equal(t, TopicCartUpdated, evt.EventType)
	assert.Equal(t, "s1", evt.AggregateID)
	assert.Equal(t, AggregateTypeCart, evt.AggregateType)
	assert.Equal(t, SourceStorefront, evt.Source)
	assert.Equal(t, "corr-1", evt.CorrelationID)
	assert.Equal(t, "s1", evt.Metadata[pkgkafka.MetaSessionID])
	assert.Equal(t, "u1", evt.Metadata[pkgkafka.MetaUserID])

	var data CartUpdatedData
	require.NoError(t, evt.UnmarshalData(&data))
	assert.Equal(t, "m1", data.MarketID)
	assert.Equal(t, "u1", data.UserID)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "p1", data.Items[0].ListingID)
	assert.True(t, decimal.NewFromInt(10).Equal(data.Items[0].LineTotal))
	assert.True(t, decimal.NewFromInt(10).Equal(data.Total))
	pub.AssertExpectations(t)
}

func TestPublishCartCleared(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCartCleared, mock.Anything).Return(nil)
	p := NewProducer(pub, logger.Discard())

	require.NoError(t, p.PublishCartCleared(context.Background(), "s1", "", ClearReasonCheckout))

	var data CartClearedData
	require.NoError(t, captured(t, pub).UnmarshalData(&data))
	assert.Equal(t, ClearReasonCheckout, data.Reason)
	assert.Empty(t, captured(t, pub).CorrelationID)
	assert.Nil(t, captured(t, pub).Metadata)
}

func TestPublishCheckoutCompleted(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCheckoutCompleted, mock.Anything).Return(nil)
	p := NewProducer(pub, logger.Discard())

	summary := pricing.Summary{
		TotalItems:     5,
		TotalPrice:     decimal.RequireFromString("12.75"),
		GroupsByVendor: []pricing.VendorGroup{{VendorID: "v1"}, {VendorID: "v2"}},
	}

	require.NoError(t, p.PublishCheckoutCompleted(context.Background(), "s1", "u1", "ord-1", "m1", summary))

	var data CheckoutCompletedData
	require.NoError(t, captured(t, pub).UnmarshalData(&data))
	assert.Equal(t, "ord-1", data.OrderID)
	assert.Equal(t, 2, data.VendorCount)
	assert.True(t, summary.TotalPrice.Equal(data.TotalPrice))
}

func TestPublishSessionExpired(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicSessionExpired, mock.Anything).Return(nil)
	p := NewProducer(pub, logger.Discard())

	require.NoError(t, p.PublishSessionExpired(context.Background(), "s1", "u1", "checkout"))

	evt := captured(t, pub)
	assert.Equal(t, AggregateTypeSession, evt.AggregateType)
	var data SessionExpiredData
	require.NoError(t, evt.UnmarshalData(&data))
	assert.Equal(t, "checkout", data.Operation)
}

func TestPublish_ErrorIsWrapped(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicCartCleared, mock.Anything).Return(errors.New("broker down"))
	p := NewProducer(pub, logger.Discard())

	err := p.PublishCartCleared(context.Background(), "s1", "u1", ClearReasonUser)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish freshmarket.cart.cleared event")
	assert.Contains(t, err.Error(), "broker down")
}
