package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/pkg/logger"
	"github.com/utafrali/FreshMarket/services/storefront/internal/apiclient"
	"github.com/utafrali/FreshMarket/services/storefront/internal/cart"
	"github.com/utafrali/FreshMarket/services/storefront/internal/classify"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/event"
	"github.com/utafrali/FreshMarket/services/storefront/internal/pricing"
)

// CheckoutResult is returned for an accepted order.
type CheckoutResult struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Summary pricing.Summary `json:"summary"`
}

// Checkout submits the session's cart as an order. On success the cart is
// cleared and a success notification is added. On failure the error is
// classified and surfaced as a notification; an auth failure also expires the
// session.
func (s *StorefrontService) Checkout(ctx context.Context, sessionID string) (*CheckoutResult, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.checkoutMu.TryLock() {
		return nil, apperrors.Conflict("a checkout is already in progress for this session")
	}
	defer sess.checkoutMu.Unlock()

	st := sess.cart.State()
	if st.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	summary := pricing.Aggregate(st.Items)
	order := apiclient.OrderRequest{
		MarketID: st.MarketID,
		Items:    make([]apiclient.OrderLine, len(st.Items)),
		Total:    st.Total,
	}
	for i, item := range st.Items {
		order.Items[i] = apiclient.OrderLine{
			ListingID:     item.ID,
			Quantity:      item.Quantity,
			NumberOfPacks: item.NumberOfPacks,
		}
	}

	confirmation, err := s.api.SubmitOrder(ctx, order)
	if err != nil {
		checkoutsTotal.WithLabelValues(outcomeFailure).Inc()
		return nil, s.upstreamFailure(ctx, sess, opCheckout, "Checkout failed", err)
	}
	checkoutsTotal.WithLabelValues(outcomeSuccess).Inc()

	sess.cart.Dispatch(cart.Clear)
	s.notify(sess, s.emitter.Notify(domain.NotificationTypeSuccess, "Order placed",
		fmt.Sprintf("Order %s has been submitted.", confirmation.OrderID)))

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.String("order_id", confirmation.OrderID),
		slog.Int("total_items", summary.TotalItems),
		slog.String("total_price", summary.TotalPrice.StringFixed(pricing.Places)),
		slog.Int("vendor_count", len(summary.GroupsByVendor)),
	)

	userID := logger.UserIDFromContext(ctx)
	if err := s.producer.PublishCheckoutCompleted(ctx, sessionID, userID, confirmation.OrderID, st.MarketID, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("session_id", sessionID),
			slog.String("order_id", confirmation.OrderID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishCartCleared(ctx, sessionID, userID, event.ClearReasonCheckout); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	return &CheckoutResult{
		OrderID: confirmation.OrderID,
		Status:  confirmation.Status,
		Summary: summary,
	}, nil
}

// upstreamFailure classifies a failed marketplace call, notifies the session
// and returns the matching application error.
func (s *StorefrontService) upstreamFailure(ctx context.Context, sess *Session, op, title string, err error) error {
	rec := classify.Classify(classify.FromError(err))
	upstreamFailuresTotal.WithLabelValues(op, rec.Kind).Inc()

	s.logger.WarnContext(ctx, "marketplace call failed",
		slog.String("session_id", sess.ID),
		slog.String("operation", op),
		slog.String("kind", rec.Kind),
		slog.Int("status", rec.Status),
		slog.Bool("retriable", rec.Retriable),
		slog.String("error", err.Error()),
	)

	s.notify(sess, s.emitter.Emit(rec, classify.Context{Title: title}))

	if rec.Kind == domain.ErrorKindAuth {
		s.expireSession(ctx, sess.ID, op)
	}
	return recordError(rec)
}

// expireSession announces that the session's credentials were rejected.
// Local state is kept so the cart survives a fresh login.
func (s *StorefrontService) expireSession(ctx context.Context, sessionID, op string) {
	s.logger.InfoContext(ctx, "session expired",
		slog.String("session_id", sessionID),
		slog.String("operation", op),
	)
	if err := s.producer.PublishSessionExpired(ctx, sessionID, logger.UserIDFromContext(ctx), op); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish session.expired event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// recordError maps a classified error onto the application error rendered to
// the client.
func recordError(rec domain.ErrorRecord) *apperrors.AppError {
	switch rec.Kind {
	case domain.ErrorKindAuth:
		return apperrors.Unauthorized(rec.Message)
	case domain.ErrorKindPermission:
		return apperrors.Forbidden(rec.Message)
	case domain.ErrorKindValidation:
		if rec.Status == http.StatusConflict {
			appErr := apperrors.Conflict(rec.Message)
			appErr.Fields = rec.Fields
			return appErr
		}
		return apperrors.Unprocessable(rec.Message, rec.Fields)
	case domain.ErrorKindNetwork:
		return apperrors.Unavailable(rec.Message).WithRetryAfter(networkRetryAfter)
	case domain.ErrorKindUnknown:
		if rec.Status == http.StatusNotFound {
			return &apperrors.AppError{
				Code:    "NOT_FOUND",
				Message: rec.Message,
				Status:  http.StatusNotFound,
				Err:     apperrors.ErrNotFound,
			}
		}
	}
	return apperrors.BadGateway(rec.Message)
}
