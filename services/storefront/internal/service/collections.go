package service

import (
	"context"
	"log/slog"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/notification"
	"github.com/utafrali/FreshMarket/services/storefront/internal/shortlist"
)

// NotificationView is the notification list with its derived unread count.
type NotificationView struct {
	Items       []domain.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
}

func newNotificationView(l notification.List) NotificationView {
	items := l.Items
	if items == nil {
		items = []domain.Notification{}
	}
	return NotificationView{Items: items, UnreadCount: l.UnreadCount()}
}

// Notifications returns the session's notifications, newest first.
func (s *StorefrontService) Notifications(ctx context.Context, sessionID string) (NotificationView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return NotificationView{}, err
	}
	return newNotificationView(sess.notifications.State()), nil
}

// MarkNotificationRead marks one notification as read.
func (s *StorefrontService) MarkNotificationRead(ctx context.Context, sessionID, id string) (NotificationView, error) {
	return s.mutateNotifications(ctx, sessionID, id, func(l notification.List) notification.List {
		return notification.MarkRead(l, id)
	})
}

// MarkAllNotificationsRead marks every notification as read.
func (s *StorefrontService) MarkAllNotificationsRead(ctx context.Context, sessionID string) (NotificationView, error) {
	return s.mutateNotifications(ctx, sessionID, "", notification.MarkAllRead)
}

// RemoveNotification dismisses one notification.
func (s *StorefrontService) RemoveNotification(ctx context.Context, sessionID, id string) (NotificationView, error) {
	return s.mutateNotifications(ctx, sessionID, id, func(l notification.List) notification.List {
		return notification.Remove(l, id)
	})
}

// ClearNotifications dismisses every notification.
func (s *StorefrontService) ClearNotifications(ctx context.Context, sessionID string) (NotificationView, error) {
	return s.mutateNotifications(ctx, sessionID, "", notification.Clear)
}

// mutateNotifications applies t. When id is set, the notification must exist.
func (s *StorefrontService) mutateNotifications(ctx context.Context, sessionID, id string, t func(notification.List) notification.List) (NotificationView, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return NotificationView{}, err
	}
	if id != "" {
		if _, ok := sess.notifications.State().Find(id); !ok {
			return NotificationView{}, apperrors.NotFound("notification", id)
		}
	}
	return newNotificationView(sess.notifications.Dispatch(t)), nil
}

func (s *StorefrontService) notify(sess *Session, n domain.Notification) {
	sess.notifications.Dispatch(func(l notification.List) notification.List {
		return notification.Add(l, n)
	})
}

// Comparison returns the session's comparison list.
func (s *StorefrontService) Comparison(ctx context.Context, sessionID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}
	return sess.comparison.State(), nil
}

// AddToComparison fetches a listing and appends it to the comparison list.
// A listing already present is left in place without a remote call.
func (s *StorefrontService) AddToComparison(ctx context.Context, sessionID, listingID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}

	current := sess.comparison.State()
	if current.Contains(listingID) {
		return current, nil
	}

	listing, err := s.api.GetListing(ctx, listingID)
	if err != nil {
		return shortlist.List{}, s.upstreamFailure(ctx, sess, opCompare, "Could not compare listing", err)
	}

	var addErr error
	next := sess.comparison.Dispatch(func(l shortlist.List) shortlist.List {
		updated, err := shortlist.Add(l, *listing)
		addErr = err
		return updated
	})
	if addErr != nil {
		return next, addErr
	}

	s.logger.InfoContext(ctx, "listing added to comparison",
		slog.String("session_id", sessionID),
		slog.String("listing_id", listingID),
		slog.Int("size", len(next.Items)),
	)
	return next, nil
}

// RemoveFromComparison drops a listing from the comparison list.
func (s *StorefrontService) RemoveFromComparison(ctx context.Context, sessionID, listingID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}
	return sess.comparison.Dispatch(func(l shortlist.List) shortlist.List {
		return shortlist.Remove(l, listingID)
	}), nil
}

// ClearComparison empties the comparison list.
func (s *StorefrontService) ClearComparison(ctx context.Context, sessionID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}
	return sess.comparison.Dispatch(shortlist.Clear), nil
}

// Favorites returns the session's favorite listings.
func (s *StorefrontService) Favorites(ctx context.Context, sessionID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}
	return sess.favorites.State(), nil
}

// ToggleFavorite removes a favorite listing, or fetches and adds it when it
// is not yet a favorite.
func (s *StorefrontService) ToggleFavorite(ctx context.Context, sessionID, listingID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}

	if sess.favorites.State().Contains(listingID) {
		return sess.favorites.Dispatch(func(l shortlist.List) shortlist.List {
			return shortlist.Remove(l, listingID)
		}), nil
	}

	listing, err := s.api.GetListing(ctx, listingID)
	if err != nil {
		return shortlist.List{}, s.upstreamFailure(ctx, sess, opFavorite, "Could not save favorite", err)
	}

	var toggleErr error
	next := sess.favorites.Dispatch(func(l shortlist.List) shortlist.List {
		updated, err := shortlist.Toggle(l, *listing)
		toggleErr = err
		return updated
	})
	return next, toggleErr
}

// RemoveFavorite drops a listing from the favorites.
func (s *StorefrontService) RemoveFavorite(ctx context.Context, sessionID, listingID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}
	return sess.favorites.Dispatch(func(l shortlist.List) shortlist.List {
		return shortlist.Remove(l, listingID)
	}), nil
}

// ClearFavorites empties the favorites.
func (s *StorefrontService) ClearFavorites(ctx context.Context, sessionID string) (shortlist.List, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return shortlist.List{}, err
	}
	return sess.favorites.Dispatch(shortlist.Clear), nil
}
