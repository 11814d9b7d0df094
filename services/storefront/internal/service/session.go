package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/services/storefront/internal/cart"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
	"github.com/utafrali/FreshMarket/services/storefront/internal/notification"
	"github.com/utafrali/FreshMarket/services/storefront/internal/repository"
	"github.com/utafrali/FreshMarket/services/storefront/internal/shortlist"
	"github.com/utafrali/FreshMarket/services/storefront/internal/store"
)

// Session holds the state containers of one storefront session.
type Session struct {
	ID string

	cart          *store.Store[domain.CartState]
	notifications *store.Store[notification.List]
	comparison    *store.Store[shortlist.List]
	favorites     *store.Store[shortlist.List]

	// checkoutMu rejects a second checkout while one is in flight.
	checkoutMu  sync.Mutex
	lastSeen    atomic.Int64
	unsubscribe []func()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

func (s *Session) close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

// session returns the live session for id, restoring it from storage on first
// use. Restoring never fails: unreadable snapshots start empty.
func (s *StorefrontService) session(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		sess.touch(s.now())
		return sess, nil
	}

	restored := s.restore(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		restored.close()
		existing.touch(s.now())
		return existing, nil
	}
	s.sessions[id] = restored
	activeSessions.Set(float64(len(s.sessions)))

	s.logger.DebugContext(ctx, "session restored",
		slog.String("session_id", id),
		slog.Int("cart_items", len(restored.cart.State().Items)),
	)
	return restored, nil
}

func (s *StorefrontService) restore(ctx context.Context, id string) *Session {
	items := loadSnapshot[domain.LineItem](ctx, s, id, repository.KeyCart)
	comparison := loadSnapshot[domain.Listing](ctx, s, id, repository.KeyComparison)
	favorites := loadSnapshot[domain.Listing](ctx, s, id, repository.KeyFavorites)

	sess := &Session{
		ID:            id,
		cart:          store.New(cart.FromItems(items)),
		notifications: store.New(notification.New(s.cfg.NotificationLimit)),
		comparison:    store.New(shortlist.FromItems(comparison, s.cfg.ComparisonLimit)),
		favorites:     store.New(shortlist.FromItems(favorites, 0)),
	}
	sess.touch(s.now())

	// A rejected mutation leaves the items untouched, so there is nothing to write.
	sess.unsubscribe = append(sess.unsubscribe,
		sess.cart.Subscribe(func(st domain.CartState) {
			if st.LastError == nil {
				s.persist(id, repository.KeyCart, st.Items)
			}
		}),
		sess.comparison.Subscribe(func(l shortlist.List) {
			s.persist(id, repository.KeyComparison, l.Items)
		}),
		sess.favorites.Subscribe(func(l shortlist.List) {
			s.persist(id, repository.KeyFavorites, l.Items)
		}),
	)
	return sess
}

// loadSnapshot reads a persisted collection. A missing key is a new session;
// corrupt values and storage outages are logged and treated as empty.
func loadSnapshot[T any](ctx context.Context, s *StorefrontService, sessionID string, key repository.Key) []T {
	var out []T
	err := s.repo.Get(ctx, sessionID, key, &out)
	switch {
	case err == nil:
		return out
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		snapshotErrorsTotal.WithLabelValues(string(key), "load").Inc()
		s.logger.WarnContext(ctx, "snapshot unreadable, starting empty",
			slog.String("session_id", sessionID),
			slog.String("key", string(key)),
			slog.String("error", err.Error()),
		)
		return nil
	}
}

// persist runs inside store listeners, after the request that caused the
// dispatch may already be gone, so it uses its own bounded context.
func (s *StorefrontService) persist(sessionID string, key repository.Key, v any) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	if err := s.repo.Save(ctx, sessionID, key, v); err != nil {
		snapshotErrorsTotal.WithLabelValues(string(key), "save").Inc()
		s.logger.Error("failed to persist snapshot",
			slog.String("session_id", sessionID),
			slog.String("key", string(key)),
			slog.String("error", err.Error()),
		)
	}
}

// EvictIdle drops in-memory sessions not used for longer than idle. Their
// snapshots stay in storage and are restored on the next request.
func (s *StorefrontService) EvictIdle(idle time.Duration) int {
	now := s.now()

	s.mu.Lock()
	var evicted []*Session
	for id, sess := range s.sessions {
		if sess.idleSince(now) > idle {
			evicted = append(evicted, sess)
			delete(s.sessions, id)
		}
	}
	activeSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.close()
	}
	if len(evicted) > 0 {
		s.logger.Info("evicted idle sessions", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// SessionCount returns the number of sessions held in memory.
func (s *StorefrontService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
