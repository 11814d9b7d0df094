// Package notification keeps a bounded, newest-first list of notifications.
package notification

import (
	"slices"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

// DefaultLimit caps a list created with a non-positive limit.
const DefaultLimit = 50

// List is an immutable notification list. The unread count is always derived
// from Items.
type List struct {
	Items []domain.Notification `json:"items"`
	Limit int                   `json:"-"`
}

// New returns an empty list capped at limit entries.
func New(limit int) List {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return List{Items: []domain.Notification{}, Limit: limit}
}

// Add puts n at the front and drops the oldest entries beyond the limit.
func Add(l List, n domain.Notification) List {
	items := make([]domain.Notification, 0, len(l.Items)+1)
	items = append(items, n)
	items = append(items, l.Items...)
	if limit := l.limit(); len(items) > limit {
		items = items[:limit]
	}
	l.Items = items
	return l
}

// Remove drops the notification with the given id.
func Remove(l List, id string) List {
	l.Items = slices.DeleteFunc(slices.Clone(l.Items), func(n domain.Notification) bool {
		return n.ID == id
	})
	return l
}

// MarkRead flags the notification with the given id as read.
func MarkRead(l List, id string) List {
	items := slices.Clone(l.Items)
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
		}
	}
	l.Items = items
	return l
}

// MarkAllRead flags every notification as read.
func MarkAllRead(l List) List {
	items := slices.Clone(l.Items)
	for i := range items {
		items[i].Read = true
	}
	l.Items = items
	return l
}

// Clear empties the list and keeps its limit.
func Clear(l List) List {
	l.Items = []domain.Notification{}
	return l
}

// UnreadCount returns the number of notifications not yet read.
func (l List) UnreadCount() int {
	n := 0
	for _, item := range l.Items {
		if !item.Read {
			n++
		}
	}
	return n
}

// Find returns the notification with the given id.
func (l List) Find(id string) (domain.Notification, bool) {
	for _, item := range l.Items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.Notification{}, false
}

func (l List) limit() int {
	if l.Limit <= 0 {
		return DefaultLimit
	}
	return l.Limit
}
