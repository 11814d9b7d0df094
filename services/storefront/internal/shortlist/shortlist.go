// Package shortlist implements the comparison and favorites collections: an
// ordered set of listings, unique by id, optionally capped.
package shortlist

import (
	"fmt"
	"slices"

	apperrors "github.com/utafrali/FreshMarket/pkg/errors"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

// DefaultComparisonLimit is how many listings can be compared side by side.
const DefaultComparisonLimit = 4

// List is an ordered set of listings. A Limit of zero means unbounded.
type List struct {
	Items []domain.Listing `json:"items"`
	Limit int              `json:"limit,omitempty"`
}

// New returns an empty list holding at most limit listings.
func New(limit int) List {
	return List{Items: []domain.Listing{}, Limit: max(limit, 0)}
}

// FromItems rebuilds a list from persisted listings, dropping duplicates and
// anything past the limit.
func FromItems(items []domain.Listing, limit int) List {
	l := New(limit)
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		next, err := Add(l, item)
		if err != nil {
			break
		}
		l = next
	}
	return l
}

// Add appends listing. Adding a listing that is already present is a no-op.
// Adding to a full list fails with an invalid input error.
func Add(l List, listing domain.Listing) (List, error) {
	if l.Contains(listing.ID) {
		return l, nil
	}
	if l.Limit > 0 && len(l.Items) >= l.Limit {
		return l, apperrors.InvalidInput(fmt.Sprintf("at most %d listings can be compared at once", l.Limit))
	}
	items := make([]domain.Listing, 0, len(l.Items)+1)
	l.Items = append(append(items, l.Items...), listing)
	return l, nil
}

// Toggle removes listing when present and adds it otherwise.
func Toggle(l List, listing domain.Listing) (List, error) {
	if l.Contains(listing.ID) {
		return Remove(l, listing.ID), nil
	}
	return Add(l, listing)
}

// Remove drops the listing with the given id.
func Remove(l List, id string) List {
	l.Items = slices.DeleteFunc(slices.Clone(l.Items), func(item domain.Listing) bool {
		return item.ID == id
	})
	return l
}

// Clear empties the list and keeps its limit.
func Clear(l List) List {
	l.Items = []domain.Listing{}
	return l
}

// Contains reports whether a listing with the given id is present.
func (l List) Contains(id string) bool {
	return slices.ContainsFunc(l.Items, func(item domain.Listing) bool {
		return item.ID == id
	})
}
