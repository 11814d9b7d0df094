package notification

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

func note(id string) domain.Notification {
	return domain.Notification{ID: id, Type: domain.NotificationTypeInfo, Title: "t", Message: "m"}
}

func TestNew_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, New(0).Limit)
	assert.Equal(t, 3, New(3).Limit)
	assert.NotNil(t, New(3).Items)
}

func TestAdd_NewestFirst(t *testing.T) {
	l := Add(Add(New(10), note("a")), note("b"))

	require.Len(t, l.Items, 2)
	assert.Equal(t, "b", l.Items[0].ID)
	assert.Equal(t, "a", l.Items[1].ID)
}

func TestAdd_DropsOldestBeyondLimit(t *testing.T) {
	l := New(3)
	for i := range 5 {
		l = Add(l, note(fmt.Sprintf("n%d", i)))
	}

	require.Len(t, l.Items, 3)
	assert.Equal(t, "n4", l.Items[0].ID)
	assert.Equal(t, "n2", l.Items[2].ID)
}

func TestAdd_ZeroValueListUsesDefaultLimit(t *testing.T) {
	var l List
	for i := range DefaultLimit + 5 {
		l = Add(l, note(fmt.Sprintf("n%d", i)))
	}
	assert.Len(t, l.Items, DefaultLimit)
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	base := Add(New(2), note("a"))
	_ = Add(base, note("b"))

	require.Len(t, base.Items, 1)
	assert.Equal(t, "a", base.Items[0].ID)
}

func TestRemove(t *testing.T) {
	l := Add(Add(New(10), note("a")), note("b"))

	l = Remove(l, "a")

	require.Len(t, l.Items, 1)
	assert.Equal(t, "b", l.Items[0].ID)

	l = Remove(l, "missing")
	assert.Len(t, l.Items, 1)
}

func TestMarkRead_UnreadCountIsDerived(t *testing.T) {
	l := Add(Add(Add(New(10), note("a")), note("b")), note("c"))
	assert.Equal(t, 3, l.UnreadCount())

	l = MarkRead(l, "b")
	assert.Equal(t, 2, l.UnreadCount())

	n, ok := l.Find("b")
	require.True(t, ok)
	assert.True(t, n.Read)

	l = MarkRead(l, "b")
	assert.Equal(t, 2, l.UnreadCount())

	l = Remove(l, "a")
	assert.Equal(t, 1, l.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	base := Add(Add(New(10), note("a")), note("b"))

	l := MarkAllRead(base)

	assert.Zero(t, l.UnreadCount())
	assert.Equal(t, 2, base.UnreadCount(), "input list must be untouched")
}

func TestClear(t *testing.T) {
	l := Clear(Add(New(7), note("a")))

	assert.Empty(t, l.Items)
	assert.Equal(t, 7, l.Limit)
	assert.Zero(t, l.UnreadCount())

	_, ok := l.Find("a")
	assert.False(t, ok)
}
