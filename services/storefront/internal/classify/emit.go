package classify

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

// Display durations in milliseconds. Zero keeps a notification until it is
// dismissed.
const (
	DurationPersistent = 0
	DurationShort      = 4000
	DurationMedium     = 5000
	DurationServer     = 6000
	DurationAlert      = 6000
	DurationLong       = 8000
)

// LoginPath is where an auth failure sends the user.
const LoginPath = "/login"

// Context describes the operation whose failure is being reported.
type Context struct {
	// Title overrides the default title for the error kind.
	Title string
}

// Emitter builds notifications with fresh ids and timestamps.
type Emitter struct {
	now   func() time.Time
	newID func() string
}

// NewEmitter creates an Emitter. Nil arguments select the wall clock and
// random UUIDs.
func NewEmitter(now func() time.Time, newID func() string) *Emitter {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Emitter{now: now, newID: newID}
}

// Emit turns a classified error into a notification. Every kind maps to an
// error notification except a 404, which is informational. Auth failures stay
// on screen and carry a redirect to the login page.
func (e *Emitter) Emit(rec domain.ErrorRecord, ctx Context) domain.Notification {
	typ, title, duration := domain.NotificationTypeError, "Something went wrong", DurationMedium
	redirect := ""

	switch rec.Kind {
	case domain.ErrorKindAuth:
		title, duration, redirect = "Session expired", DurationPersistent, LoginPath
	case domain.ErrorKindPermission:
		title, duration = "Access denied", DurationLong
	case domain.ErrorKindNetwork:
		title, duration = "Connection problem", DurationLong
	case domain.ErrorKindValidation:
		title = "Please check your input"
	case domain.ErrorKindServer:
		title, duration = "Server error", DurationServer
	case domain.ErrorKindUnknown:
		if rec.Status == http.StatusNotFound {
			typ, title, duration = domain.NotificationTypeInfo, "Not found", DurationShort
		}
	}

	if ctx.Title != "" {
		title = ctx.Title
	}

	n := e.Notify(typ, title, rec.Message)
	n.Duration = duration
	n.Redirect = redirect
	return n
}

// Notify builds a notification of the given type with its default duration.
func (e *Emitter) Notify(typ, title, message string) domain.Notification {
	duration := DurationMedium
	switch typ {
	case domain.NotificationTypeSuccess, domain.NotificationTypeInfo:
		duration = DurationShort
	case domain.NotificationTypeError, domain.NotificationTypeWarning:
		duration = DurationAlert
	}

	return domain.Notification{
		ID:        e.newID(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: e.now(),
		Duration:  duration,
	}
}
