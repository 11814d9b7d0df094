package domain

import "time"

// Notification type constants.
const (
	NotificationTypeSuccess = "success"
	NotificationTypeError   = "error"
	NotificationTypeWarning = "warning"
	NotificationTypeInfo    = "info"
)

// Notification is a user-facing message. A Duration of zero means the
// notification stays until dismissed.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Duration  int       `json:"duration"`
	Redirect  string    `json:"redirect,omitempty"`
}

// ValidNotificationTypes returns the set of valid notification types.
func ValidNotificationTypes() []string {
	return []string{NotificationTypeSuccess, NotificationTypeError, NotificationTypeWarning, NotificationTypeInfo}
}

// IsValidNotificationType checks whether t is a valid notification type.
func IsValidNotificationType(t string) bool {
	for _, v := range ValidNotificationTypes() {
		if v == t {
			return true
		}
	}
	return false
}
