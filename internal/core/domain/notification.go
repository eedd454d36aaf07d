package domain

import "time"

const (
	LevelInfo     = "info"
	LevelSuccess  = "success"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelReminder = "reminder"
)

// ValidLevel reports whether level is a known notification level.
func ValidLevel(level string) bool {
	switch level {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError, LevelReminder:
		return true
	}
	return false
}

// Notification is a message for one user, or for everyone when UserID is nil.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// Broadcast reports whether the notification targets all users.
func (n *Notification) Broadcast() bool {
	return n.UserID == nil
}
