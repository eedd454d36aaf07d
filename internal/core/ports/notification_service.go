package ports

import (
	"context"

	"github.com/agriconnect/platform/internal/core/domain"
)

// NotificationInput carries a notification to be stored and delivered.
// A nil UserID means broadcast to all users.
type NotificationInput struct {
	UserID  *int64
	Title   string
	Message string
	Level   string
}

// NotificationService validates and persists notifications.
type NotificationService interface {
	Publish(ctx context.Context, input NotificationInput) (*domain.Notification, error)
}
