package service

import (
	"context"
	"time"

	"github.com/agriconnect/platform/internal/api/metrics"
	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
)

// NotificationService validates and stores notifications through the facade.
type NotificationService struct {
	db ports.StatementExecutor
}

func NewNotificationService(db ports.StatementExecutor) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Publish(ctx context.Context, input ports.NotificationInput) (*domain.Notification, error) {
	if input.Title == "" || input.Message == "" {
		metrics.NotificationsErrorsTotal.WithLabelValues("empty_fields").Inc()
		return nil, domain.ErrInvalidNotification
	}
	level := input.Level
	if level == "" {
		level = domain.LevelInfo
	}
	if !domain.ValidLevel(level) {
		metrics.NotificationsErrorsTotal.WithLabelValues("invalid_level").Inc()
		return nil, domain.ErrInvalidLevel
	}

	var userID any
	if input.UserID != nil {
		userID = *input.UserID
	}
	res, err := s.db.Run(ctx,
		`INSERT INTO notifications (user_id, title, message, level) VALUES (?, ?, ?, ?)`,
		[]any{userID, input.Title, input.Message, level})
	if err != nil {
		metrics.NotificationsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return nil, err
	}

	id := res.LastInsertID
	if id == 0 {
		id = s.lastInsertedID(ctx, input.UserID, input.Title)
	}

	metrics.NotificationsPublishedTotal.WithLabelValues(level).Inc()
	return &domain.Notification{
		ID:        id,
		UserID:    input.UserID,
		Title:     input.Title,
		Message:   input.Message,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// lastInsertedID reads back the id of the newest matching row for backends
// that do not report insert ids (postgres).
func (s *NotificationService) lastInsertedID(ctx context.Context, userID *int64, title string) int64 {
	var (
		rows []ports.Row
		err  error
	)
	if userID != nil {
		rows, err = s.db.Query(ctx,
			`SELECT id FROM notifications WHERE user_id = ? AND title = ? ORDER BY id DESC LIMIT 1`,
			[]any{*userID, title})
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT id FROM notifications WHERE user_id IS NULL AND title = ? ORDER BY id DESC LIMIT 1`,
			[]any{title})
	}
	if err != nil || len(rows) == 0 {
		return 0
	}
	switch v := rows[0]["id"].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
