package ports

import (
	"context"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	// ListByUser returns the user's notifications, newest first, at most limit
	// entries (limit <= 0 means no cap).
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// NotificationPublisher fans a stored notification out to live connections.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}
