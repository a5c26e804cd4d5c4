package ports

import (
	"context"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// NotificationService stores notifications and pushes them to the owner's room.
type NotificationService interface {
	Notify(ctx context.Context, userID, trackingNumber, message string) (*domain.Notification, error)
	List(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}
