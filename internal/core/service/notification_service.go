package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

// listLimit caps a full read of a user's notifications.
const listLimit = 100

type NotificationService struct {
	repo      ports.NotificationRepository
	publisher ports.NotificationPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewNotificationService(repo ports.NotificationRepository, publisher ports.NotificationPublisher, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Notify persists a notification for userID and pushes it to the user's room.
// A failed push is logged only: the notification is still returned by List.
func (s *NotificationService) Notify(ctx context.Context, userID, trackingNumber, message string) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:             uuid.NewString(),
		UserID:         userID,
		TrackingNumber: trackingNumber,
		Message:        message,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("store notification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Str("notification_id", n.ID).Msg("failed to push notification")
		}
	}

	s.log.Debug().Str("user_id", userID).Str("tracking_number", trackingNumber).Msg("notification created")
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListByUser(ctx, userID, listLimit)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrForbidden
	}
	return s.repo.MarkRead(ctx, userID, id)
}
