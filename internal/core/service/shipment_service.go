package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/geo"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

// Notifier abstracts the notification fan-out so shipment and event
// services can tell owners about changes.
type Notifier interface {
	Notify(ctx context.Context, userID, trackingNumber, message string) (*domain.Notification, error)
}

type ShipmentService struct {
	repo     ports.ShipmentRepository
	notifier Notifier
	logger   zerolog.Logger
}

func NewShipmentService(repo ports.ShipmentRepository, notifier Notifier, logger zerolog.Logger) *ShipmentService {
	return &ShipmentService{repo: repo, notifier: notifier, logger: logger}
}

// CreateShipment stores a new pending shipment and notifies its owner.
// Notification failures are logged, never returned.
func (s *ShipmentService) CreateShipment(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
	now := time.Now().UTC()
	shipment := &domain.Shipment{
		TrackingNumber:    generateTrackingNumber(),
		Status:            domain.StatusPending,
		PickupAddress:     strings.TrimSpace(input.PickupAddress),
		DeliveryAddress:   strings.TrimSpace(input.DeliveryAddress),
		SenderName:        strings.TrimSpace(input.SenderName),
		SenderPhone:       input.SenderPhone,
		ReceiverName:      strings.TrimSpace(input.ReceiverName),
		ReceiverPhone:     input.ReceiverPhone,
		PackageType:       input.PackageType,
		Weight:            input.Weight,
		Price:             input.Price,
		Note:              input.Note,
		OwnerID:           input.OwnerID,
		CreatedAt:         now,
		UpdatedAt:         now,
		EstimatedDelivery: estimatedDelivery(input.PickupAddress, input.DeliveryAddress, now),
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusPending, Timestamp: now},
		},
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Msg("failed to create shipment")
		return nil, err
	}

	s.logger.Info().Str("tracking_number", shipment.TrackingNumber).Str("owner_id", input.OwnerID).Msg("shipment created")

	if s.notifier != nil && input.OwnerID != "" {
		msg := fmt.Sprintf("Shipment %s to %s has been created", shipment.TrackingNumber, shipment.ReceiverName)
		if _, err := s.notifier.Notify(ctx, input.OwnerID, shipment.TrackingNumber, msg); err != nil {
			s.logger.Warn().Err(err).Str("tracking_number", shipment.TrackingNumber).Msg("failed to notify owner")
		}
	}

	return shipment, nil
}

// Track looks a shipment up by tracking number. It needs no authentication.
func (s *ShipmentService) Track(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, domain.ErrShipmentNotFound
	}
	return s.repo.FindByTrackingNumber(ctx, trackingNumber)
}

// Route resolves the shipment's map positions and progress steps.
func (s *ShipmentService) Route(ctx context.Context, trackingNumber string) (*tracking.Resolution, error) {
	shipment, err := s.Track(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	r := tracking.Derive(*shipment)
	return &r, nil
}

// ListShipments applies RBAC: admins see everything unless they ask for their
// own shipments, users only ever see their own.
func (s *ShipmentService) ListShipments(ctx context.Context, input ports.ListShipmentsInput) ([]*domain.Shipment, error) {
	filter := ports.ListShipmentsFilter{
		Status: input.Status,
		Search: strings.TrimSpace(input.Search),
	}
	if input.Mine || input.Role != domain.RoleAdmin {
		if input.UserID == "" {
			return nil, domain.ErrForbidden
		}
		filter.OwnerID = input.UserID
	}
	if filter.Status == "all" {
		filter.Status = ""
	}

	return s.repo.List(ctx, filter)
}

// generateTrackingNumber returns a unique tracking number in the format LX-XXXXXXXX.
func generateTrackingNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("LX-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("LX-%08X", b)
}

// estimatedDelivery is next day 18:00 UTC within one city, otherwise three days.
func estimatedDelivery(pickup, delivery string, from time.Time) time.Time {
	base := time.Date(from.Year(), from.Month(), from.Day(), 18, 0, 0, 0, time.UTC)
	if geo.SameCity(pickup, delivery) {
		return base.AddDate(0, 0, 1)
	}
	return base.AddDate(0, 0, 3)
}
