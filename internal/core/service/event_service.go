package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

// DedupChecker remembers which (tracking number, status, timestamp)
// triples were already applied.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, trackingNumber, status string, ts time.Time) (bool, error)
	Mark(ctx context.Context, trackingNumber, status string, ts time.Time) error
}

type eventService struct {
	shipments ports.ShipmentRepository
	events    ports.EventRepository
	dedup     DedupChecker
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
}

func NewEventService(
	shipments ports.ShipmentRepository,
	events ports.EventRepository,
	dedup DedupChecker,
	notifier Notifier,
	log zerolog.Logger,
) ports.EventService {
	return &eventService{
		shipments: shipments,
		events:    events,
		dedup:     dedup,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// Process applies one status event. Duplicates are dropped silently. The
// status write is a compare-and-set against the status read here, so a
// concurrent change surfaces as ErrInvalidTransition. Audit and owner
// notification failures are logged only.
func (s *eventService) Process(ctx context.Context, in ports.TrackingEventInput) error {
	next, err := domain.ParseStatus(in.Status)
	if err != nil {
		return fmt.Errorf("process event: %w (%q)", domain.ErrInvalidTransition, in.Status)
	}
	log := s.log.With().Str("tracking_number", in.TrackingNumber).Str("status", string(next)).Logger()

	if s.seen(ctx, log, in, next) {
		return nil
	}

	shipment, err := s.shipments.FindByTrackingNumber(ctx, in.TrackingNumber)
	if err != nil {
		return fmt.Errorf("process event: %w", err)
	}
	current := shipment.Status
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("process event: %w (from %s to %s)", domain.ErrInvalidTransition, current, next)
	}

	// Marked before the write so a redelivery during the write is skipped.
	if err := s.dedup.Mark(ctx, in.TrackingNumber, string(next), in.Timestamp); err != nil {
		log.Warn().Err(err).Msg("failed to set dedup key")
	}
	if err := s.events.UpdateShipmentStatus(ctx, in.TrackingNumber, current, next, in.Timestamp, in.Source); err != nil {
		return fmt.Errorf("process event: update status: %w", err)
	}

	s.audit(ctx, log, in, next)
	s.tellOwner(ctx, log, shipment.OwnerID, in.TrackingNumber, next)

	log.Info().Str("source", in.Source).Str("from", string(current)).Msg("event processed")
	return nil
}

// seen reports a duplicate. A failing dedup store lets the event through.
func (s *eventService) seen(ctx context.Context, log zerolog.Logger, in ports.TrackingEventInput, status domain.ShipmentStatus) bool {
	dup, err := s.dedup.IsDuplicate(ctx, in.TrackingNumber, string(status), in.Timestamp)
	if err != nil {
		log.Warn().Err(err).Msg("dedup check failed, processing anyway")
		return false
	}
	if dup {
		log.Debug().Msg("duplicate event skipped")
	}
	return dup
}

func (s *eventService) audit(ctx context.Context, log zerolog.Logger, in ports.TrackingEventInput, status domain.ShipmentStatus) {
	ev := &domain.TrackingEvent{
		TrackingNumber: in.TrackingNumber,
		Status:         status,
		Timestamp:      in.Timestamp.UTC(),
		Source:         in.Source,
		Location:       in.Point(),
		ProcessedAt:    s.now().UTC(),
	}
	if err := s.events.InsertEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Msg("failed to insert audit event")
	}
}

func (s *eventService) tellOwner(ctx context.Context, log zerolog.Logger, ownerID, trackingNumber string, status domain.ShipmentStatus) {
	if s.notifier == nil || ownerID == "" {
		return
	}
	msg := fmt.Sprintf("Shipment %s is now %s", trackingNumber, status)
	if _, err := s.notifier.Notify(ctx, ownerID, trackingNumber, msg); err != nil {
		log.Warn().Err(err).Msg("failed to notify owner")
	}
}
