package ports

import (
	"context"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// EventRepository handles event persistence and atomic shipment status updates.
type EventRepository interface {
	// UpdateShipmentStatus atomically sets the shipment's new status only if it
	// is still in status from, bumps updated_at and appends a history entry.
	// The source string is stored as the entry notes. It returns
	// domain.ErrInvalidTransition when the shipment moved on concurrently.
	UpdateShipmentStatus(
		ctx context.Context,
		trackingNumber string,
		from, to domain.ShipmentStatus,
		ts time.Time,
		source string,
	) error

	// InsertEvent persists an event to the status_events audit collection.
	InsertEvent(ctx context.Context, event *domain.TrackingEvent) error
}
