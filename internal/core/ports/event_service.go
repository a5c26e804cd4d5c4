package ports

import (
	"context"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// LocationInput is where the reporter was when it saw the status change.
type LocationInput struct {
	Lat float64
	Lng float64
}

// TrackingEventInput is a status report from any ingress (HTTP or AMQP).
// Status is free text and is normalised by the service.
type TrackingEventInput struct {
	TrackingNumber string
	Status         string
	Timestamp      time.Time
	Source         string
	Location       *LocationInput
}

// Point converts the optional location into a map position.
func (in TrackingEventInput) Point() *domain.GeoPoint {
	if in.Location == nil {
		return nil
	}
	return &domain.GeoPoint{Lat: in.Location.Lat, Lng: in.Location.Lng}
}

// EventService applies status reports to shipments.
type EventService interface {
	Process(ctx context.Context, event TrackingEventInput) error
}
