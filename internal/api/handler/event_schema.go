package handler

import (
	"strings"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

// maxBatch bounds one POST /events/batch body.
const maxBatch = 500

type coordinates struct {
	Lat float64 `json:"lat" validate:"required,latitude"`
	Lng float64 `json:"lng" validate:"required,longitude"`
}

// statusEvent is one scanner, hub or driver report.
type statusEvent struct {
	TrackingNumber string       `json:"trackingNumber" validate:"required"`
	Status         string       `json:"status"         validate:"required,status"`
	Timestamp      time.Time    `json:"timestamp"      validate:"required"`
	Source         string       `json:"source"         validate:"required"`
	Location       *coordinates `json:"location"       validate:"omitempty"`
}

func (e statusEvent) input() ports.TrackingEventInput {
	in := ports.TrackingEventInput{
		TrackingNumber: strings.TrimSpace(e.TrackingNumber),
		Status:         e.Status,
		Timestamp:      e.Timestamp,
		Source:         e.Source,
	}
	if e.Location != nil {
		in.Location = &ports.LocationInput{Lat: e.Location.Lat, Lng: e.Location.Lng}
	}
	return in
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
