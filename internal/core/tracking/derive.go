// Package tracking classifies a shipment's status into map positions and
// progress-step highlighting. It never enacts transitions; it only reads the
// status the backend reports.
package tracking

import (
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/geo"
)

// EnRoute labels the computed in-transit position.
const EnRoute = "En Route"

// Location is a resolved GeoPoint together with the address it came from.
type Location struct {
	domain.GeoPoint
	Address string `json:"address"`
}

// Step is one entry of the progress timeline.
type Step struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Resolution is the complete derived tracking state for one shipment.
type Resolution struct {
	Status       domain.ShipmentStatus `json:"status"`
	Pickup       Location              `json:"pickup"`
	Delivery     Location              `json:"delivery"`
	Current      *domain.GeoPoint      `json:"current,omitempty"`
	MapCenter    domain.GeoPoint       `json:"mapCenter"`
	Steps        [4]Step               `json:"steps"`
	Presentation domain.Presentation   `json:"-"`
}

// Derive computes pickup, delivery, current position, map centre and progress
// steps from a shipment. It is a pure function of the shipment's addresses and
// status.
func Derive(s domain.Shipment) Resolution {
	pickup := geo.Resolve(s.PickupAddress)
	delivery := geo.Resolve(s.DeliveryAddress)
	center := geo.Midpoint(pickup, delivery, "")
	pres := s.Status.Presentation()

	return Resolution{
		Status:       s.Status,
		Pickup:       Location{GeoPoint: pickup, Address: s.PickupAddress},
		Delivery:     Location{GeoPoint: delivery, Address: s.DeliveryAddress},
		Current:      current(s.Status, pickup, delivery),
		MapCenter:    center,
		Steps:        steps(pres),
		Presentation: pres,
	}
}

func current(status domain.ShipmentStatus, pickup, delivery domain.GeoPoint) *domain.GeoPoint {
	var p domain.GeoPoint
	switch status {
	case domain.StatusPending:
		p = pickup
	case domain.StatusInTransit:
		p = geo.Midpoint(pickup, delivery, EnRoute)
	case domain.StatusDelivered:
		p = delivery
	default:
		return nil
	}
	return &p
}

func steps(p domain.Presentation) [4]Step {
	var out [4]Step
	for i, name := range domain.StepNames {
		out[i] = Step{
			ID:     stepIDs[i],
			Label:  name,
			Active: p.ActiveSteps[i],
		}
	}
	return out
}

var stepIDs = [4]string{"step-1", "step-2", "step-3", "step-4"}

// InTransit reports whether the pulsing current-position marker should be drawn.
func (r Resolution) InTransit() bool {
	return r.Status == domain.StatusInTransit && r.Current != nil
}

// JourneyLabel is the one-line summary shown above a route drawing.
func (r Resolution) JourneyLabel() string {
	if r.Status == domain.StatusDelivered {
		return "Journey Complete"
	}
	return "In Progress"
}

// ActiveLabels returns the labels of highlighted steps, in order.
func (r Resolution) ActiveLabels() []string {
	var out []string
	for _, st := range r.Steps {
		if st.Active {
			out = append(out, st.Label)
		}
	}
	return out
}
