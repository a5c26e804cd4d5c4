package domain

import (
	"errors"
	"strings"
)

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusInTransit ShipmentStatus = "in transit"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrUnknownStatus = errors.New("unknown shipment status")

// validTransitions defines the allowed state machine transitions.
// Delivered and cancelled are terminal.
var validTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusPending:   {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
}

// ParseStatus normalises s and reports whether it names a known status.
func ParseStatus(s string) (ShipmentStatus, error) {
	st := ShipmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Known() {
		return st, ErrUnknownStatus
	}
	return st, nil
}

// Known reports whether s is one of the four recognised statuses.
func (s ShipmentStatus) Known() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s ShipmentStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Step names of the four-stage progress timeline, in display order.
const (
	StepPending    = "Pending"
	StepProcessing = "Processing"
	StepInTransit  = "In Transit"
	StepDelivered  = "Delivered"
)

// StepNames lists the progress steps in display order.
var StepNames = [4]string{StepPending, StepProcessing, StepInTransit, StepDelivered}

// Presentation is everything a view needs to draw a status: badge label,
// colour, icon and which progress steps are highlighted.
type Presentation struct {
	Label       string
	Color       string
	Icon        string
	ActiveSteps [4]bool
}

// Presentation is the single mapping from status to its visual treatment.
// Unrecognised values fall back to a neutral badge with only the first step lit.
//
// Processing and In Transit share one activation condition; the backend has no
// intermediate status that would light Processing on its own.
func (s ShipmentStatus) Presentation() Presentation {
	switch s {
	case StatusPending:
		return Presentation{Label: string(s), Color: "yellow", Icon: "clock", ActiveSteps: [4]bool{true, false, false, false}}
	case StatusInTransit:
		return Presentation{Label: string(s), Color: "blue", Icon: "truck", ActiveSteps: [4]bool{true, true, true, false}}
	case StatusDelivered:
		return Presentation{Label: string(s), Color: "green", Icon: "check-circle", ActiveSteps: [4]bool{true, true, true, true}}
	case StatusCancelled:
		return Presentation{Label: string(s), Color: "red", Icon: "alert-circle", ActiveSteps: [4]bool{true, false, false, false}}
	default:
		label := string(s)
		if label == "" {
			label = "Processing"
		}
		return Presentation{Label: label, Color: "gray", Icon: "package", ActiveSteps: [4]bool{true, false, false, false}}
	}
}
