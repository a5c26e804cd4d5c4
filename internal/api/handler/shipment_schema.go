package handler

import (
	"encoding/json"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

// messageResponse is the envelope for errors and plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

// createShipmentRequest mirrors the dashboard form. Weight and price arrive
// as form strings or JSON numbers and are checked textually.
type createShipmentRequest struct {
	SenderName      string      `json:"senderName"      validate:"required"`
	SenderPhone     string      `json:"senderPhone"     validate:"omitempty,digits,len=11"`
	ReceiverName    string      `json:"receiverName"    validate:"required"`
	ReceiverPhone   string      `json:"receiverPhone"   validate:"required,digits,len=11"`
	PickupAddress   string      `json:"pickupAddress"   validate:"required"`
	DeliveryAddress string      `json:"deliveryAddress" validate:"required"`
	PackageType     string      `json:"packageType"     validate:"required"`
	Weight          json.Number `json:"weight"          validate:"required,decimal"`
	Price           json.Number `json:"price"           validate:"required,integer"`
	Note            string      `json:"note"`
}

type shipmentResponse struct {
	Shipment *domain.Shipment `json:"shipment"`
}

type shipmentsResponse struct {
	Shipments []*domain.Shipment `json:"shipments"`
}

type routeResponse struct {
	*tracking.Resolution
	JourneyLabel string `json:"journeyLabel"`
	StatusLabel  string `json:"statusLabel"`
	StatusColor  string `json:"statusColor"`
}
