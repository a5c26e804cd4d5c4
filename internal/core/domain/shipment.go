package domain

import (
	"errors"
	"time"
)

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrDuplicateShipment = errors.New("shipment already exists")
var ErrForbidden = errors.New("access forbidden")

// StatusHistoryEntry records a single status transition on a shipment.
type StatusHistoryEntry struct {
	Status    ShipmentStatus `json:"status" bson:"status"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
	Notes     string         `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Shipment is the core aggregate root. Addresses are free text; map positions
// are derived from them on read and never stored.
type Shipment struct {
	ID                string               `json:"id,omitempty" bson:"_id,omitempty"`
	TrackingNumber    string               `json:"trackingNumber" bson:"tracking_number"`
	Status            ShipmentStatus       `json:"status" bson:"status"`
	PickupAddress     string               `json:"pickupAddress" bson:"pickup_address"`
	DeliveryAddress   string               `json:"deliveryAddress" bson:"delivery_address"`
	SenderName        string               `json:"senderName" bson:"sender_name"`
	SenderPhone       string               `json:"senderPhone,omitempty" bson:"sender_phone,omitempty"`
	ReceiverName      string               `json:"receiverName" bson:"receiver_name"`
	ReceiverPhone     string               `json:"receiverPhone" bson:"receiver_phone"`
	PackageType       string               `json:"packageType" bson:"package_type"`
	Weight            float64              `json:"weight" bson:"weight"`
	Price             int64                `json:"price" bson:"price"`
	Note              string               `json:"note,omitempty" bson:"note,omitempty"`
	OwnerID           string               `json:"ownerId,omitempty" bson:"owner_id"`
	CreatedAt         time.Time            `json:"createdAt" bson:"created_at"`
	EstimatedDelivery time.Time            `json:"estimatedDelivery" bson:"estimated_delivery"`
	UpdatedAt         time.Time            `json:"updatedAt" bson:"updated_at"`
	StatusHistory     []StatusHistoryEntry `json:"statusHistory,omitempty" bson:"status_history"`
}
