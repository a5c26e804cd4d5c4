package ports

import (
	"context"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

// CreateShipmentInput carries all data needed to create a new shipment.
type CreateShipmentInput struct {
	OwnerID         string
	SenderName      string
	SenderPhone     string
	ReceiverName    string
	ReceiverPhone   string
	PickupAddress   string
	DeliveryAddress string
	PackageType     string
	Weight          float64
	Price           int64
	Note            string
}

// ListShipmentsInput carries all parameters for the list endpoints.
type ListShipmentsInput struct {
	Role   string
	UserID string
	// Mine restricts the listing to the caller's shipments regardless of role.
	Mine   bool
	Status string
	Search string
}

// ShipmentService defines use-case operations for shipments.
type ShipmentService interface {
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*domain.Shipment, error)
	Track(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
	Route(ctx context.Context, trackingNumber string) (*tracking.Resolution, error)
	ListShipments(ctx context.Context, input ListShipmentsInput) ([]*domain.Shipment, error)
}
