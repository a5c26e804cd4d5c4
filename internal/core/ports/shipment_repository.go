package ports

import (
	"context"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// ListShipmentsFilter carries all query parameters for listing shipments.
// OwnerID is always enforced by the service layer (RBAC).
type ListShipmentsFilter struct {
	OwnerID string // empty = no filter (admin); non-empty = scoped to owner
	Status  string // optional: exact status
	Search  string // optional: case-insensitive substring over the searchable fields
}

// ShipmentRepository defines persistence operations for shipments.
type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) error
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
	// List returns matching shipments, newest first.
	List(ctx context.Context, filter ListShipmentsFilter) ([]*domain.Shipment, error)
}
