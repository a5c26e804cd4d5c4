package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

// collectionEvents is the append-only audit trail of applied events.
const collectionEvents = "status_events"

type EventRepository struct {
	shipments *mongo.Collection
	audit     *mongo.Collection
}

func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{
		shipments: db.Collection(collectionShipments),
		audit:     db.Collection(collectionEvents),
	}
}

// statusUpdate builds the $set/$push pair for a transition. The event
// source lands in the history entry notes.
func statusUpdate(to domain.ShipmentStatus, ts time.Time, source string, now time.Time) bson.D {
	entry := domain.StatusHistoryEntry{Status: to, Timestamp: ts.UTC(), Notes: source}
	return bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: to},
			{Key: "updated_at", Value: now.UTC()},
		}},
		{Key: "$push", Value: bson.D{{Key: "status_history", Value: entry}}},
	}
}

// UpdateShipmentStatus filters on the expected current status, making the
// write a compare-and-set. No match means the shipment moved on.
func (r *EventRepository) UpdateShipmentStatus(
	ctx context.Context,
	trackingNumber string,
	from, to domain.ShipmentStatus,
	ts time.Time,
	source string,
) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.D{
		{Key: "tracking_number", Value: trackingNumber},
		{Key: "status", Value: from},
	}
	res, err := r.shipments.UpdateOne(ctx, filter, statusUpdate(to, ts, source, time.Now()))
	if err != nil {
		return fmt.Errorf("update status %s: %w", trackingNumber, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.TrackingEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now().UTC()
	}
	if _, err := r.audit.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event %s: %w", event.TrackingNumber, err)
	}
	return nil
}
