package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

const collectionShipments = "shipments"

// searchFields are matched by a free-text list search.
var searchFields = []string{
	"receiver_name",
	"tracking_number",
	"receiver_phone",
	"delivery_address",
	"status",
	"sender_name",
	"sender_phone",
}

var shipmentIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "tracking_number", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("tracking_number_unique"),
	},
	{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("owner_newest"),
	},
	{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("status"),
	},
}

type ShipmentRepository struct {
	shipments *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{shipments: db.Collection(collectionShipments)}
}

// Create assigns an id when s has none. A reused tracking number is
// ErrDuplicateShipment.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.shipments.InsertOne(ctx, s)
	switch {
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicateShipment
	case err != nil:
		return fmt.Errorf("insert shipment %s: %w", s.TrackingNumber, err)
	}
	return nil
}

func (r *ShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	s := new(domain.Shipment)
	err := r.shipments.FindOne(ctx, bson.D{{Key: "tracking_number", Value: trackingNumber}}).Decode(s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find shipment %s: %w", trackingNumber, err)
	}
	return s, nil
}

// List returns the matching shipments, newest first.
func (r *ShipmentRepository) List(ctx context.Context, f ports.ListShipmentsFilter) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.shipments.Find(ctx, listQuery(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	out := []*domain.Shipment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode shipments: %w", err)
	}
	return out, nil
}

// listQuery builds the find filter. A search term is escaped and matched
// case-insensitively against every searchFields entry.
func listQuery(f ports.ListShipmentsFilter) bson.M {
	q := bson.M{}
	if f.OwnerID != "" {
		q["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Search == "" {
		return q
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	or := make(bson.A, len(searchFields))
	for i, field := range searchFields {
		or[i] = bson.M{field: rx}
	}
	q["$or"] = or
	return q
}

func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.shipments.Indexes().CreateMany(ctx, shipmentIndexes); err != nil {
		return fmt.Errorf("shipment indexes: %w", err)
	}
	return nil
}
