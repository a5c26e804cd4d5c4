package domain

import "time"

// SourceAMQP marks events that arrived over the message bus without a source.
const SourceAMQP = "amqp"

// TrackingEvent is one entry of the status_events audit trail: a status report
// as it was received, recorded after it was applied to the shipment.
type TrackingEvent struct {
	TrackingNumber string         `json:"trackingNumber" bson:"tracking_number"`
	Status         ShipmentStatus `json:"status" bson:"status"`
	Timestamp      time.Time      `json:"timestamp" bson:"timestamp"`
	Source         string         `json:"source" bson:"source"`
	Location       *GeoPoint      `json:"location,omitempty" bson:"location,omitempty"`
	ProcessedAt    time.Time      `json:"processedAt" bson:"processed_at"`
}
