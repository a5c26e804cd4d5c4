package domain

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is a message addressed to a single user, pushed live to the
// user's room and kept for later full reads.
type Notification struct {
	ID             string    `json:"id" bson:"_id"`
	UserID         string    `json:"userId" bson:"user_id"`
	TrackingNumber string    `json:"trackingNumber,omitempty" bson:"tracking_number,omitempty"`
	Message        string    `json:"message" bson:"message"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	Read           bool      `json:"read" bson:"read"`
}
