package amqp

import (
	"errors"
	"testing"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

func TestDecodeEvent(t *testing.T) {
	published := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		body       string
		routingKey string
		wantStatus string
		wantSource string
		wantErr    error
	}{
		{
			name:       "status in body",
			body:       `{"trackingNumber":"LX-1001","status":"In Transit","source":"hub_scanner"}`,
			routingKey: "shipment.status.in_transit",
			wantStatus: "in transit",
			wantSource: "hub_scanner",
		},
		{
			name:       "status from routing key",
			body:       `{"trackingNumber":"LX-1001"}`,
			routingKey: "shipment.status.delivered",
			wantStatus: "delivered",
			wantSource: "amqp",
		},
		{
			name:       "underscored routing key",
			body:       `{"trackingNumber":"LX-1001"}`,
			routingKey: "shipment.status.in_transit",
			wantStatus: "in transit",
			wantSource: "amqp",
		},
		{
			name:       "unknown status",
			body:       `{"trackingNumber":"LX-1001","status":"lost"}`,
			routingKey: "shipment.status.lost",
			wantErr:    domain.ErrUnknownStatus,
		},
		{
			name:    "missing tracking number",
			body:    `{"status":"delivered"}`,
			wantErr: errMissingTrackingNumber,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := decodeEvent([]byte(tc.body), tc.routingKey, published)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Status != tc.wantStatus || in.Source != tc.wantSource {
				t.Errorf("got status %q source %q", in.Status, in.Source)
			}
			if !in.Timestamp.Equal(published) {
				t.Errorf("expected publish time fallback, got %v", in.Timestamp)
			}
		})
	}
}

func TestDecodeEvent_MalformedJSON(t *testing.T) {
	if _, err := decodeEvent([]byte("{"), "shipment.status.delivered", time.Time{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeEvent_Location(t *testing.T) {
	in, err := decodeEvent([]byte(`{"trackingNumber":"LX-1","status":"pending","location":{"lat":6.5,"lng":3.4}}`), "", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if in.Location == nil || in.Location.Lat != 6.5 || in.Location.Lng != 3.4 {
		t.Errorf("unexpected location %+v", in.Location)
	}
	if in.Timestamp.IsZero() {
		t.Error("timestamp must default to now")
	}
}
