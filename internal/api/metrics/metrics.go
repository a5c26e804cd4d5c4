// Package metrics holds the tracker's Prometheus collectors. They register
// with the default registry on import and are served by /metrics next to
// the echo HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracker"

var factory = promauto.With(prometheus.DefaultRegisterer)

func counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}
}

func gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}
}

// Event pipeline.
var (
	// status is the normalised status, source the sender ("driver_app", "amqp").
	EventsProcessedTotal = factory.NewCounterVec(
		counter("events_processed_total", "Tracking events applied to a shipment."),
		[]string{"status", "source"},
	)
	// reason: invalid_transition, shipment_not_found or update_failed.
	EventsErrorsTotal = factory.NewCounterVec(
		counter("events_errors_total", "Tracking events rejected or failed."),
		[]string{"reason"},
	)
	// result: hit (skipped duplicate) or miss.
	EventsDedupTotal = factory.NewCounterVec(
		counter("events_dedup_total", "Idempotency lookups by result."),
		[]string{"result"},
	)
	EventsQueueDepth = factory.NewGaugeVec(
		gauge("events_queue_depth", "Events buffered per dispatcher worker."),
		[]string{"worker_id"},
	)
	// status is "error" for failed events.
	EventProcessingDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_processing_duration_seconds",
			Help:      "Time from dequeue to persisted status change.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"status"},
	)
)

// Shipments and public lookups.
var (
	// route: intracity when both ends resolve to one city, else intercity.
	ShipmentsCreatedTotal = factory.NewCounterVec(
		counter("shipments_created_total", "Shipments created by route kind."),
		[]string{"route"},
	)
	// result: found or not_found.
	TrackingLookupsTotal = factory.NewCounterVec(
		counter("tracking_lookups_total", "Public tracking lookups by result."),
		[]string{"result"},
	)
)

// Push channel.
var (
	NotificationsPushedTotal = factory.NewCounter(
		counter("notifications_pushed_total", "newNotification frames written to live sockets."),
	)
	WebsocketConnections = factory.NewGauge(
		gauge("websocket_connections", "Open push connections."),
	)
)
