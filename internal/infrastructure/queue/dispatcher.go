// Package queue fans tracking events out to a fixed pool of workers. Events
// for one tracking number always land on the same worker, so they apply in
// arrival order.
package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/api/metrics"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

const (
	defaultWorkers = 8
	shardBuffer    = 256
)

type shard struct {
	label  string
	events chan ports.TrackingEventInput
}

func (s *shard) reportDepth() {
	metrics.EventsQueueDepth.WithLabelValues(s.label).Set(float64(len(s.events)))
}

type Dispatcher struct {
	shards  []*shard
	service ports.EventService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher builds a pool of workers; workers <= 0 means defaultWorkers.
func NewDispatcher(workers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	d := &Dispatcher{service: service, log: log}
	for i := 0; i < workers; i++ {
		d.shards = append(d.shards, &shard{
			label:  strconv.Itoa(i),
			events: make(chan ports.TrackingEventInput, shardBuffer),
		})
	}
	return d
}

// Start runs one goroutine per shard until ctx ends.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, s := range d.shards {
		d.wg.Add(1)
		go func(s *shard) {
			defer d.wg.Done()
			d.drain(ctx, s)
		}(s)
	}
}

// Wait blocks until every worker started by Start has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue hands the event to its shard. It blocks only when that shard's
// buffer is full.
func (d *Dispatcher) Enqueue(event ports.TrackingEventInput) {
	s := d.shards[d.shardIndex(event.TrackingNumber)]
	s.events <- event
	s.reportDepth()
}

// EnqueueBatch enqueues in slice order.
func (d *Dispatcher) EnqueueBatch(events []ports.TrackingEventInput) {
	for i := range events {
		d.Enqueue(events[i])
	}
}

func (d *Dispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) drain(ctx context.Context, s *shard) {
	log := d.log.With().Str("worker_id", s.label).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.reportDepth()
			d.apply(ctx, log, ev)
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, log zerolog.Logger, ev ports.TrackingEventInput) {
	began := time.Now()
	err := d.service.Process(ctx, ev)
	elapsed := time.Since(began).Seconds()

	if err != nil {
		metrics.EventProcessingDuration.WithLabelValues("error").Observe(elapsed)
		metrics.EventsErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		log.Error().Err(err).Str("tracking_number", ev.TrackingNumber).Msg("event processing failed")
		return
	}
	metrics.EventProcessingDuration.WithLabelValues(ev.Status).Observe(elapsed)
	metrics.EventsProcessedTotal.WithLabelValues(ev.Status, ev.Source).Inc()
}

func errorReason(err error) string {
	if errors.Is(err, domain.ErrInvalidTransition) {
		return "invalid_transition"
	}
	if errors.Is(err, domain.ErrShipmentNotFound) {
		return "shipment_not_found"
	}
	return "update_failed"
}
