// Package amqp consumes tracking events published to a RabbitMQ topic
// exchange and hands them to the same dispatcher the HTTP ingress uses.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

const (
	DefaultExchange   = "shipment.events"
	DefaultQueue      = "tracker.status-events"
	DefaultRoutingKey = "shipment.status.*"

	routingPrefix = "shipment.status."
)

var errMissingTrackingNumber = errors.New("missing tracking number")

// Enqueuer is satisfied by the sharded event dispatcher.
type Enqueuer interface {
	Enqueue(event ports.TrackingEventInput)
}

type Config struct {
	URL        string
	Exchange   string
	Queue      string
	RetryDelay time.Duration
}

// Consumer binds a durable queue to the exchange and forwards every message.
type Consumer struct {
	cfg  Config
	sink Enqueuer
	log  zerolog.Logger
}

func NewConsumer(cfg Config, sink Enqueuer, log zerolog.Logger) *Consumer {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Consumer{cfg: cfg, sink: sink, log: log}
}

// Run consumes until ctx is cancelled, reconnecting after connection loss.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consumeOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn().Err(err).Dur("retry_in", c.cfg.RetryDelay).Msg("amqp consumer disconnected")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.RetryDelay):
		}
	}
}

func (c *Consumer) consumeOnce(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, DefaultRoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "shipment-tracker", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	c.log.Info().Str("exchange", c.cfg.Exchange).Str("queue", q.Name).Msg("amqp consumer started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(d)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery) {
	in, err := decodeEvent(d.Body, d.RoutingKey, d.Timestamp)
	if err != nil {
		c.log.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("dropping malformed tracking event")
		_ = d.Nack(false, false)
		return
	}
	c.sink.Enqueue(in)
	_ = d.Ack(false)
}

type message struct {
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	Location       *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

// decodeEvent reads a message body. A missing status falls back to the
// routing key suffix (shipment.status.in_transit) and a missing timestamp to
// the AMQP publish time.
func decodeEvent(body []byte, routingKey string, published time.Time) (ports.TrackingEventInput, error) {
	var m message
	if err := json.Unmarshal(body, &m); err != nil {
		return ports.TrackingEventInput{}, fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(m.TrackingNumber) == "" {
		return ports.TrackingEventInput{}, errMissingTrackingNumber
	}

	status := m.Status
	if status == "" {
		status = strings.ReplaceAll(strings.TrimPrefix(routingKey, routingPrefix), "_", " ")
	}
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return ports.TrackingEventInput{}, err
	}

	ts := m.Timestamp
	if ts.IsZero() {
		ts = published
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	src := m.Source
	if src == "" {
		src = domain.SourceAMQP
	}

	in := ports.TrackingEventInput{
		TrackingNumber: strings.TrimSpace(m.TrackingNumber),
		Status:         string(parsed),
		Timestamp:      ts,
		Source:         src,
	}
	if m.Location != nil {
		in.Location = &ports.LocationInput{Lat: m.Location.Lat, Lng: m.Location.Lng}
	}
	return in, nil
}
