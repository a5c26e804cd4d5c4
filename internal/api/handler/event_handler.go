package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

// EventDispatcher queues events for the worker pool. Both calls return
// immediately.
type EventDispatcher interface {
	Enqueue(event ports.TrackingEventInput)
	EnqueueBatch(events []ports.TrackingEventInput)
}

type EventHandler struct {
	queue EventDispatcher
}

func NewEventHandler(queue EventDispatcher) *EventHandler {
	return &EventHandler{queue: queue}
}

// Receive queues one status event.
//
// @Summary      Ingest a single tracking event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      statusEvent  true  "Tracking event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /events [post]
func (h *EventHandler) Receive(c echo.Context) error {
	var ev statusEvent
	if err := bindValid(c, &ev); err != nil {
		return err
	}
	h.queue.Enqueue(ev.input())
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// ReceiveBatch queues a batch in order. One invalid event rejects all of
// them.
//
// @Summary      Ingest a batch of tracking events
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []statusEvent  true  "Array of tracking events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /events/batch [post]
func (h *EventHandler) ReceiveBatch(c echo.Context) error {
	var batch []statusEvent
	if err := c.Bind(&batch); err != nil {
		return errInvalidPayload
	}
	switch {
	case len(batch) == 0:
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	case len(batch) > maxBatch:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("batch exceeds %d events", maxBatch))
	}

	inputs := make([]ports.TrackingEventInput, len(batch))
	for i := range batch {
		if err := c.Validate(&batch[i]); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("event[%d]: %v", i, err))
		}
		inputs[i] = batch[i].input()
	}

	h.queue.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "events accepted", Count: len(inputs)})
}
