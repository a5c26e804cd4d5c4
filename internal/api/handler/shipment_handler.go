package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/naijalogix/shipment-tracker/internal/api/metrics"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/geo"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Create handles POST /shipments.
//
// @Summary      Create a new shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  shipmentResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createShipmentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	in, err := toCreateInput(req, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	shipment, err := h.service.CreateShipment(c.Request().Context(), in)
	if err != nil {
		return err
	}

	route := "intercity"
	if geo.SameCity(shipment.PickupAddress, shipment.DeliveryAddress) {
		route = "intracity"
	}
	metrics.ShipmentsCreatedTotal.WithLabelValues(route).Inc()

	return c.JSON(http.StatusCreated, shipmentResponse{Shipment: shipment})
}

// List handles GET /shipments (admin).
//
// @Summary      List all shipments
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Free-text search"
// @Param        status  query     string  false  "Status filter, or all"
// @Success      200     {object}  shipmentsResponse
// @Failure      401     {object}  messageResponse
// @Failure      403     {object}  messageResponse
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	return h.list(c, false)
}

// Mine handles GET /shipments/mine.
//
// @Summary      List the caller's shipments
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Free-text search"
// @Param        status  query     string  false  "Status filter, or all"
// @Success      200     {object}  shipmentsResponse
// @Failure      401     {object}  messageResponse
// @Router       /shipments/mine [get]
func (h *ShipmentHandler) Mine(c echo.Context) error {
	return h.list(c, true)
}

func (h *ShipmentHandler) list(c echo.Context, mine bool) error {
	userID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	shipments, err := h.service.ListShipments(c.Request().Context(), ports.ListShipmentsInput{
		Role:   role,
		UserID: userID,
		Mine:   mine,
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	if shipments == nil {
		shipments = []*domain.Shipment{}
	}
	return c.JSON(http.StatusOK, shipmentsResponse{Shipments: shipments})
}

// Track handles GET /shipments/track/:tracking_number. No authentication.
//
// @Summary      Track a shipment
// @Tags         tracking
// @Produce      json
// @Param        tracking_number  path      string  true  "Tracking number (e.g. LX-1A2B3C4D)"
// @Success      200              {object}  shipmentResponse
// @Failure      404              {object}  messageResponse
// @Router       /shipments/track/{tracking_number} [get]
func (h *ShipmentHandler) Track(c echo.Context) error {
	shipment, err := h.service.Track(c.Request().Context(), c.Param("tracking_number"))
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			metrics.TrackingLookupsTotal.WithLabelValues("not_found").Inc()
		}
		return err
	}
	metrics.TrackingLookupsTotal.WithLabelValues("found").Inc()
	return c.JSON(http.StatusOK, shipmentResponse{Shipment: shipment})
}

// Route handles GET /shipments/track/:tracking_number/route. No authentication.
//
// @Summary      Derived map positions and progress steps
// @Tags         tracking
// @Produce      json
// @Param        tracking_number  path      string  true  "Tracking number"
// @Success      200              {object}  routeResponse
// @Failure      404              {object}  messageResponse
// @Router       /shipments/track/{tracking_number}/route [get]
func (h *ShipmentHandler) Route(c echo.Context) error {
	res, err := h.service.Route(c.Request().Context(), c.Param("tracking_number"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, routeResponse{
		Resolution:   res,
		JourneyLabel: res.JourneyLabel(),
		StatusLabel:  res.Presentation.Label,
		StatusColor:  res.Presentation.Color,
	})
}

// toCreateInput maps the HTTP request to the service DTO.
func toCreateInput(r createShipmentRequest, ownerID string) (ports.CreateShipmentInput, error) {
	weight, err := strconv.ParseFloat(r.Weight.String(), 64)
	if err != nil {
		return ports.CreateShipmentInput{}, errors.New("weight must be a positive decimal number")
	}
	price, err := strconv.ParseInt(r.Price.String(), 10, 64)
	if err != nil {
		return ports.CreateShipmentInput{}, errors.New("price must be a whole number")
	}
	return ports.CreateShipmentInput{
		OwnerID:         ownerID,
		SenderName:      r.SenderName,
		SenderPhone:     r.SenderPhone,
		ReceiverName:    r.ReceiverName,
		ReceiverPhone:   r.ReceiverPhone,
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		PackageType:     r.PackageType,
		Weight:          weight,
		Price:           price,
		Note:            r.Note,
	}, nil
}
