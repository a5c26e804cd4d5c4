package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type notificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
}

// List handles GET /notification.
//
// @Summary      The caller's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notificationsResponse
// @Failure      401  {object}  messageResponse
// @Router       /notification [get]
func (h *NotificationHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return c.JSON(http.StatusOK, notificationsResponse{Notifications: items})
}

// MarkRead handles PATCH /notification/:id/read.
//
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /notification/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkRead(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "notification marked as read"})
}
