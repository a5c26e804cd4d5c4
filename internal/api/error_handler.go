package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

// errorMapping pairs a domain sentinel with its response. An empty message
// echoes err.Error().
type errorMapping struct {
	target  error
	status  int
	message string
}

var errorTable = []errorMapping{
	{domain.ErrShipmentNotFound, http.StatusNotFound, "shipment not found"},
	{domain.ErrNotificationNotFound, http.StatusNotFound, "notification not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrDuplicateShipment, http.StatusConflict, "shipment already exists"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity, ""},
}

// NewHTTPErrorHandler renders every error as {"message": ...}. Errors that
// match nothing become a logged 500 with a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("route", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Message: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.message == "" {
			return m.status, err.Error()
		}
		return m.status, m.message
	}
	return http.StatusInternalServerError, "internal server error"
}
