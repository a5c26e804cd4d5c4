package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naijalogix/shipment-tracker/internal/api/middleware"
)

// ctxIdentity extracts the claims injected by the Auth middleware. An empty
// user id means the middleware did not run or the token carried no subject.
func ctxIdentity(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get(middleware.ContextRole).(string)
	return userID, role, nil
}

var errInvalidPayload = echo.NewHTTPError(http.StatusBadRequest, "invalid payload")

// bindValid decodes the body into dst and validates it. Decode failures are
// 400 and rule violations 422.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
