package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var errMissingSubject = errors.New("token missing subject")

// Context keys set by Auth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextName   = "name"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID string
	Role   string
	Name   string
}

type tokenClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var tokenParser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

// ParseToken verifies an HS256 token and returns its identity. A token
// without a subject is rejected.
func ParseToken(jwtSecret, raw string) (Claims, error) {
	var tc tokenClaims
	if _, err := tokenParser.ParseWithClaims(raw, &tc, func(*jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}); err != nil {
		return Claims{}, err
	}
	if tc.Subject == "" {
		return Claims{}, errMissingSubject
	}
	return Claims{UserID: tc.Subject, Role: tc.Role, Name: tc.Name}, nil
}

// Auth requires a valid bearer token and stores its identity under the
// Context keys.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := ParseToken(jwtSecret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			c.Set(ContextName, claims.Name)

			return next(c)
		}
	}
}
