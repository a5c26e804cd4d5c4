package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func rbacContext(role string) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if role != "" {
		c.Set(ContextRole, role)
	}
	return c
}

func TestRBAC(t *testing.T) {
	tests := []struct {
		name    string
		mw      echo.MiddlewareFunc
		role    string
		allowed bool
	}{
		{"admin on admin route", AdminOnly(), "admin", true},
		{"user on admin route", AdminOnly(), "user", false},
		{"no role", AdminOnly(), "", false},
		{"user on shared route", RBAC("admin", "user"), "user", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := tt.mw(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})

			err := h(rbacContext(tt.role))
			if called != tt.allowed {
				t.Fatalf("next called = %v, want %v", called, tt.allowed)
			}
			if tt.allowed {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %v", err)
			}
		})
	}
}
