package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth_Liveness(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler(nil).Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealth_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name       string
		checks     map[string]PingFunc
		wantCode   int
		wantStatus string
	}{
		{"all up", map[string]PingFunc{"mongodb": ok, "redis": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]PingFunc{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			rec := httptest.NewRecorder()
			h := NewHealthHandler(tc.checks)
			if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp readinessResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Status != tc.wantStatus || len(resp.Dependencies) != 2 {
				t.Fatalf("unexpected body %+v", resp)
			}
		})
	}
}
