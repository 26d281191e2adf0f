package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type healthBody struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks"`
}

func getHealth(t *testing.T, h *Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}
	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	return rec, body
}

func TestHealth_NoDependencies(t *testing.T) {
	start := time.Now().UTC()
	rec, body := getHealth(t, NewHandler())

	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("want 200 ok, got %d %q", rec.Code, body.Status)
	}
	if body.Checks != nil {
		t.Fatalf("checks should be omitted without dependencies, got %v", body.Checks)
	}
	parsed, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil {
		t.Fatalf("time not RFC3339Nano: %v (value=%q)", err, body.Time)
	}
	if parsed.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", parsed.Location())
	}
	if parsed.Before(start.Add(-2*time.Second)) || parsed.After(time.Now().UTC().Add(2*time.Second)) {
		t.Fatalf("time not within expected window: %v", parsed)
	}
}

func TestHealth_Dependencies(t *testing.T) {
	tests := []struct {
		name       string
		redisErr   error
		wantCode   int
		wantStatus string
		wantRedis  string
	}{
		{"all reachable", nil, http.StatusOK, "ok", "ok"},
		{"redis down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded", "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler().
				WithDependency("database", fakePinger{}).
				WithDependency("redis", fakePinger{err: tt.redisErr})
			rec, body := getHealth(t, h)

			if rec.Code != tt.wantCode || body.Status != tt.wantStatus {
				t.Fatalf("want %d %q, got %d %q", tt.wantCode, tt.wantStatus, rec.Code, body.Status)
			}
			if body.Checks["database"] != "ok" || body.Checks["redis"] != tt.wantRedis {
				t.Fatalf("unexpected checks: %v", body.Checks)
			}
		})
	}
}
