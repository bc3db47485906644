package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salonbook/pkg/config"
	"salonbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/ping", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func TestApplication_Routes(t *testing.T) {
	a := NewApplication(testConfig())
	a.AddReadinessCheck("mongo", func(ctx context.Context) error { return nil })
	a.SetApp(pingHandler{})
	defer a.Stop()

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/api/v1/ping", http.StatusOK},
		{"/api/v1/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "salonbook_http_requests_total") {
		t.Errorf("expected http metrics to be exposed")
	}
}

func TestApplication_ReadyReportsFailingDependency(t *testing.T) {
	a := NewApplication(testConfig())
	a.AddReadinessCheck("mongo", func(ctx context.Context) error { return nil })
	a.AddReadinessCheck("redis", func(ctx context.Context) error { return errors.New("down") })
	a.SetApp(pingHandler{})
	defer a.Stop()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Dependencies["redis"] != "error" || resp.Dependencies["mongo"] != "ok" {
		t.Errorf("unexpected dependencies: %v", resp.Dependencies)
	}
}

func TestApplication_ShutdownHooksRunInReverse(t *testing.T) {
	a := NewApplication(testConfig())
	a.SetApp(pingHandler{})

	var order []int
	a.OnShutdown(func() { order = append(order, 1) })
	a.OnShutdown(func() { order = append(order, 2) })
	a.Stop()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("unexpected hook order: %v", order)
	}
}
