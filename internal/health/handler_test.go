package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"staybook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("unreachable") }

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		database   Check
		cache      Check
		wantStatus int
		want       HealthResponse
	}{
		{"all up", ok, ok, http.StatusOK, HealthResponse{Status: "ready", Database: "ok", Cache: "ok"}},
		{"cache disabled", ok, nil, http.StatusOK, HealthResponse{Status: "ready", Database: "ok"}},
		{"cache down", ok, failing, http.StatusOK, HealthResponse{Status: "ready", Database: "ok", Cache: "degraded"}},
		{"database down", failing, ok, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "error", Cache: "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(tt.database, tt.cache, logger.New(logger.Config{Output: io.Discard})).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var got HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("body = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(failing, nil, logger.New(logger.Config{Output: io.Discard})).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("liveness must not depend on the database, got %d", w.Code)
	}
}
