package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "staybook/pkg/errors"

	"github.com/julienschmidt/httprouter"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: 10, wantOffset: 0},
		{name: "explicit", query: "?limit=25&offset=50", wantLimit: 25, wantOffset: 50},
		{name: "limit capped", query: "?limit=5000", wantLimit: 100, wantOffset: 0},
		{name: "negative offset clamped", query: "?offset=-3", wantLimit: 10, wantOffset: 0},
		{name: "bad limit", query: "?limit=abc", wantErr: true},
		{name: "bad offset", query: "?offset=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/listings"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestExtractUintParam(t *testing.T) {
	ps := httprouter.Params{{Key: "id", Value: "42"}}
	v, err := ExtractUintParam(ps, "id")
	if err != nil || v != 42 {
		t.Fatalf("got (%d, %v), want (42, nil)", v, err)
	}

	for _, raw := range []string{"", "0", "-1", "abc"} {
		_, err := ExtractUintParam(httprouter.Params{{Key: "id", Value: raw}}, "id")
		if err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestExtractInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?year=2025", nil)
	if v, err := ExtractInt(r, "year"); err != nil || v != 2025 {
		t.Fatalf("got (%d, %v)", v, err)
	}
	if _, err := ExtractInt(r, "month"); err == nil {
		t.Errorf("expected error for missing month")
	}
}

func TestWriteError_StatusFromAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: apperrors.InvalidInput("bad"), want: http.StatusBadRequest},
		{name: "not found", err: apperrors.NotFound("Listing"), want: http.StatusNotFound},
		{name: "unavailable", err: apperrors.Unavailable("Event source"), want: http.StatusServiceUnavailable},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError returned %v", err)
			}
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}
