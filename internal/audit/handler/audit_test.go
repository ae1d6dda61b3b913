package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockAuditService struct {
	latestFunc func(ctx context.Context) (*model.ReconciliationRun, error)
}

func (m *mockAuditService) Run(ctx context.Context) (*model.ReconciliationRun, error) {
	return nil, nil
}

func (m *mockAuditService) Latest(ctx context.Context) (*model.ReconciliationRun, error) {
	return m.latestFunc(ctx)
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name       string
		run        *model.ReconciliationRun
		err        error
		wantStatus int
	}{
		{
			name:       "run recorded",
			run:        &model.ReconciliationRun{ID: "r1", From: 10, To: 20, Records: 3, Booked: 1, Settled: 2},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no runs yet",
			err:        apperrors.NotFound("Reconciliation run"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuditService{
				latestFunc: func(ctx context.Context) (*model.ReconciliationRun, error) { return tt.run, tt.err },
			}
			router := httprouter.New()
			NewAuditHandler(svc, logger.New(logger.Config{Output: io.Discard})).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/latest", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.run == nil {
				return
			}

			var body struct {
				Data model.ReconciliationRun `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Data.ID != "r1" || body.Data.Settled != 2 {
				t.Errorf("unexpected body: %s", w.Body.String())
			}
		})
	}
}
