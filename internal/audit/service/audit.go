package service

import (
	"context"
	"errors"
	"time"

	auditerrors "staybook/internal/audit/errors"
	"staybook/internal/audit/repository"
	"staybook/internal/ledger"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"github.com/google/uuid"
)

type BookingReconciler interface {
	Reconcile(ctx context.Context, w ledger.Window) (*ledger.Result, error)
}

type AuditService interface {
	Run(ctx context.Context) (*model.ReconciliationRun, error)
	Latest(ctx context.Context) (*model.ReconciliationRun, error)
}

type auditService struct {
	reconciler BookingReconciler
	runs       repository.RunRepository
	log        *logger.Logger
	now        func() time.Time
}

func NewAuditService(reconciler BookingReconciler, runs repository.RunRepository, log *logger.Logger) AuditService {
	return &auditService{
		reconciler: reconciler,
		runs:       runs,
		log:        log,
		now:        time.Now,
	}
}

// Run reconciles the default window and records a summary. A failed
// reconciliation is still recorded, with its error, and then returned.
func (s *auditService) Run(ctx context.Context) (*model.ReconciliationRun, error) {
	started := s.now().UTC()
	run := &model.ReconciliationRun{
		ID:        uuid.NewString(),
		StartedAt: started,
	}

	result, reconcileErr := s.reconciler.Reconcile(ctx, ledger.Window{})
	run.DurationMs = s.now().Sub(started).Milliseconds()
	if reconcileErr != nil {
		run.Error = reconcileErr.Error()
	} else {
		summarize(run, result)
	}

	if err := s.runs.Insert(ctx, run); err != nil {
		s.log.Error("Failed to store reconciliation run", "run_id", run.ID, "error", err)
		if reconcileErr == nil {
			return run, apperrors.Internal("Failed to store reconciliation run", err)
		}
	}

	if reconcileErr != nil {
		s.log.Warn("Reconciliation run failed", "run_id", run.ID, "error", reconcileErr)
		return run, reconcileErr
	}

	s.log.Info("Reconciliation run recorded",
		"run_id", run.ID,
		"from", run.From,
		"to", run.To,
		"records", run.Records,
		"booked", run.Booked,
		"cancelled", run.Cancelled,
		"settled", run.Settled,
		"duration_ms", run.DurationMs,
	)
	return run, nil
}

func summarize(run *model.ReconciliationRun, result *ledger.Result) {
	run.From = result.Window.From
	run.To = result.Window.To
	run.Records = len(result.Records)
	for _, rec := range result.Records {
		switch rec.Status {
		case model.StatusBooked:
			run.Booked++
		case model.StatusCancelled:
			run.Cancelled++
		case model.StatusSettled:
			run.Settled++
		}
	}
}

func (s *auditService) Latest(ctx context.Context) (*model.ReconciliationRun, error) {
	run, err := s.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, auditerrors.ErrNoRuns) {
			return nil, apperrors.NotFound("Reconciliation run")
		}
		s.log.Error("Failed to read latest reconciliation run", "error", err)
		return nil, apperrors.Internal("Failed to read reconciliation run", err)
	}
	return run, nil
}
