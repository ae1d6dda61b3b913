package service

import (
	"context"
	"fmt"
	"time"

	"staybook/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the audit on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

func NewScheduler(spec string, audit AuditService, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	log = log.Component("audit-scheduler")
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		// Run logs and records its own failures.
		_, _ = audit.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.log.Info("Reconciliation audit scheduled", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for a running audit to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Reconciliation audit still running at shutdown")
	}
}
