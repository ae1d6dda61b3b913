// Package ledger rebuilds booking state from the contract's event log.
//
// A reconciliation scans one window of the log and merges the three event
// kinds into a map keyed by booking id. The merge runs as three passes in a
// fixed order (Booked, then Cancelled, then Settled) so that the outcome never
// depends on the order in which the source returns events: a cancellation
// anywhere in the window always wins over a settlement.
//
// Bookings whose Booked event lies outside the scanned window are invisible to
// that call. Callers that need older bookings must pass an explicit window.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"staybook/pkg/calendar"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
)

type EventSource interface {
	QueryEvents(ctx context.Context, kind model.EventKind, from, to uint64) ([]model.LedgerEvent, error)
	CurrentPosition(ctx context.Context) (uint64, error)
}

// Window is an inclusive range of log positions. Zero means unset.
type Window struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	// Lookback bounds the default window to the most recent positions when
	// neither the caller nor DeployPosition provides a start.
	Lookback uint64
	// DeployPosition is the position the contract was deployed at, if known.
	DeployPosition uint64
	CheckInHourUTC int
}

type Result struct {
	Window  Window                          `json:"window"`
	Records map[uint64]*model.BookingRecord `json:"records"`
}

type Reconciler struct {
	source EventSource
	opts   Options
	log    *logger.Logger
}

func NewReconciler(source EventSource, opts Options, log *logger.Logger) *Reconciler {
	return &Reconciler{
		source: source,
		opts:   opts,
		log:    log,
	}
}

// ResolveWindow fills in unset bounds. An unset To is the current position; an
// unset From is DeployPosition, or Lookback positions before the current one.
func (r *Reconciler) ResolveWindow(ctx context.Context, w Window) (Window, error) {
	needCurrent := w.To == 0 || (w.From == 0 && r.opts.DeployPosition == 0)

	var current uint64
	if needCurrent {
		var err error
		current, err = r.source.CurrentPosition(ctx)
		if err != nil {
			return Window{}, fmt.Errorf("%w: current log position: %w", ErrSourceUnavailable, err)
		}
	}

	resolved := w
	if resolved.To == 0 {
		resolved.To = current
	}
	if resolved.From == 0 {
		switch {
		case r.opts.DeployPosition > 0:
			resolved.From = r.opts.DeployPosition
		case current > r.opts.Lookback:
			resolved.From = current - r.opts.Lookback
		default:
			resolved.From = 0
		}
	}

	if resolved.From > resolved.To {
		return Window{}, fmt.Errorf("%w: from %d is after to %d", ErrInvalidWindow, resolved.From, resolved.To)
	}
	return resolved, nil
}

// Reconcile scans the window and returns the merged booking map. Either all
// three event kinds are read and merged, or an error is returned and no map.
func (r *Reconciler) Reconcile(ctx context.Context, w Window) (*Result, error) {
	start := time.Now()

	window, err := r.ResolveWindow(ctx, w)
	if err != nil {
		return nil, err
	}

	events, err := r.fetchAll(ctx, window)
	if err != nil {
		r.log.Error("Ledger reconciliation failed",
			"from", window.From,
			"to", window.To,
			"error", err,
		)
		return nil, err
	}

	records := Merge(
		events[model.EventBooked],
		events[model.EventCancelled],
		events[model.EventSettled],
		r.opts.CheckInHourUTC,
	)

	r.log.Info("Ledger reconciled",
		"from", window.From,
		"to", window.To,
		"booked_events", len(events[model.EventBooked]),
		"cancelled_events", len(events[model.EventCancelled]),
		"settled_events", len(events[model.EventSettled]),
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{Window: window, Records: records}, nil
}

func (r *Reconciler) fetchAll(ctx context.Context, window Window) (map[model.EventKind][]model.LedgerEvent, error) {
	results := make([][]model.LedgerEvent, len(model.EventKinds))
	errs := make([]error, len(model.EventKinds))

	var wg sync.WaitGroup
	wg.Add(len(model.EventKinds))
	for i, kind := range model.EventKinds {
		go func() {
			defer wg.Done()
			evs, err := r.source.QueryEvents(ctx, kind, window.From, window.To)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %s events [%d, %d]: %w", ErrSourceUnavailable, kind, window.From, window.To, err)
				return
			}
			results[i] = evs
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make(map[model.EventKind][]model.LedgerEvent, len(model.EventKinds))
	for i, kind := range model.EventKinds {
		out[kind] = results[i]
	}
	return out, nil
}

// Merge applies the three passes to a fresh map. It never looks at event
// positions; precedence comes only from the pass order.
func Merge(booked, cancelled, settled []model.LedgerEvent, checkInHourUTC int) map[uint64]*model.BookingRecord {
	records := make(map[uint64]*model.BookingRecord, len(booked))
	applyBooked(records, booked, checkInHourUTC)
	applyCancelled(records, cancelled)
	applySettled(records, settled)
	return records
}

func applyBooked(records map[uint64]*model.BookingRecord, events []model.LedgerEvent, checkInHourUTC int) {
	for _, ev := range events {
		if _, exists := records[ev.BookingID]; exists {
			continue
		}
		records[ev.BookingID] = newRecord(ev, checkInHourUTC)
	}
}

// Cancellation overrides any earlier status, Settled included.
func applyCancelled(records map[uint64]*model.BookingRecord, events []model.LedgerEvent) {
	for _, ev := range events {
		rec, ok := records[ev.BookingID]
		if !ok {
			continue
		}
		rec.SetStatus(model.StatusCancelled)
	}
}

// Only escrow bookings move to Settled here; instant bookings already are, and
// a cancelled booking stays cancelled.
func applySettled(records map[uint64]*model.BookingRecord, events []model.LedgerEvent) {
	for _, ev := range events {
		rec, ok := records[ev.BookingID]
		if !ok || rec.PayoutMode != model.PayoutEscrow || rec.Status == model.StatusCancelled {
			continue
		}
		rec.SetStatus(model.StatusSettled)
	}
}

func newRecord(ev model.LedgerEvent, checkInHourUTC int) *model.BookingRecord {
	mode := model.PayoutModeFromCode(ev.PayoutMode)
	rec := &model.BookingRecord{
		BookingID:        ev.BookingID,
		ListingID:        ev.ListingID,
		Guest:            sanitizer.NormalizeAddress(ev.Guest),
		StartDay:         ev.StartDay,
		EndDay:           ev.EndDay,
		CheckInDate:      calendar.EpochDayToISO(ev.StartDay),
		CheckOutDate:     calendar.EpochDayToISO(ev.EndDay),
		Nights:           int64(ev.EndDay - ev.StartDay),
		TotalPaid:        ev.TotalPaid,
		TotalPaidDisplay: model.FormatUSDC(ev.TotalPaid),
		PayoutMode:       mode,
		CheckInTimestamp: calendar.CheckInTimestamp(ev.StartDay, checkInHourUTC),
	}
	if mode == model.PayoutInstant {
		rec.SetStatus(model.StatusSettled)
	} else {
		rec.SetStatus(model.StatusBooked)
	}
	return rec
}
