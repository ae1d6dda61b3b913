package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"staybook/internal/bookings"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/ledger"
	listingserrors "staybook/internal/listings/errors"
	"staybook/internal/listings/repository"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
)

// ownerLookupWorkers bounds concurrent owner lookups per request.
const ownerLookupWorkers = 8

type BookingReconciler interface {
	Reconcile(ctx context.Context, w ledger.Window) (*ledger.Result, error)
}

type BookingList struct {
	Bookings []*model.BookingRecord `json:"bookings"`
	Window   ledger.Window          `json:"window"`
}

type BookingService interface {
	Reconcile(ctx context.Context, w ledger.Window) (*BookingList, error)
	ListHostBookings(ctx context.Context, host string) (*BookingList, error)
	ListGuestBookings(ctx context.Context, guest string) (*BookingList, error)
}

type bookingService struct {
	reconciler BookingReconciler
	directory  repository.Directory
	log        *logger.Logger
}

func NewBookingService(reconciler BookingReconciler, directory repository.Directory, log *logger.Logger) BookingService {
	return &bookingService{
		reconciler: reconciler,
		directory:  directory,
		log:        log,
	}
}

// Reconcile returns every booking visible in the window, in id order.
func (s *bookingService) Reconcile(ctx context.Context, w ledger.Window) (*BookingList, error) {
	result, err := s.reconciler.Reconcile(ctx, w)
	if err != nil {
		return nil, ledger.ToAppError(err)
	}
	return &BookingList{
		Bookings: bookings.SortByID(result.Records),
		Window:   result.Window,
	}, nil
}

// ListHostBookings reconciles once, resolves the owner of every issued
// listing and keeps the bookings on the host's listings.
func (s *bookingService) ListHostBookings(ctx context.Context, host string) (*BookingList, error) {
	host = sanitizer.NormalizeAddress(host)
	if host == "" {
		return nil, apperrors.InvalidInput("Host address cannot be empty")
	}

	result, err := s.reconciler.Reconcile(ctx, ledger.Window{})
	if err != nil {
		return nil, ledger.ToAppError(err)
	}

	owners, err := s.owners(ctx)
	if err != nil {
		s.log.Error("Failed to resolve listing owners", "host", host, "error", err)
		return nil, ledger.ToAppError(err)
	}

	list := bookings.FilterByHost(result.Records, host, owners)
	s.log.Debug("Host bookings listed", "host", host, "listings", len(owners), "bookings", len(list))
	return &BookingList{Bookings: list, Window: result.Window}, nil
}

func (s *bookingService) ListGuestBookings(ctx context.Context, guest string) (*BookingList, error) {
	guest = sanitizer.NormalizeAddress(guest)
	if guest == "" {
		return nil, apperrors.InvalidInput("Guest address cannot be empty")
	}

	result, err := s.reconciler.Reconcile(ctx, ledger.Window{})
	if err != nil {
		return nil, ledger.ToAppError(err)
	}

	list := bookings.FilterByGuest(result.Records, guest)
	s.log.Debug("Guest bookings listed", "guest", guest, "bookings", len(list))
	return &BookingList{Bookings: list, Window: result.Window}, nil
}

// owners looks up listing ids 1..Count. Ids with no stored listing are
// skipped; any other failure fails the whole call and stops scheduling the
// remaining lookups, as does cancellation of ctx.
func (s *bookingService) owners(ctx context.Context) (map[uint64]string, error) {
	count, err := s.directory.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: listing count: %w", ledger.ErrSourceUnavailable, bookingserrors.ErrOwnerLookup, err)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	owners := make(map[uint64]string, count)
	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, ownerLookupWorkers)

schedule:
	for id := uint64(1); id <= count; id++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			owner, err := s.directory.Owner(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, listingserrors.ErrNotFound):
				// not ingested yet
			case err != nil:
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: %w: listing %d: %w", ledger.ErrSourceUnavailable, bookingserrors.ErrOwnerLookup, id, err)
					cancel()
				}
			default:
				owners[id] = owner
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ledger.ErrSourceUnavailable, bookingserrors.ErrOwnerLookup, err)
	}
	return owners, nil
}
